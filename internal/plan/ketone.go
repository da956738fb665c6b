package plan

import (
	"strings"
	"time"

	"github.com/saadjs/keto-cli/internal/apperr"
)

const TimeLayout = "15:04"

// Reading is one submitted ketone/glucose row.
type Reading struct {
	Date    string
	Time    string
	Ketone  *float64
	Glucose *float64
}

// Blank reports a row with neither value; it asks for removal, not a reading.
func (r Reading) Blank() bool {
	return r.Ketone == nil && r.Glucose == nil
}

// ReadingKey identifies a reading per user.
type ReadingKey struct {
	Date string
	Time string
}

// KetoneEntry is a persisted reading.
type KetoneEntry struct {
	ID      int64
	Date    string
	Time    string
	Ketone  *float64
	Glucose *float64
}

func (e *KetoneEntry) Key() ReadingKey {
	return ReadingKey{Date: e.Date, Time: e.Time}
}

// KetoneWriteSet is applied atomically by the caller.
type KetoneWriteSet struct {
	Updates []*KetoneEntry
	Inserts []*KetoneEntry
	Deletes []*KetoneEntry
}

// NormalizeReadingKey parses date and time and returns them in canonical
// YYYY-MM-DD / HH:MM form.
func NormalizeReadingKey(date, clock string) (ReadingKey, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return ReadingKey{}, apperr.InvalidTimef("date %q (expected YYYY-MM-DD)", date)
	}
	t, err := time.Parse(TimeLayout, strings.TrimSpace(clock))
	if err != nil {
		return ReadingKey{}, apperr.InvalidTimef("time %q (expected HH:MM)", clock)
	}
	return ReadingKey{Date: d.Format(DateLayout), Time: t.Format(TimeLayout)}, nil
}

// ReconcileKetones treats submitted as the complete set of the user's
// readings. Every row is parsed before anything is decided, so one bad time
// rejects the batch. Blank rows are dropped; the rest upsert by key with the
// last row winning; every persisted reading whose key has no non-blank row
// is deleted. existing must be all of the user's readings, not a window.
func ReconcileKetones(submitted []Reading, existing []*KetoneEntry) (KetoneWriteSet, error) {
	keys := make([]ReadingKey, len(submitted))
	for i, r := range submitted {
		key, err := NormalizeReadingKey(r.Date, r.Time)
		if err != nil {
			return KetoneWriteSet{}, err
		}
		if err := validateLevel(key, "ketone", r.Ketone); err != nil {
			return KetoneWriteSet{}, err
		}
		if err := validateLevel(key, "glucose", r.Glucose); err != nil {
			return KetoneWriteSet{}, err
		}
		keys[i] = key
	}

	order := make([]ReadingKey, 0, len(submitted))
	latest := map[ReadingKey]Reading{}
	for i, r := range submitted {
		if r.Blank() {
			continue
		}
		if _, ok := latest[keys[i]]; !ok {
			order = append(order, keys[i])
		}
		latest[keys[i]] = r
	}

	byKey := make(map[ReadingKey]*KetoneEntry, len(existing))
	for _, e := range existing {
		byKey[e.Key()] = e
	}

	var ws KetoneWriteSet
	for _, key := range order {
		r := latest[key]
		if e, ok := byKey[key]; ok {
			e.Ketone = copyFloat(r.Ketone)
			e.Glucose = copyFloat(r.Glucose)
			ws.Updates = append(ws.Updates, e)
			continue
		}
		ws.Inserts = append(ws.Inserts, &KetoneEntry{
			Date:    key.Date,
			Time:    key.Time,
			Ketone:  copyFloat(r.Ketone),
			Glucose: copyFloat(r.Glucose),
		})
	}
	for _, e := range existing {
		if _, ok := latest[e.Key()]; !ok {
			ws.Deletes = append(ws.Deletes, e)
		}
	}
	return ws, nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func validateLevel(key ReadingKey, name string, v *float64) error {
	if v != nil && !(*v >= 0) {
		return apperr.InvalidReadingf("%s %s: %s level must be >= 0", key.Date, key.Time, name)
	}
	return nil
}
