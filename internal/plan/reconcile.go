package plan

import (
	"strings"

	"github.com/saadjs/keto-cli/internal/apperr"
)

// Mode tells Reconcile which entry fields a submission may carry.
type Mode int

const (
	PlannerMode Mode = iota
	LogMode
)

const DefaultPercentEaten = 100.0

// Entry is a planner or log row for one slot. Exactly one of RecipeID and
// FreeText is set, or neither for an empty slot.
type Entry struct {
	ID           int64
	Slot         Slot
	RecipeID     *int64
	FreeText     *string
	Notes        *string
	PercentEaten float64
}

// Selector reports the selection currently stored on the entry.
func (e *Entry) Selector() Selector {
	switch {
	case e == nil:
		return Unset()
	case e.RecipeID != nil:
		return Recipe(*e.RecipeID)
	case e.FreeText != nil:
		return Custom()
	default:
		return Unset()
	}
}

// NotesText returns the notes or "" when unset.
func (e *Entry) NotesText() string {
	if e == nil || e.Notes == nil {
		return ""
	}
	return *e.Notes
}

// Submission is the user's input for the slot at the same index.
type Submission struct {
	Selector     Selector
	FreeText     string
	PercentEaten *float64
	Notes        string
}

// Result is the outcome of a reconciliation pass. Resolved holds one entry
// per slot in slot order; every entry in it is either in Updates (it was
// persisted before) or in Inserts.
type Result struct {
	Resolved []*Entry
	Updates  []*Entry
	Inserts  []*Entry
}

// Reconcile merges positional submissions into the existing entries for
// slots. Existing entries are mutated in place, missing ones are staged as
// inserts, and nothing is ever deleted: an unset slot keeps a row with both
// fields empty. Submissions past the end of slots, malformed selectors or an
// out-of-range percentage reject the whole batch before anything changes.
func Reconcile(mode Mode, slots []Slot, submitted []Submission, existing map[Slot]*Entry) (Result, error) {
	if len(submitted) > len(slots) {
		return Result{}, apperr.InvalidSelectorf("%d submissions for %d slots", len(submitted), len(slots))
	}
	for i, sub := range submitted {
		if err := sub.Selector.validate(); err != nil {
			return Result{}, apperr.InvalidSelectorf("slot %s: %v", slots[i], err)
		}
		if mode == LogMode && sub.PercentEaten != nil && !(*sub.PercentEaten >= 0 && *sub.PercentEaten <= 100) {
			return Result{}, apperr.InvalidSelectorf("slot %s: percent eaten must be between 0 and 100", slots[i])
		}
	}

	res := Result{Resolved: make([]*Entry, 0, len(slots))}
	for i, slot := range slots {
		var sub Submission
		if i < len(submitted) {
			sub = submitted[i]
		}
		entry, ok := existing[slot]
		if !ok || entry == nil {
			entry = &Entry{Slot: slot}
			res.Inserts = append(res.Inserts, entry)
		} else {
			res.Updates = append(res.Updates, entry)
		}
		apply(mode, entry, sub)
		res.Resolved = append(res.Resolved, entry)
	}
	return res, nil
}

func apply(mode Mode, e *Entry, sub Submission) {
	switch sub.Selector.Kind {
	case SelectCustom:
		e.RecipeID = nil
		e.FreeText = trimmedOrNil(sub.FreeText)
	case SelectRecipe:
		id := sub.Selector.RecipeID
		e.RecipeID = &id
		e.FreeText = nil
	default:
		e.RecipeID = nil
		e.FreeText = nil
	}
	e.Notes = trimmedOrNil(sub.Notes)
	if mode == LogMode {
		e.PercentEaten = DefaultPercentEaten
		if sub.PercentEaten != nil {
			e.PercentEaten = *sub.PercentEaten
		}
	}
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// IndexEntries keys entries by slot; later entries win on duplicate keys.
func IndexEntries(entries []*Entry) map[Slot]*Entry {
	out := make(map[Slot]*Entry, len(entries))
	for _, e := range entries {
		out[e.Slot] = e
	}
	return out
}

// ExtrasByDate collects the extra slot labels of entries per date, in the
// order the entries are given.
func ExtrasByDate(entries []*Entry) map[string][]string {
	out := map[string][]string{}
	for _, e := range entries {
		if IsExtraLabel(e.Slot.Label) {
			out[e.Slot.Date] = append(out[e.Slot.Date], e.Slot.Label)
		}
	}
	return out
}
