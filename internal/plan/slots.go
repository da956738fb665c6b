// Package plan holds the planning and logging aggregation engine: slot
// generation, entry reconciliation, shopping list aggregation and ketone
// series reconciliation. It never touches storage; callers pass plain data in
// and apply the returned write-sets themselves.
package plan

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

const (
	ExtraMealPrefix  = "Extra Meal "
	ExtraSnackPrefix = "Extra Snack "
)

// Slot is an addressable meal or snack position.
type Slot struct {
	Date  string
	Label string
}

func (s Slot) String() string {
	return s.Date + " " + s.Label
}

// ExtraKind selects which family of extra slot to add.
type ExtraKind string

const (
	ExtraMeal  ExtraKind = "meal"
	ExtraSnack ExtraKind = "snack"
)

func ParseExtraKind(value string) (ExtraKind, error) {
	switch ExtraKind(strings.ToLower(strings.TrimSpace(value))) {
	case ExtraMeal:
		return ExtraMeal, nil
	case ExtraSnack:
		return ExtraSnack, nil
	default:
		return "", fmt.Errorf("invalid extra slot kind %q (use meal or snack)", value)
	}
}

func (k ExtraKind) prefix() string {
	if k == ExtraSnack {
		return ExtraSnackPrefix
	}
	return ExtraMealPrefix
}

var fixedMealLabels = []string{"Breakfast", "Lunch", "Dinner"}

// MainMealLabel names the k-th main meal (1-based).
func MainMealLabel(k int) string {
	if k >= 1 && k <= len(fixedMealLabels) {
		return fixedMealLabels[k-1]
	}
	return fmt.Sprintf("Meal %d", k)
}

// SnackLabel names the k-th snack (1-based).
func SnackLabel(k int) string {
	return fmt.Sprintf("Snack %d", k)
}

// IsExtraLabel reports whether label belongs to a user-added extra slot.
func IsExtraLabel(label string) bool {
	return strings.HasPrefix(label, ExtraMealPrefix) || strings.HasPrefix(label, ExtraSnackPrefix)
}

// NextExtraLabel returns the label for a new extra slot of kind on a date
// that already has the given extra labels. Numbering is the count of
// existing extras of that kind plus one, bumped past any label in use.
func NextExtraLabel(kind ExtraKind, existing []string) string {
	prefix := kind.prefix()
	used := make(map[string]bool, len(existing))
	count := 0
	for _, label := range existing {
		used[label] = true
		if strings.HasPrefix(label, prefix) {
			count++
		}
	}
	n := count + 1
	for used[fmt.Sprintf("%s%d", prefix, n)] {
		n++
	}
	return fmt.Sprintf("%s%d", prefix, n)
}

// Window returns days consecutive dates starting at start.
func Window(start time.Time, days int) []string {
	if days <= 0 {
		return []string{}
	}
	y, m, d := start.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	out := make([]string, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, first.AddDate(0, 0, i).Format(DateLayout))
	}
	return out
}

// GenerateSlots lists the slots for dates: main meals 1..mainMeals, then
// snacks 1..snacks, then the extras discovered for that date in order.
// Extras that do not carry an extra prefix or repeat a label are skipped so
// the output never holds a duplicate (date, label).
func GenerateSlots(mainMeals, snacks int, dates []string, extras map[string][]string) []Slot {
	size := len(dates) * (max(mainMeals, 0) + max(snacks, 0))
	out := make([]Slot, 0, size)
	for _, date := range dates {
		for k := 1; k <= mainMeals; k++ {
			out = append(out, Slot{Date: date, Label: MainMealLabel(k)})
		}
		for k := 1; k <= snacks; k++ {
			out = append(out, Slot{Date: date, Label: SnackLabel(k)})
		}
		seen := map[string]bool{}
		for _, label := range extras[date] {
			if !IsExtraLabel(label) || seen[label] {
				continue
			}
			seen[label] = true
			out = append(out, Slot{Date: date, Label: label})
		}
	}
	return out
}
