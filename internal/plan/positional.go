package plan

import "github.com/saadjs/keto-cli/internal/apperr"

// Positional orders keyed submissions to match slots. Slots with no
// submission get an unset one. A key outside slots rejects the batch.
func Positional(slots []Slot, bySlot map[Slot]Submission) ([]Submission, error) {
	index := make(map[Slot]int, len(slots))
	for i, s := range slots {
		index[s] = i
	}
	last := -1
	for s := range bySlot {
		i, ok := index[s]
		if !ok {
			return nil, apperr.InvalidSelectorf("slot %s is not in the window", s)
		}
		last = max(last, i)
	}
	out := make([]Submission, last+1)
	for i := range out {
		if sub, ok := bySlot[slots[i]]; ok {
			out[i] = sub
		}
	}
	return out, nil
}
