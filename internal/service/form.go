package service

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/saadjs/keto-cli/internal/apperr"
	"github.com/saadjs/keto-cli/internal/plan"
)

// Form is the editable JSON document of a planner or log page. Show
// commands print it and save commands read it back.
type Form struct {
	Book     Book          `json:"book"`
	Start    string        `json:"start"`
	Days     int           `json:"days"`
	Slots    []FormSlot    `json:"slots"`
	Readings []FormReading `json:"readings,omitempty"`
}

type FormSlot struct {
	Date         string   `json:"date"`
	Slot         string   `json:"slot"`
	Selection    string   `json:"selection"`
	Recipe       string   `json:"recipe,omitempty"`
	Text         string   `json:"text,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	PercentEaten *float64 `json:"percent_eaten,omitempty"`
}

type FormReading struct {
	Date    string   `json:"date"`
	Time    string   `json:"time"`
	Ketone  *float64 `json:"ketone,omitempty"`
	Glucose *float64 `json:"glucose,omitempty"`
}

func ReadForm(r io.Reader) (*Form, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var f Form
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	if f.Book == "" {
		f.Book = PlannerBook
	}
	if _, err := ParseBook(string(f.Book)); err != nil {
		return nil, err
	}
	return &f, nil
}

func WriteForm(w io.Writer, f *Form) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

func (f *Form) submissions(slots []plan.Slot) ([]plan.Submission, error) {
	bySlot := make(map[plan.Slot]plan.Submission, len(f.Slots))
	for _, row := range f.Slots {
		sel, err := plan.ParseSelector(row.Selection)
		if err != nil {
			return nil, err
		}
		key := plan.Slot{Date: row.Date, Label: row.Slot}
		if _, dup := bySlot[key]; dup {
			return nil, apperr.InvalidSelectorf("slot %s listed twice", key)
		}
		bySlot[key] = plan.Submission{
			Selector:     sel,
			FreeText:     row.Text,
			PercentEaten: row.PercentEaten,
			Notes:        row.Notes,
		}
	}
	return plan.Positional(slots, bySlot)
}

func (f *Form) readings() []plan.Reading {
	out := make([]plan.Reading, 0, len(f.Readings))
	for _, r := range f.Readings {
		out = append(out, plan.Reading{Date: r.Date, Time: r.Time, Ketone: r.Ketone, Glucose: r.Glucose})
	}
	return out
}

func newForm(book Book, dates []string, views []SlotView, recipeNames map[int64]string) *Form {
	f := &Form{Book: book, Days: len(dates), Slots: make([]FormSlot, 0, len(views))}
	if len(dates) > 0 {
		f.Start = dates[0]
	}
	for _, v := range views {
		row := FormSlot{
			Date:      v.Slot.Date,
			Slot:      v.Slot.Label,
			Selection: v.Entry.Selector().String(),
			Notes:     v.Entry.NotesText(),
		}
		if v.Entry.RecipeID != nil {
			row.Recipe = recipeNames[*v.Entry.RecipeID]
		}
		if v.Entry.FreeText != nil {
			row.Text = *v.Entry.FreeText
		}
		if book == LogBook {
			pct := v.Entry.PercentEaten
			row.PercentEaten = &pct
		}
		f.Slots = append(f.Slots, row)
	}
	return f
}
