package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/keto-cli/internal/apperr"
	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/plan"
)

type Book string

const (
	PlannerBook Book = "planner"
	LogBook     Book = "log"
)

func ParseBook(value string) (Book, error) {
	switch Book(strings.ToLower(strings.TrimSpace(value))) {
	case PlannerBook:
		return PlannerBook, nil
	case LogBook:
		return LogBook, nil
	default:
		return "", fmt.Errorf("invalid book %q (use planner or log)", value)
	}
}

func (b Book) table() string {
	if b == LogBook {
		return "log_entries"
	}
	return "planner_entries"
}

func (b Book) mode() plan.Mode {
	if b == LogBook {
		return plan.LogMode
	}
	return plan.PlannerMode
}

func (b Book) percentColumn() string {
	if b == LogBook {
		return "percent_eaten"
	}
	return "100"
}

func loadEntries(q querier, book Book, userID int64, from, to string) ([]*plan.Entry, error) {
	rows, err := q.Query(fmt.Sprintf(`
SELECT id, date, slot, recipe_id, free_text, notes, %s
FROM %s
WHERE user_id = ? AND date >= ? AND date <= ?
ORDER BY id ASC
`, book.percentColumn(), book.table()), userID, from, to)
	if err != nil {
		return nil, apperr.Storage("load "+string(book)+" entries", err)
	}
	defer rows.Close()

	out := make([]*plan.Entry, 0)
	for rows.Next() {
		var (
			e               plan.Entry
			recipeID        sql.NullInt64
			freeText, notes sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Slot.Date, &e.Slot.Label, &recipeID, &freeText, &notes, &e.PercentEaten); err != nil {
			return nil, apperr.Storage("scan "+string(book)+" entry", err)
		}
		e.RecipeID = int64Ptr(recipeID)
		e.FreeText = stringPtr(freeText)
		e.Notes = stringPtr(notes)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate "+string(book)+" entries", err)
	}
	return out, nil
}

func applyEntryWrites(tx *sql.Tx, book Book, userID int64, res plan.Result) error {
	table := book.table()
	for _, e := range res.Updates {
		var err error
		if book == LogBook {
			_, err = tx.Exec(`UPDATE log_entries SET recipe_id = ?, free_text = ?, notes = ?, percent_eaten = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
				nullableInt64(e.RecipeID), nullableString(e.FreeText), nullableString(e.Notes), e.PercentEaten, e.ID, userID)
		} else {
			_, err = tx.Exec(`UPDATE planner_entries SET recipe_id = ?, free_text = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
				nullableInt64(e.RecipeID), nullableString(e.FreeText), nullableString(e.Notes), e.ID, userID)
		}
		if err != nil {
			return apperr.Storage(fmt.Sprintf("update %s entry %s", book, e.Slot), err)
		}
	}
	for _, e := range res.Inserts {
		var (
			r   sql.Result
			err error
		)
		if book == LogBook {
			r, err = tx.Exec(`INSERT INTO log_entries(user_id, date, slot, recipe_id, free_text, notes, percent_eaten) VALUES(?, ?, ?, ?, ?, ?, ?)`,
				userID, e.Slot.Date, e.Slot.Label, nullableInt64(e.RecipeID), nullableString(e.FreeText), nullableString(e.Notes), e.PercentEaten)
		} else {
			r, err = tx.Exec(`INSERT INTO planner_entries(user_id, date, slot, recipe_id, free_text, notes) VALUES(?, ?, ?, ?, ?, ?)`,
				userID, e.Slot.Date, e.Slot.Label, nullableInt64(e.RecipeID), nullableString(e.FreeText), nullableString(e.Notes))
		}
		if err != nil {
			return apperr.Storage(fmt.Sprintf("insert into %s %s", table, e.Slot), err)
		}
		if e.ID, err = r.LastInsertId(); err != nil {
			return apperr.Storage("resolve "+string(book)+" entry id", err)
		}
	}
	return nil
}

func checkRecipeOwnership(q querier, userID int64, subs []plan.Submission) error {
	ids := make([]int64, 0, len(subs))
	for _, s := range subs {
		if s.Selector.IsRecipe() {
			ids = append(ids, s.Selector.RecipeID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	owned, err := ownedRecipeIDs(q, userID, ids)
	if err != nil {
		return apperr.Storage("check recipe ownership", err)
	}
	for _, id := range ids {
		if !owned[id] {
			return apperr.InvalidSelectorf("recipe %d does not exist", id)
		}
	}
	return nil
}

// SlotView is one generated slot with its entry. Entry is never nil; a
// slot nothing was saved for has an empty entry with ID 0.
type SlotView struct {
	Slot  plan.Slot
	Entry *plan.Entry
}

type workingSet struct {
	book    Book
	target  *model.Target
	dates   []string
	slots   []plan.Slot
	entries []*plan.Entry
	index   map[plan.Slot]*plan.Entry
}

func loadWorkingSet(q querier, book Book, userID int64, start string, days int) (*workingSet, error) {
	target, err := requireTarget(q, userID)
	if err != nil {
		return nil, err
	}
	first, err := windowStart(start)
	if err != nil {
		return nil, err
	}
	if days < 0 {
		return nil, fmt.Errorf("days must be >= 0")
	}
	ws := &workingSet{book: book, target: target, dates: plan.Window(first, days)}
	if len(ws.dates) == 0 {
		ws.slots = []plan.Slot{}
		ws.index = map[plan.Slot]*plan.Entry{}
		return ws, nil
	}
	ws.entries, err = loadEntries(q, book, userID, ws.dates[0], ws.dates[len(ws.dates)-1])
	if err != nil {
		return nil, err
	}
	ws.slots = plan.GenerateSlots(target.NumMainMeals, target.NumSnacks, ws.dates, plan.ExtrasByDate(ws.entries))
	ws.index = plan.IndexEntries(ws.entries)
	return ws, nil
}

func (ws *workingSet) views(resolved []*plan.Entry) []SlotView {
	out := make([]SlotView, 0, len(ws.slots))
	for i, s := range ws.slots {
		var e *plan.Entry
		if resolved != nil {
			e = resolved[i]
		} else if found, ok := ws.index[s]; ok {
			e = found
		}
		if e == nil {
			e = &plan.Entry{Slot: s}
			if ws.book == LogBook {
				e.PercentEaten = plan.DefaultPercentEaten
			}
		}
		out = append(out, SlotView{Slot: s, Entry: e})
	}
	return out
}

func (ws *workingSet) resolvedEntries() []*plan.Entry {
	out := make([]*plan.Entry, 0, len(ws.slots))
	for _, s := range ws.slots {
		if e, ok := ws.index[s]; ok {
			out = append(out, e)
		}
	}
	return out
}

func AddExtraSlot(db *sql.DB, book Book, userID int64, date string, kind plan.ExtraKind) (string, error) {
	date, err := parseDate(date)
	if err != nil {
		return "", err
	}
	var label string
	err = inTx(db, "add extra slot", func(tx *sql.Tx) error {
		entries, err := loadEntries(tx, book, userID, date, date)
		if err != nil {
			return err
		}
		label = plan.NextExtraLabel(kind, plan.ExtrasByDate(entries)[date])
		e := &plan.Entry{Slot: plan.Slot{Date: date, Label: label}, PercentEaten: plan.DefaultPercentEaten}
		return applyEntryWrites(tx, book, userID, plan.Result{Inserts: []*plan.Entry{e}})
	})
	if err != nil {
		return "", err
	}
	return label, nil
}

func windowStart(start string) (time.Time, error) {
	start = strings.TrimSpace(start)
	if start == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(plan.DateLayout, start)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", start)
	}
	return t, nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
