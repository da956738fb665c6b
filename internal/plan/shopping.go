package plan

import (
	"sort"
	"strings"
)

// RecipeLine is one ingredient line of a recipe as the shopping list sees it.
type RecipeLine struct {
	IngredientName string
	Units          string
	Amount         float64
	Unmeasured     bool
}

// ShoppingItem is one aggregated row. Notes is empty when no note survives.
type ShoppingItem struct {
	Name        string
	Units       string
	TotalAmount float64
	Notes       []string
}

// NotesText joins the notes for display.
func (s ShoppingItem) NotesText() string {
	return strings.Join(s.Notes, "; ")
}

type shoppingKey struct {
	name  string
	units string
}

// BuildShoppingList sums ingredient amounts across every resolved entry that
// references a recipe in recipes. Unmeasured ingredients pick up the slot's
// notes. A note string is kept only on the first output row (in name order)
// that carries it, even when a later row got it from a different slot.
func BuildShoppingList(resolved []*Entry, recipes map[int64][]RecipeLine) []ShoppingItem {
	rows := map[shoppingKey]*ShoppingItem{}
	noteSeen := map[shoppingKey]map[string]bool{}
	for _, e := range resolved {
		if e == nil || e.RecipeID == nil {
			continue
		}
		lines, ok := recipes[*e.RecipeID]
		if !ok {
			continue
		}
		note := strings.TrimSpace(e.NotesText())
		for _, line := range lines {
			key := shoppingKey{name: line.IngredientName, units: line.Units}
			row, ok := rows[key]
			if !ok {
				row = &ShoppingItem{Name: line.IngredientName, Units: line.Units}
				rows[key] = row
				noteSeen[key] = map[string]bool{}
			}
			row.TotalAmount += line.Amount
			if line.Unmeasured && note != "" && !noteSeen[key][note] {
				noteSeen[key][note] = true
				row.Notes = append(row.Notes, note)
			}
		}
	}

	out := make([]ShoppingItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		if out[i].Units != out[j].Units {
			return out[i].Units < out[j].Units
		}
		return out[i].Name < out[j].Name
	})

	attached := map[string]bool{}
	for i := range out {
		kept := make([]string, 0, len(out[i].Notes))
		for _, note := range out[i].Notes {
			if attached[note] {
				continue
			}
			attached[note] = true
			kept = append(kept, note)
		}
		if len(kept) == 0 {
			kept = nil
		}
		out[i].Notes = kept
	}
	return out
}
