package plan_test

import (
	"errors"
	"math"
	"testing"

	"github.com/saadjs/keto-cli/internal/apperr"
	"github.com/saadjs/keto-cli/internal/plan"
)

const day = "2026-03-01"

func threeSlots() []plan.Slot {
	return plan.GenerateSlots(2, 1, []string{day}, nil)
}

func TestReconcileResolvesSelectorVariants(t *testing.T) {
	t.Parallel()
	slots := threeSlots()
	res, err := plan.Reconcile(plan.PlannerMode, slots, []plan.Submission{
		{Selector: plan.Recipe(5)},
		{Selector: plan.Custom(), FreeText: "  toast  "},
		{Selector: plan.Unset()},
	}, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Inserts) != 3 || len(res.Updates) != 0 {
		t.Fatalf("expected 3 inserts and no updates, got %d/%d", len(res.Inserts), len(res.Updates))
	}

	breakfast, lunch, snack := res.Resolved[0], res.Resolved[1], res.Resolved[2]
	if breakfast.Slot.Label != "Breakfast" || breakfast.RecipeID == nil || *breakfast.RecipeID != 5 || breakfast.FreeText != nil {
		t.Fatalf("unexpected breakfast entry %+v", breakfast)
	}
	if lunch.RecipeID != nil || lunch.FreeText == nil || *lunch.FreeText != "toast" {
		t.Fatalf("unexpected lunch entry %+v", lunch)
	}
	if snack.Slot.Label != "Snack 1" || snack.RecipeID != nil || snack.FreeText != nil {
		t.Fatalf("unexpected snack entry %+v", snack)
	}
}

func TestReconcileBlankCustomTextStoresNull(t *testing.T) {
	t.Parallel()
	res, err := plan.Reconcile(plan.PlannerMode, threeSlots(), []plan.Submission{
		{Selector: plan.Custom(), FreeText: "   "},
	}, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if e := res.Resolved[0]; e.RecipeID != nil || e.FreeText != nil {
		t.Fatalf("expected empty custom entry, got %+v", e)
	}
	if e := res.Resolved[2]; e.Selector().Kind != plan.SelectUnset {
		t.Fatalf("expected missing submission to resolve to unset, got %+v", e)
	}
}

func TestReconcileUpdatesExistingInPlace(t *testing.T) {
	t.Parallel()
	slots := threeSlots()
	recipeID := int64(9)
	existingBreakfast := &plan.Entry{ID: 41, Slot: slots[0], RecipeID: &recipeID}
	existing := plan.IndexEntries([]*plan.Entry{existingBreakfast})

	res, err := plan.Reconcile(plan.LogMode, slots, []plan.Submission{
		{Selector: plan.Unset(), Notes: "  skipped "},
	}, existing)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Updates) != 1 || res.Updates[0] != existingBreakfast {
		t.Fatalf("expected existing breakfast to be updated in place, got %+v", res.Updates)
	}
	if existingBreakfast.ID != 41 || existingBreakfast.RecipeID != nil || existingBreakfast.FreeText != nil {
		t.Fatalf("expected breakfast reverted to unset row, got %+v", existingBreakfast)
	}
	if existingBreakfast.NotesText() != "skipped" {
		t.Fatalf("expected trimmed notes, got %q", existingBreakfast.NotesText())
	}
	if existingBreakfast.PercentEaten != plan.DefaultPercentEaten {
		t.Fatalf("expected default percent eaten, got %v", existingBreakfast.PercentEaten)
	}
	if len(res.Inserts) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(res.Inserts))
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()
	slots := threeSlots()
	half := 50.0
	subs := []plan.Submission{
		{Selector: plan.Recipe(5), PercentEaten: &half},
		{Selector: plan.Custom(), FreeText: "toast"},
	}

	first, err := plan.Reconcile(plan.LogMode, slots, subs, nil)
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	for i, e := range first.Inserts {
		e.ID = int64(i + 1)
	}
	second, err := plan.Reconcile(plan.LogMode, slots, subs, plan.IndexEntries(first.Resolved))
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if len(second.Inserts) != 0 || len(second.Updates) != len(slots) {
		t.Fatalf("expected only updates on second pass, got %d inserts %d updates", len(second.Inserts), len(second.Updates))
	}
	for i := range slots {
		a, b := first.Resolved[i], second.Resolved[i]
		if a.Selector() != b.Selector() || a.PercentEaten != b.PercentEaten {
			t.Fatalf("slot %d differs between passes: %+v vs %+v", i, a, b)
		}
	}
	if second.Resolved[0].PercentEaten != 50 {
		t.Fatalf("expected percent eaten 50, got %v", second.Resolved[0].PercentEaten)
	}
}

func TestReconcileRejectsWholeBatch(t *testing.T) {
	t.Parallel()
	slots := threeSlots()
	recipeID := int64(3)
	kept := &plan.Entry{ID: 1, Slot: slots[0], RecipeID: &recipeID}
	existing := plan.IndexEntries([]*plan.Entry{kept})
	tooMuch := 101.0
	notANumber := math.NaN()

	cases := map[string][]plan.Submission{
		"bad recipe id":    {{Selector: plan.Unset()}, {Selector: plan.Selector{Kind: plan.SelectRecipe}}},
		"percent too high": {{Selector: plan.Unset(), PercentEaten: &tooMuch}},
		"percent NaN":      {{Selector: plan.Unset(), PercentEaten: &notANumber}},
		"too many rows":    {{}, {}, {}, {}},
	}
	for name, subs := range cases {
		_, err := plan.Reconcile(plan.LogMode, slots, subs, existing)
		if !errors.Is(err, apperr.ErrInvalidSelector) {
			t.Fatalf("%s: expected invalid selector, got %v", name, err)
		}
		if kept.RecipeID == nil || *kept.RecipeID != 3 {
			t.Fatalf("%s: existing entry was modified: %+v", name, kept)
		}
	}
}

func TestParseSelector(t *testing.T) {
	t.Parallel()
	valid := map[string]plan.Selector{
		"":       plan.Unset(),
		"unset":  plan.Unset(),
		"0":      plan.Unset(),
		"Custom": plan.Custom(),
		" 12 ":   plan.Recipe(12),
	}
	for raw, want := range valid {
		got, err := plan.ParseSelector(raw)
		if err != nil || got != want {
			t.Fatalf("ParseSelector(%q) = %+v, %v; want %+v", raw, got, err, want)
		}
		if again, err := plan.ParseSelector(got.String()); err != nil || again != got {
			t.Fatalf("selector %+v does not survive String(): %+v %v", got, again, err)
		}
	}
	for _, raw := range []string{"-1", "abc", "1.5", "+5", "05", "00"} {
		if _, err := plan.ParseSelector(raw); !errors.Is(err, apperr.ErrInvalidSelector) {
			t.Fatalf("ParseSelector(%q): expected invalid selector, got %v", raw, err)
		}
	}
}

func TestExtrasByDateKeepsDiscoveryOrder(t *testing.T) {
	t.Parallel()
	entries := []*plan.Entry{
		{Slot: plan.Slot{Date: day, Label: "Breakfast"}},
		{Slot: plan.Slot{Date: day, Label: "Extra Snack 1"}},
		{Slot: plan.Slot{Date: day, Label: "Extra Meal 1"}},
	}
	got := plan.ExtrasByDate(entries)[day]
	if len(got) != 2 || got[0] != "Extra Snack 1" || got[1] != "Extra Meal 1" {
		t.Fatalf("unexpected extras %v", got)
	}
}
