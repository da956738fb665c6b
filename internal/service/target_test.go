package service_test

import (
	"testing"

	"github.com/saadjs/keto-cli/internal/service"
)

func TestLatestTargetByEffectiveDate(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")

	got, err := service.LatestTarget(sqldb, userID)
	if err != nil {
		t.Fatalf("latest target: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no target, got %+v", got)
	}

	for _, in := range []service.SetTargetInput{
		{Ratio: 3, Calories: 1400, NumMainMeals: 3, EffectiveDate: "2026-02-01"},
		{Ratio: 4, Calories: 1600, NumMainMeals: 2, NumSnacks: 1, EffectiveDate: "2026-01-01"},
	} {
		if _, err := service.SetTarget(sqldb, userID, in); err != nil {
			t.Fatalf("set target: %v", err)
		}
	}
	got, err = service.LatestTarget(sqldb, userID)
	if err != nil {
		t.Fatalf("latest target: %v", err)
	}
	if got == nil || got.Calories != 1400 || got.NumMainMeals != 3 {
		t.Fatalf("expected the 2026-02-01 target, got %+v", got)
	}

	history, err := service.TargetHistory(sqldb, userID)
	if err != nil {
		t.Fatalf("target history: %v", err)
	}
	if len(history) != 2 || history[0].EffectiveDate != "2026-02-01" {
		t.Fatalf("expected newest-first history, got %+v", history)
	}
}

func TestSetTargetWithBreakdown(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")

	id, err := service.SetTarget(sqldb, userID, service.SetTargetInput{
		Ratio:        3,
		Calories:     1500,
		NumMainMeals: 3,
		NumSnacks:    2,
		Meal:         &service.MacroInput{Calories: 400, Fat: 38},
		Snack:        &service.MacroInput{Calories: 150, Fat: 14},
	})
	if err != nil {
		t.Fatalf("set target: %v", err)
	}
	items, err := service.TargetBreakdowns(sqldb, id)
	if err != nil {
		t.Fatalf("list breakdowns: %v", err)
	}
	if len(items) != 2 || items[0].Item != service.BreakdownMeal || items[1].Calories != 150 {
		t.Fatalf("unexpected breakdowns: %+v", items)
	}
}

func TestSetTargetValidation(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")

	cases := []service.SetTargetInput{
		{Calories: -1},
		{NumMainMeals: -1},
		{EffectiveDate: "03/01/2026"},
	}
	for i, in := range cases {
		if _, err := service.SetTarget(sqldb, userID, in); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
