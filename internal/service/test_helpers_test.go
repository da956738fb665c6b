package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/saadjs/keto-cli/internal/db"
	"github.com/saadjs/keto-cli/internal/service"
)

const start = "2026-03-01"

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keto.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

func mustUser(t *testing.T, sqldb *sql.DB, name string) int64 {
	t.Helper()
	id, err := service.CreateUser(sqldb, name)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return id
}

func mustTarget(t *testing.T, sqldb *sql.DB, userID int64, meals, snacks int) {
	t.Helper()
	if _, err := service.SetTarget(sqldb, userID, service.SetTargetInput{
		Ratio:         3,
		Calories:      1500,
		Fat:           140,
		Protein:       35,
		Carbs:         12,
		NumMainMeals:  meals,
		NumSnacks:     snacks,
		EffectiveDate: "2026-01-01",
	}); err != nil {
		t.Fatalf("set target: %v", err)
	}
}

func mustIngredient(t *testing.T, sqldb *sql.DB, userID int64, name string, fat, carbs, protein, kcal float64) {
	t.Helper()
	if _, err := service.CreateIngredient(sqldb, userID, service.IngredientInput{
		Name:           name,
		Type:           "dairy",
		Units:          "g",
		PercentFat:     fat,
		PercentCarbs:   carbs,
		PercentProtein: protein,
		CaloriesPer100: kcal,
	}); err != nil {
		t.Fatalf("create ingredient %s: %v", name, err)
	}
}

func mustRecipe(t *testing.T, sqldb *sql.DB, userID int64, name string, lines ...service.RecipeLineInput) int64 {
	t.Helper()
	id, err := service.CreateRecipe(sqldb, userID, service.RecipeInput{
		Name:     name,
		Author:   "home",
		MealType: "main",
		Lines:    lines,
	})
	if err != nil {
		t.Fatalf("create recipe %s: %v", name, err)
	}
	return id
}

func fptr(v float64) *float64 {
	return &v
}
