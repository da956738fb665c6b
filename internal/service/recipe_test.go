package service_test

import (
	"math"
	"testing"

	"github.com/saadjs/keto-cli/internal/service"
)

func TestCreateRecipeFreezesLineMacros(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")
	mustIngredient(t, sqldb, userID, "Cream", 36, 3, 2, 340)
	mustIngredient(t, sqldb, userID, "Egg", 10, 1, 13, 150)

	id := mustRecipe(t, sqldb, userID, "Custard",
		service.RecipeLineInput{Ingredient: "cream", Amount: 50},
		service.RecipeLineInput{Ingredient: "Egg", Amount: 40},
		service.RecipeLineInput{Ingredient: "Group 1 Vegetables", Amount: 10},
	)

	r, err := service.ResolveRecipe(sqldb, userID, "custard")
	if err != nil {
		t.Fatalf("resolve recipe: %v", err)
	}
	if r.ID != id {
		t.Fatalf("expected recipe %d, got %d", id, r.ID)
	}
	if math.Abs(r.TotalFat-22) > 1e-9 || math.Abs(r.TotalProtein-6.2) > 1e-9 || math.Abs(r.TotalCarbs-1.9) > 1e-9 {
		t.Fatalf("unexpected totals: fat %.2f protein %.2f carbs %.2f", r.TotalFat, r.TotalProtein, r.TotalCarbs)
	}
	if r.Ratio == nil || math.Abs(*r.Ratio-22/8.1) > 1e-9 {
		t.Fatalf("expected ratio %.3f, got %v", 22/8.1, r.Ratio)
	}

	// Changing the ingredient later must not touch the recipe.
	if _, err := sqldb.Exec(`UPDATE ingredients SET percent_fat = 0 WHERE name = 'Cream'`); err != nil {
		t.Fatalf("update ingredient: %v", err)
	}
	lines, err := service.ListRecipeLines(sqldb, userID, "Custard")
	if err != nil {
		t.Fatalf("list recipe lines: %v", err)
	}
	if len(lines) != 3 || lines[0].IngredientName != "Cream" || lines[0].Fat != 18 {
		t.Fatalf("expected frozen cream line with 18g fat, got %+v", lines)
	}
	if !lines[2].Unmeasured {
		t.Fatalf("expected vegetables line to be unmeasured")
	}
}

func TestCreateRecipeRejectsUnknownIngredientAtomically(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")
	mustIngredient(t, sqldb, userID, "Cream", 36, 3, 2, 340)

	_, err := service.CreateRecipe(sqldb, userID, service.RecipeInput{
		Name:     "Broken",
		Author:   "hospital",
		MealType: "snack",
		Lines: []service.RecipeLineInput{
			{Ingredient: "Cream", Amount: 10},
			{Ingredient: "Unicorn", Amount: 10},
		},
	})
	if err == nil {
		t.Fatalf("expected unknown ingredient to fail")
	}
	recipes, err := service.ListRecipes(sqldb, userID, "")
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 0 {
		t.Fatalf("expected no recipe to be stored, got %d", len(recipes))
	}
}

func TestRecipeValidation(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")
	mustIngredient(t, sqldb, userID, "Cream", 36, 3, 2, 340)
	line := []service.RecipeLineInput{{Ingredient: "Cream", Amount: 10}}

	cases := []service.RecipeInput{
		{Name: "", Author: "home", MealType: "main", Lines: line},
		{Name: "x", Author: "chef", MealType: "main", Lines: line},
		{Name: "x", Author: "home", MealType: "brunch", Lines: line},
		{Name: "x", Author: "home", MealType: "main"},
		{Name: "x", Author: "home", MealType: "main", Lines: []service.RecipeLineInput{{Ingredient: "Cream", Amount: 0}}},
	}
	for i, in := range cases {
		if _, err := service.CreateRecipe(sqldb, userID, in); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestRecipesAreScopedToTheirUser(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	ada := mustUser(t, sqldb, "Ada")
	bob := mustUser(t, sqldb, "Bob")
	mustIngredient(t, sqldb, ada, "Cream", 36, 3, 2, 340)
	id := mustRecipe(t, sqldb, ada, "Custard", service.RecipeLineInput{Ingredient: "Cream", Amount: 50})

	if _, err := service.ResolveRecipe(sqldb, bob, "Custard"); err == nil {
		t.Fatalf("expected another user's recipe to be invisible")
	}
	if err := service.DeleteRecipe(sqldb, bob, "Custard"); err == nil {
		t.Fatalf("expected another user to be unable to delete the recipe")
	}
	if _, err := service.ResolveRecipe(sqldb, ada, "Custard"); err != nil {
		t.Fatalf("expected recipe %d to survive: %v", id, err)
	}
}

func TestDeleteRecipeRemovesLinesAndFreesIngredient(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")
	mustIngredient(t, sqldb, userID, "Cream", 36, 3, 2, 340)
	mustRecipe(t, sqldb, userID, "Custard", service.RecipeLineInput{Ingredient: "Cream", Amount: 50})

	if err := service.DeleteIngredient(sqldb, userID, "Cream"); err == nil {
		t.Fatalf("expected ingredient in use to be kept")
	}
	if err := service.DeleteRecipe(sqldb, userID, "Custard"); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}
	var lines int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM recipe_ingredients`).Scan(&lines); err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Fatalf("expected recipe lines to be deleted, got %d", lines)
	}
	if err := service.DeleteIngredient(sqldb, userID, "Cream"); err != nil {
		t.Fatalf("delete ingredient: %v", err)
	}
}

func TestListRecipesByMealType(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")
	mustIngredient(t, sqldb, userID, "Cream", 36, 3, 2, 340)
	mustRecipe(t, sqldb, userID, "Custard", service.RecipeLineInput{Ingredient: "Cream", Amount: 50})
	if _, err := service.CreateRecipe(sqldb, userID, service.RecipeInput{
		Name: "Fat bomb", Author: "hospital", MealType: "snack",
		Lines: []service.RecipeLineInput{{Ingredient: "Cream", Amount: 20}},
	}); err != nil {
		t.Fatalf("create snack: %v", err)
	}

	snacks, err := service.ListRecipes(sqldb, userID, "snack")
	if err != nil {
		t.Fatalf("list snacks: %v", err)
	}
	if len(snacks) != 1 || snacks[0].Name != "Fat bomb" {
		t.Fatalf("expected only the fat bomb, got %+v", snacks)
	}
	if _, err := service.ListRecipes(sqldb, userID, "dessert"); err == nil {
		t.Fatalf("expected invalid meal type to fail")
	}
}
