package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/keto-cli/internal/model"
)

var (
	recipeAuthors   = []string{"hospital", "home"}
	recipeMealTypes = []string{"breakfast", "main", "snack"}
)

type RecipeInput struct {
	Name     string
	Author   string
	MealType string
	Notes    string
	Lines    []RecipeLineInput
}

type RecipeLineInput struct {
	Ingredient string
	Amount     float64
}

const recipeColumns = `id, user_id, name, author, meal_type, IFNULL(notes,''), total_fat, total_carbs, total_protein, total_calories, ratio, created_at, updated_at`

func CreateRecipe(db *sql.DB, userID int64, in RecipeInput) (int64, error) {
	in, err := normalizeRecipeInput(in)
	if err != nil {
		return 0, err
	}
	var id int64
	err = inTx(db, "create recipe", func(tx *sql.Tx) error {
		lines := make([]model.RecipeIngredient, 0, len(in.Lines))
		var totals model.Recipe
		for i, l := range in.Lines {
			ing, err := ResolveIngredient(tx, userID, l.Ingredient)
			if err != nil {
				return err
			}
			line := model.RecipeIngredient{
				IngredientID: ing.ID,
				Position:     i + 1,
				Amount:       l.Amount,
				Fat:          ing.PercentFat * l.Amount / 100,
				Carbs:        ing.PercentCarbs * l.Amount / 100,
				Protein:      ing.PercentProtein * l.Amount / 100,
				Calories:     ing.CaloriesPer100 * l.Amount / 100,
			}
			totals.TotalFat += line.Fat
			totals.TotalCarbs += line.Carbs
			totals.TotalProtein += line.Protein
			totals.TotalCalories += line.Calories
			lines = append(lines, line)
		}

		res, err := tx.Exec(`
INSERT INTO recipes(user_id, name, author, meal_type, notes, total_fat, total_carbs, total_protein, total_calories, ratio)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, userID, in.Name, in.Author, in.MealType, in.Notes, totals.TotalFat, totals.TotalCarbs, totals.TotalProtein, totals.TotalCalories,
			nullableFloat(KetoRatio(totals.TotalFat, totals.TotalProtein, totals.TotalCarbs)))
		if err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("resolve recipe id: %w", err)
		}
		for _, line := range lines {
			if _, err := tx.Exec(`
INSERT INTO recipe_ingredients(recipe_id, ingredient_id, position, amount, fat, carbs, protein, calories)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`, id, line.IngredientID, line.Position, line.Amount, line.Fat, line.Carbs, line.Protein, line.Calories); err != nil {
				return fmt.Errorf("add recipe line %d: %w", line.Position, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// KetoRatio is fat : (protein + carbs), or nil when the denominator is zero.
func KetoRatio(fat, protein, carbs float64) *float64 {
	den := protein + carbs
	if den <= 0 {
		return nil
	}
	r := fat / den
	return &r
}

func ListRecipes(db *sql.DB, userID int64, mealType string) ([]model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE user_id = ?`
	args := []any{userID}
	if mealType = strings.ToLower(strings.TrimSpace(mealType)); mealType != "" {
		if !oneOf(mealType, recipeMealTypes) {
			return nil, fmt.Errorf("invalid meal type %q (use %s)", mealType, strings.Join(recipeMealTypes, ", "))
		}
		query += ` AND meal_type = ?`
		args = append(args, mealType)
	}
	query += ` ORDER BY name COLLATE NOCASE, id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	items := make([]model.Recipe, 0)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return items, nil
}

func ResolveRecipe(db querier, userID int64, idOrName string) (*model.Recipe, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, fmt.Errorf("recipe identifier is required")
	}
	var row *sql.Row
	if id, err := parseIDLoose(idOrName); err == nil {
		row = db.QueryRow(`SELECT `+recipeColumns+` FROM recipes WHERE user_id = ? AND id = ?`, userID, id)
	} else {
		row = db.QueryRow(`SELECT `+recipeColumns+` FROM recipes WHERE user_id = ? AND LOWER(name) = ? ORDER BY id LIMIT 1`, userID, normalizeName(idOrName))
	}
	r, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recipe %q not found", idOrName)
		}
		return nil, fmt.Errorf("resolve recipe %q: %w", idOrName, err)
	}
	return &r, nil
}

func DeleteRecipe(db *sql.DB, userID int64, idOrName string) error {
	recipe, err := ResolveRecipe(db, userID, idOrName)
	if err != nil {
		return err
	}
	return inTx(db, "delete recipe", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipe.ID); err != nil {
			return fmt.Errorf("delete recipe lines %q: %w", idOrName, err)
		}
		if _, err := tx.Exec(`DELETE FROM recipes WHERE id = ? AND user_id = ?`, recipe.ID, userID); err != nil {
			return fmt.Errorf("delete recipe %q: %w", idOrName, err)
		}
		return nil
	})
}

func ownedRecipeIDs(q querier, userID int64, ids []int64) (map[int64]bool, error) {
	owned := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, seen := owned[id]; seen {
			continue
		}
		var n int
		if err := q.QueryRow(`SELECT COUNT(1) FROM recipes WHERE id = ? AND user_id = ?`, id, userID).Scan(&n); err != nil {
			return nil, fmt.Errorf("check recipe %d: %w", id, err)
		}
		owned[id] = n > 0
	}
	return owned, nil
}

func scanRecipe(row rowScanner) (model.Recipe, error) {
	var r model.Recipe
	var ratio sql.NullFloat64
	err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.Author, &r.MealType, &r.Notes, &r.TotalFat, &r.TotalCarbs, &r.TotalProtein, &r.TotalCalories, &ratio, &r.CreatedAt, &r.UpdatedAt)
	r.Ratio = floatPtr(ratio)
	return r, err
}

func normalizeRecipeInput(in RecipeInput) (RecipeInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Author = strings.ToLower(strings.TrimSpace(in.Author))
	in.MealType = strings.ToLower(strings.TrimSpace(in.MealType))
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Name == "" {
		return in, fmt.Errorf("recipe name is required")
	}
	if !oneOf(in.Author, recipeAuthors) {
		return in, fmt.Errorf("invalid author %q (use %s)", in.Author, strings.Join(recipeAuthors, ", "))
	}
	if !oneOf(in.MealType, recipeMealTypes) {
		return in, fmt.Errorf("invalid meal type %q (use %s)", in.MealType, strings.Join(recipeMealTypes, ", "))
	}
	if len(in.Lines) == 0 {
		return in, fmt.Errorf("recipe needs at least one ingredient")
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.Ingredient) == "" {
			return in, fmt.Errorf("line %d: ingredient is required", i+1)
		}
		if l.Amount <= 0 {
			return in, fmt.Errorf("line %d: amount must be > 0", i+1)
		}
	}
	return in, nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
