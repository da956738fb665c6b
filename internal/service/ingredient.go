package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/keto-cli/internal/model"
)

type IngredientInput struct {
	Name           string
	Type           string
	Units          string
	PercentFat     float64
	PercentCarbs   float64
	PercentProtein float64
	CaloriesPer100 float64
	Source         string
	Unmeasured     bool
}

// unmeasuredIngredients are tracked by note on the shopping list rather than
// by amount.
var unmeasuredIngredients = []IngredientInput{
	{Name: "Group 1 Vegetables", Type: "vegetables", Units: "g", Unmeasured: true},
	{Name: "Group 2 Vegetables", Type: "vegetables", Units: "g", Unmeasured: true},
	{Name: "Group 3 Vegetables", Type: "vegetables", Units: "g", Unmeasured: true},
	{Name: "Group A Fruit", Type: "fruit", Units: "g", Unmeasured: true},
	{Name: "Group B Fruit", Type: "fruit", Units: "g", Unmeasured: true},
	{Name: "Group C Fruit", Type: "fruit", Units: "g", Unmeasured: true},
}

const ingredientColumns = `id, user_id, name, type, units, percent_fat, percent_carbs, percent_protein, calories_per_100, source, unmeasured_ingredient, created_at`

func CreateIngredient(db *sql.DB, userID int64, in IngredientInput) (int64, error) {
	in, err := normalizeIngredientInput(in)
	if err != nil {
		return 0, err
	}
	res, err := db.Exec(`
INSERT INTO ingredients(user_id, name, type, units, percent_fat, percent_carbs, percent_protein, calories_per_100, source, unmeasured_ingredient)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, userID, in.Name, in.Type, in.Units, in.PercentFat, in.PercentCarbs, in.PercentProtein, in.CaloriesPer100, in.Source, in.Unmeasured)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, fmt.Errorf("ingredient %q already exists", in.Name)
		}
		return 0, fmt.Errorf("create ingredient: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve ingredient id: %w", err)
	}
	return id, nil
}

func ListIngredients(db *sql.DB, userID int64) ([]model.Ingredient, error) {
	rows, err := db.Query(`SELECT `+ingredientColumns+` FROM ingredients WHERE user_id = ? ORDER BY name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	items := make([]model.Ingredient, 0)
	for rows.Next() {
		it, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}
	return items, nil
}

func ResolveIngredient(db querier, userID int64, idOrName string) (*model.Ingredient, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, fmt.Errorf("ingredient identifier is required")
	}
	var row *sql.Row
	if id, err := parseIDLoose(idOrName); err == nil {
		row = db.QueryRow(`SELECT `+ingredientColumns+` FROM ingredients WHERE user_id = ? AND id = ?`, userID, id)
	} else {
		row = db.QueryRow(`SELECT `+ingredientColumns+` FROM ingredients WHERE user_id = ? AND LOWER(name) = ?`, userID, normalizeName(idOrName))
	}
	it, err := scanIngredient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("ingredient %q not found", idOrName)
		}
		return nil, fmt.Errorf("resolve ingredient %q: %w", idOrName, err)
	}
	return &it, nil
}

func DeleteIngredient(db *sql.DB, userID int64, idOrName string) error {
	it, err := ResolveIngredient(db, userID, idOrName)
	if err != nil {
		return err
	}
	var uses int
	if err := db.QueryRow(`SELECT COUNT(1) FROM recipe_ingredients WHERE ingredient_id = ?`, it.ID).Scan(&uses); err != nil {
		return fmt.Errorf("count ingredient uses: %w", err)
	}
	if uses > 0 {
		return fmt.Errorf("ingredient %q is used by %d recipe line(s)", it.Name, uses)
	}
	if _, err := db.Exec(`DELETE FROM ingredients WHERE id = ?`, it.ID); err != nil {
		return fmt.Errorf("delete ingredient %q: %w", it.Name, err)
	}
	return nil
}

func SeedUnmeasuredIngredients(db *sql.DB, userID int64) (int, error) {
	var added int
	err := inTx(db, "seed ingredients", func(tx *sql.Tx) error {
		var err error
		added, err = seedUnmeasuredIngredients(tx, userID)
		return err
	})
	return added, err
}

func seedUnmeasuredIngredients(q querier, userID int64) (int, error) {
	added := 0
	for _, in := range unmeasuredIngredients {
		res, err := q.Exec(`
INSERT OR IGNORE INTO ingredients(user_id, name, type, units, unmeasured_ingredient)
VALUES(?, ?, ?, ?, 1)
`, userID, in.Name, in.Type, in.Units)
		if err != nil {
			return added, fmt.Errorf("seed ingredient %s: %w", in.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	return added, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIngredient(row rowScanner) (model.Ingredient, error) {
	var it model.Ingredient
	err := row.Scan(&it.ID, &it.UserID, &it.Name, &it.Type, &it.Units, &it.PercentFat, &it.PercentCarbs, &it.PercentProtein, &it.CaloriesPer100, &it.Source, &it.Unmeasured, &it.CreatedAt)
	return it, err
}

func normalizeIngredientInput(in IngredientInput) (IngredientInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Units = strings.ToLower(strings.TrimSpace(in.Units))
	in.Source = strings.TrimSpace(in.Source)
	if in.Name == "" {
		return in, fmt.Errorf("ingredient name is required")
	}
	if in.Type == "" {
		return in, fmt.Errorf("ingredient type is required")
	}
	if in.Units != "g" && in.Units != "ml" {
		return in, fmt.Errorf("invalid units %q (use g or ml)", in.Units)
	}
	if err := validatePercent("fat", in.PercentFat); err != nil {
		return in, err
	}
	if err := validatePercent("carbs", in.PercentCarbs); err != nil {
		return in, err
	}
	if err := validatePercent("protein", in.PercentProtein); err != nil {
		return in, err
	}
	if in.PercentFat+in.PercentCarbs+in.PercentProtein > 100 {
		return in, fmt.Errorf("fat, carbs and protein percentages add up to more than 100")
	}
	if err := validateNonNegativeFloat("calories", in.CaloriesPer100); err != nil {
		return in, err
	}
	return in, nil
}
