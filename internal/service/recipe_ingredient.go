package service

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/keto-cli/internal/apperr"
	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/plan"
)

const recipeLineSelect = `
SELECT ri.id, ri.recipe_id, ri.ingredient_id, i.name, i.units, i.unmeasured_ingredient, ri.position, ri.amount, ri.fat, ri.carbs, ri.protein, ri.calories
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
`

func ListRecipeLines(db *sql.DB, userID int64, recipeIdentifier string) ([]model.RecipeIngredient, error) {
	recipe, err := ResolveRecipe(db, userID, recipeIdentifier)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(recipeLineSelect+`WHERE ri.recipe_id = ? ORDER BY ri.position ASC, ri.id ASC`, recipe.ID)
	if err != nil {
		return nil, fmt.Errorf("list recipe lines: %w", err)
	}
	defer rows.Close()
	items := make([]model.RecipeIngredient, 0)
	for rows.Next() {
		it, err := scanRecipeLine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe lines: %w", err)
	}
	return items, nil
}

func RecipeLinesForUser(db querier, userID int64) (map[int64][]plan.RecipeLine, error) {
	rows, err := db.Query(recipeLineSelect+`
JOIN recipes r ON r.id = ri.recipe_id
WHERE r.user_id = ?
ORDER BY ri.recipe_id, ri.position, ri.id
`, userID)
	if err != nil {
		return nil, apperr.Storage("load recipe lines", err)
	}
	defer rows.Close()
	out := map[int64][]plan.RecipeLine{}
	for rows.Next() {
		it, err := scanRecipeLine(rows)
		if err != nil {
			return nil, apperr.Storage("load recipe lines", err)
		}
		out[it.RecipeID] = append(out[it.RecipeID], plan.RecipeLine{
			IngredientName: it.IngredientName,
			Units:          it.Units,
			Amount:         it.Amount,
			Unmeasured:     it.Unmeasured,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("load recipe lines", err)
	}
	return out, nil
}

func scanRecipeLine(rows *sql.Rows) (model.RecipeIngredient, error) {
	var it model.RecipeIngredient
	if err := rows.Scan(&it.ID, &it.RecipeID, &it.IngredientID, &it.IngredientName, &it.Units, &it.Unmeasured, &it.Position, &it.Amount, &it.Fat, &it.Carbs, &it.Protein, &it.Calories); err != nil {
		return it, fmt.Errorf("scan recipe line: %w", err)
	}
	return it, nil
}
