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

const (
	BreakdownMeal  = "Meal"
	BreakdownSnack = "Snack"
)

type SetTargetInput struct {
	Ratio         float64
	Calories      float64
	Fat           float64
	Protein       float64
	Carbs         float64
	NumMainMeals  int
	NumSnacks     int
	EffectiveDate string
	Meal          *MacroInput
	Snack         *MacroInput
}

type MacroInput struct {
	Calories float64
	Fat      float64
	Protein  float64
	Carbs    float64
}

func SetTarget(db *sql.DB, userID int64, in SetTargetInput) (int64, error) {
	for name, v := range map[string]float64{"ratio": in.Ratio, "calories": in.Calories, "fat": in.Fat, "protein": in.Protein, "carbs": in.Carbs} {
		if err := validateNonNegativeFloat(name, v); err != nil {
			return 0, err
		}
	}
	if in.NumMainMeals < 0 || in.NumSnacks < 0 {
		return 0, fmt.Errorf("meal and snack counts must be >= 0")
	}
	in.EffectiveDate = strings.TrimSpace(in.EffectiveDate)
	if in.EffectiveDate == "" {
		in.EffectiveDate = time.Now().Format(plan.DateLayout)
	}
	date, err := parseDate(in.EffectiveDate)
	if err != nil {
		return 0, err
	}

	var id int64
	err = inTx(db, "set target", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
INSERT INTO targets(user_id, ratio, calories, fat, protein, carbs, num_main_meals, num_snacks, effective_date)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
`, userID, in.Ratio, in.Calories, in.Fat, in.Protein, in.Carbs, in.NumMainMeals, in.NumSnacks, date)
		if err != nil {
			return fmt.Errorf("set target: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("resolve target id: %w", err)
		}
		for item, m := range map[string]*MacroInput{BreakdownMeal: in.Meal, BreakdownSnack: in.Snack} {
			if m == nil {
				continue
			}
			if _, err := tx.Exec(`
INSERT INTO target_breakdowns(target_id, item, calories, fat, protein, carbs)
VALUES(?, ?, ?, ?, ?, ?)
`, id, item, m.Calories, m.Fat, m.Protein, m.Carbs); err != nil {
				return fmt.Errorf("set %s breakdown: %w", strings.ToLower(item), err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

const targetColumns = `id, user_id, ratio, calories, fat, protein, carbs, num_main_meals, num_snacks, effective_date, created_at`

func LatestTarget(db querier, userID int64) (*model.Target, error) {
	row := db.QueryRow(`SELECT `+targetColumns+` FROM targets WHERE user_id = ? ORDER BY effective_date DESC, id DESC LIMIT 1`, userID)
	t, err := scanTarget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("load target", err)
	}
	return &t, nil
}

func requireTarget(db querier, userID int64) (*model.Target, error) {
	t, err := LatestTarget(db, userID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.MissingTarget(userID)
	}
	return t, nil
}

func TargetHistory(db *sql.DB, userID int64) ([]model.Target, error) {
	rows, err := db.Query(`SELECT `+targetColumns+` FROM targets WHERE user_id = ? ORDER BY effective_date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()
	items := make([]model.Target, 0)
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate targets: %w", err)
	}
	return items, nil
}

func TargetBreakdowns(db *sql.DB, targetID int64) ([]model.TargetBreakdown, error) {
	rows, err := db.Query(`
SELECT id, target_id, item, calories, fat, protein, carbs
FROM target_breakdowns
WHERE target_id = ?
ORDER BY item
`, targetID)
	if err != nil {
		return nil, fmt.Errorf("list target breakdowns: %w", err)
	}
	defer rows.Close()
	items := make([]model.TargetBreakdown, 0)
	for rows.Next() {
		var b model.TargetBreakdown
		if err := rows.Scan(&b.ID, &b.TargetID, &b.Item, &b.Calories, &b.Fat, &b.Protein, &b.Carbs); err != nil {
			return nil, fmt.Errorf("scan target breakdown: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate target breakdowns: %w", err)
	}
	return items, nil
}

func scanTarget(row rowScanner) (model.Target, error) {
	var t model.Target
	err := row.Scan(&t.ID, &t.UserID, &t.Ratio, &t.Calories, &t.Fat, &t.Protein, &t.Carbs, &t.NumMainMeals, &t.NumSnacks, &t.EffectiveDate, &t.CreatedAt)
	return t, err
}
