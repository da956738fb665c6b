package service

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/saadjs/keto-cli/internal/apperr"
	"github.com/saadjs/keto-cli/internal/logging"
	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/plan"
	"go.uber.org/zap"
)

type PlannerView struct {
	Target       *model.Target
	Dates        []string
	Slots        []SlotView
	ShoppingList []plan.ShoppingItem
	Recipes      map[int64]model.Recipe
}

func (v *PlannerView) Form() *Form {
	return newForm(PlannerBook, v.Dates, v.Slots, recipeNames(v.Recipes))
}

func LoadPlanner(db *sql.DB, userID int64, start string, days int) (*PlannerView, error) {
	ws, err := loadWorkingSet(db, PlannerBook, userID, start, days)
	if err != nil {
		return nil, err
	}
	return plannerView(db, userID, ws, ws.resolvedEntries(), nil)
}

// SavePlanner reconciles positional submissions against the window and
// commits the result in one transaction. The returned view is built from
// the reconciled working set.
func SavePlanner(db *sql.DB, userID int64, start string, days int, subs []plan.Submission) (*PlannerView, error) {
	return savePlanner(db, userID, start, days, func([]plan.Slot) ([]plan.Submission, error) {
		return subs, nil
	})
}

func SavePlannerForm(db *sql.DB, userID int64, f *Form) (*PlannerView, error) {
	if f.Book != PlannerBook {
		return nil, fmt.Errorf("form is for the %s, not the planner", f.Book)
	}
	return savePlanner(db, userID, f.Start, f.Days, f.submissions)
}

func ShoppingList(db *sql.DB, userID int64, start string, days int) ([]plan.ShoppingItem, error) {
	v, err := LoadPlanner(db, userID, start, days)
	if err != nil {
		return nil, err
	}
	return v.ShoppingList, nil
}

func savePlanner(db *sql.DB, userID int64, start string, days int, collect func([]plan.Slot) ([]plan.Submission, error)) (*PlannerView, error) {
	submissionID := uuid.NewString()
	var (
		view *PlannerView
		res  plan.Result
	)
	err := inTx(db, "save planner", func(tx *sql.Tx) error {
		ws, err := loadWorkingSet(tx, PlannerBook, userID, start, days)
		if err != nil {
			return err
		}
		subs, err := collect(ws.slots)
		if err != nil {
			return err
		}
		if err := checkRecipeOwnership(tx, userID, subs); err != nil {
			return err
		}
		res, err = plan.Reconcile(plan.PlannerMode, ws.slots, subs, ws.index)
		if err != nil {
			return err
		}
		if err := applyEntryWrites(tx, PlannerBook, userID, res); err != nil {
			return err
		}
		view, err = plannerView(tx, userID, ws, res.Resolved, res.Resolved)
		return err
	})
	if err != nil {
		logSubmissionFailure("planner", submissionID, userID, err)
		return nil, err
	}
	logging.Info("planner saved",
		zap.String("submission_id", submissionID),
		zap.Int64("user_id", userID),
		zap.Int("updates", len(res.Updates)),
		zap.Int("inserts", len(res.Inserts)),
	)
	return view, nil
}

func plannerView(q querier, userID int64, ws *workingSet, entries, resolved []*plan.Entry) (*PlannerView, error) {
	lines, err := RecipeLinesForUser(q, userID)
	if err != nil {
		return nil, err
	}
	recipes, err := recipesByID(q, userID)
	if err != nil {
		return nil, err
	}
	return &PlannerView{
		Target:       ws.target,
		Dates:        ws.dates,
		Slots:        ws.views(resolved),
		ShoppingList: plan.BuildShoppingList(entries, lines),
		Recipes:      recipes,
	}, nil
}

func recipesByID(q querier, userID int64) (map[int64]model.Recipe, error) {
	rows, err := q.Query(`SELECT `+recipeColumns+` FROM recipes WHERE user_id = ?`, userID)
	if err != nil {
		return nil, apperr.Storage("load recipes", err)
	}
	defer rows.Close()
	out := map[int64]model.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, apperr.Storage("scan recipe", err)
		}
		out[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate recipes", err)
	}
	return out, nil
}

func recipeNames(recipes map[int64]model.Recipe) map[int64]string {
	out := make(map[int64]string, len(recipes))
	for id, r := range recipes {
		out[id] = r.Name
	}
	return out
}

func logSubmissionFailure(book, submissionID string, userID int64, err error) {
	fields := []zap.Field{
		zap.String("submission_id", submissionID),
		zap.Int64("user_id", userID),
		zap.Error(err),
	}
	if apperr.IsUserFacing(err) {
		logging.Warn(book+" submission rejected", fields...)
		return
	}
	logging.Error(book+" submission failed", fields...)
}
