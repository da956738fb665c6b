package service

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/saadjs/keto-cli/internal/logging"
	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/plan"
	"go.uber.org/zap"
)

type LogView struct {
	Target    *model.Target
	Dates     []string
	Slots     []SlotView
	Readings  []model.KetoneReading
	Series    []model.KetoneReading
	DayTotals []DayTotals
	Recipes   map[int64]model.Recipe
}

func (v *LogView) Form() *Form {
	f := newForm(LogBook, v.Dates, v.Slots, recipeNames(v.Recipes))
	f.Readings = make([]FormReading, 0, len(v.Series))
	for _, r := range v.Series {
		f.Readings = append(f.Readings, FormReading{Date: r.Date, Time: r.Time, Ketone: r.KetoneLevel, Glucose: r.GlucoseLevel})
	}
	return f
}

type LogSubmission struct {
	Slots    []plan.Submission
	Readings []plan.Reading
}

func LoadLog(db *sql.DB, userID int64, start string, days int) (*LogView, error) {
	ws, err := loadWorkingSet(db, LogBook, userID, start, days)
	if err != nil {
		return nil, err
	}
	return logView(db, userID, ws, nil)
}

// SaveLog reconciles the slot submissions and the ketone series and commits
// both in one transaction.
func SaveLog(db *sql.DB, userID int64, start string, days int, sub LogSubmission) (*LogView, error) {
	return saveLog(db, userID, start, days, sub.Readings, func([]plan.Slot) ([]plan.Submission, error) {
		return sub.Slots, nil
	})
}

func SaveLogForm(db *sql.DB, userID int64, f *Form) (*LogView, error) {
	if f.Book != LogBook {
		return nil, fmt.Errorf("form is for the %s, not the log", f.Book)
	}
	return saveLog(db, userID, f.Start, f.Days, f.readings(), f.submissions)
}

func saveLog(db *sql.DB, userID int64, start string, days int, readings []plan.Reading, collect func([]plan.Slot) ([]plan.Submission, error)) (*LogView, error) {
	submissionID := uuid.NewString()
	var (
		view   *LogView
		res    plan.Result
		synced SyncResult
	)
	err := inTx(db, "save log", func(tx *sql.Tx) error {
		ws, err := loadWorkingSet(tx, LogBook, userID, start, days)
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
		res, err = plan.Reconcile(plan.LogMode, ws.slots, subs, ws.index)
		if err != nil {
			return err
		}
		if err := applyEntryWrites(tx, LogBook, userID, res); err != nil {
			return err
		}
		if synced, err = syncKetones(tx, userID, readings); err != nil {
			return err
		}
		view, err = logView(tx, userID, ws, res.Resolved)
		return err
	})
	if err != nil {
		logSubmissionFailure("log", submissionID, userID, err)
		return nil, err
	}
	logging.Info("log saved",
		zap.String("submission_id", submissionID),
		zap.Int64("user_id", userID),
		zap.Int("updates", len(res.Updates)),
		zap.Int("inserts", len(res.Inserts)),
		zap.Int("readings_updated", synced.Updated),
		zap.Int("readings_inserted", synced.Inserted),
		zap.Int("readings_deleted", synced.Deleted),
	)
	return view, nil
}

func logView(q querier, userID int64, ws *workingSet, resolved []*plan.Entry) (*LogView, error) {
	recipes, err := recipesByID(q, userID)
	if err != nil {
		return nil, err
	}
	view := &LogView{
		Target:   ws.target,
		Dates:    ws.dates,
		Slots:    ws.views(resolved),
		Recipes:  recipes,
		Readings: []model.KetoneReading{},
	}
	entries := resolved
	if entries == nil {
		entries = ws.resolvedEntries()
	}
	view.DayTotals = SummarizeDays(ws.dates, entries, recipes, ws.target)
	view.Series, err = ListKetoneReadings(q, userID, "", "")
	if err != nil {
		return nil, err
	}
	if len(ws.dates) > 0 {
		first, last := ws.dates[0], ws.dates[len(ws.dates)-1]
		for _, r := range view.Series {
			if r.Date >= first && r.Date <= last {
				view.Readings = append(view.Readings, r)
			}
		}
	}
	return view, nil
}
