package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/saadjs/keto-cli/internal/apperr"
	"github.com/saadjs/keto-cli/internal/logging"
	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/plan"
	"go.uber.org/zap"
)

type SyncResult struct {
	Updated  int
	Inserted int
	Deleted  int
}

func ListKetoneReadings(db querier, userID int64, from, to string) ([]model.KetoneReading, error) {
	query := `SELECT id, user_id, date, time, ketone_level, glucose_level FROM ketone_log_entries WHERE user_id = ?`
	args := []any{userID}
	if strings.TrimSpace(from) != "" {
		d, err := parseDate(from)
		if err != nil {
			return nil, err
		}
		query += ` AND date >= ?`
		args = append(args, d)
	}
	if strings.TrimSpace(to) != "" {
		d, err := parseDate(to)
		if err != nil {
			return nil, err
		}
		query += ` AND date <= ?`
		args = append(args, d)
	}
	query += ` ORDER BY date ASC, time ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, apperr.Storage("list ketone readings", err)
	}
	defer rows.Close()
	out := make([]model.KetoneReading, 0)
	for rows.Next() {
		var (
			r               model.KetoneReading
			ketone, glucose sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.Time, &ketone, &glucose); err != nil {
			return nil, apperr.Storage("scan ketone reading", err)
		}
		r.KetoneLevel = floatPtr(ketone)
		r.GlucoseLevel = floatPtr(glucose)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate ketone readings", err)
	}
	return out, nil
}

// SyncKetoneReadings makes readings the user's complete ketone series.
// Readings left out of the submission are deleted.
func SyncKetoneReadings(db *sql.DB, userID int64, readings []plan.Reading) (SyncResult, error) {
	submissionID := uuid.NewString()
	var result SyncResult
	err := inTx(db, "sync ketone readings", func(tx *sql.Tx) error {
		var err error
		result, err = syncKetones(tx, userID, readings)
		return err
	})
	if err != nil {
		logSubmissionFailure("ketone", submissionID, userID, err)
		return SyncResult{}, err
	}
	logging.Info("ketone readings synced",
		zap.String("submission_id", submissionID),
		zap.Int64("user_id", userID),
		zap.Int("updated", result.Updated),
		zap.Int("inserted", result.Inserted),
		zap.Int("deleted", result.Deleted),
	)
	return result, nil
}

func syncKetones(tx *sql.Tx, userID int64, readings []plan.Reading) (SyncResult, error) {
	existing, err := ListKetoneReadings(tx, userID, "", "")
	if err != nil {
		return SyncResult{}, err
	}
	entries := make([]*plan.KetoneEntry, 0, len(existing))
	for _, r := range existing {
		entries = append(entries, &plan.KetoneEntry{ID: r.ID, Date: r.Date, Time: r.Time, Ketone: r.KetoneLevel, Glucose: r.GlucoseLevel})
	}
	ws, err := plan.ReconcileKetones(readings, entries)
	if err != nil {
		return SyncResult{}, err
	}
	if err := applyKetoneWrites(tx, userID, ws); err != nil {
		return SyncResult{}, err
	}
	return SyncResult{Updated: len(ws.Updates), Inserted: len(ws.Inserts), Deleted: len(ws.Deletes)}, nil
}

func applyKetoneWrites(tx *sql.Tx, userID int64, ws plan.KetoneWriteSet) error {
	for _, e := range ws.Deletes {
		if _, err := tx.Exec(`DELETE FROM ketone_log_entries WHERE id = ? AND user_id = ?`, e.ID, userID); err != nil {
			return apperr.Storage(fmt.Sprintf("delete ketone reading %s %s", e.Date, e.Time), err)
		}
	}
	for _, e := range ws.Updates {
		if _, err := tx.Exec(`
UPDATE ketone_log_entries SET ketone_level = ?, glucose_level = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND user_id = ?
`, nullableFloat(e.Ketone), nullableFloat(e.Glucose), e.ID, userID); err != nil {
			return apperr.Storage(fmt.Sprintf("update ketone reading %s %s", e.Date, e.Time), err)
		}
	}
	for _, e := range ws.Inserts {
		res, err := tx.Exec(`
INSERT INTO ketone_log_entries(user_id, date, time, ketone_level, glucose_level)
VALUES(?, ?, ?, ?, ?)
`, userID, e.Date, e.Time, nullableFloat(e.Ketone), nullableFloat(e.Glucose))
		if err != nil {
			return apperr.Storage(fmt.Sprintf("insert ketone reading %s %s", e.Date, e.Time), err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return apperr.Storage("resolve ketone reading id", err)
		}
	}
	return nil
}
