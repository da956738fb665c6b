package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/keto-cli/internal/apperr"
	"github.com/saadjs/keto-cli/internal/logging"
	"github.com/saadjs/keto-cli/internal/plan"
	"go.uber.org/zap"
)

type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func validatePercent(name string, value float64) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("%s must be between 0 and 100", name)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func parseIDLoose(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("not numeric")
	}
	return id, nil
}

func parseDate(value string) (string, error) {
	t, err := time.Parse(plan.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t.Format(plan.DateLayout), nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// inTx runs fn in one transaction. Errors from fn roll back and pass
// through unchanged; begin and commit failures are storage failures.
func inTx(db *sql.DB, op string, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return apperr.Storage(op+": begin tx", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		if apperr.Is(err, apperr.ErrStorageFailure) {
			logging.Error("transaction rolled back", zap.String("op", op), zap.Error(err))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		logging.Error("commit failed", zap.String("op", op), zap.Error(err))
		return apperr.Storage(op+": commit", err)
	}
	return nil
}
