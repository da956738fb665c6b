package service_test

import (
	"errors"
	"testing"

	"github.com/saadjs/keto-cli/internal/apperr"
	"github.com/saadjs/keto-cli/internal/plan"
	"github.com/saadjs/keto-cli/internal/service"
)

func TestSyncKetoneReadingsDeletesBlankedRow(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")

	if _, err := service.SyncKetoneReadings(sqldb, userID, []plan.Reading{
		{Date: start, Time: "08:00", Ketone: fptr(0.9)},
		{Date: start, Time: "20:00", Ketone: fptr(1.6)},
	}); err != nil {
		t.Fatalf("initial sync: %v", err)
	}

	res, err := service.SyncKetoneReadings(sqldb, userID, []plan.Reading{
		{Date: start, Time: "08:00", Ketone: fptr(1.2)},
		{Date: start, Time: "20:00"},
	})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if res.Updated != 1 || res.Inserted != 0 || res.Deleted != 1 {
		t.Fatalf("unexpected sync result %+v", res)
	}

	readings, err := service.ListKetoneReadings(sqldb, userID, "", "")
	if err != nil {
		t.Fatalf("list readings: %v", err)
	}
	if len(readings) != 1 || readings[0].Time != "08:00" || *readings[0].KetoneLevel != 1.2 {
		t.Fatalf("expected only the updated 08:00 reading, got %+v", readings)
	}
}

func TestSyncKetoneReadingsIsPerUser(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	ada := mustUser(t, sqldb, "Ada")
	bob := mustUser(t, sqldb, "Bob")

	if _, err := service.SyncKetoneReadings(sqldb, ada, []plan.Reading{{Date: start, Time: "08:00", Ketone: fptr(1)}}); err != nil {
		t.Fatalf("sync ada: %v", err)
	}
	if _, err := service.SyncKetoneReadings(sqldb, bob, nil); err != nil {
		t.Fatalf("sync bob: %v", err)
	}
	readings, err := service.ListKetoneReadings(sqldb, ada, start, start)
	if err != nil {
		t.Fatalf("list readings: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("expected another user's empty sync to leave ada alone, got %+v", readings)
	}
}

func TestSyncKetoneReadingsRejectsBadTime(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")

	if _, err := service.SyncKetoneReadings(sqldb, userID, []plan.Reading{{Date: start, Time: "08:00", Ketone: fptr(1)}}); err != nil {
		t.Fatalf("initial sync: %v", err)
	}
	_, err := service.SyncKetoneReadings(sqldb, userID, []plan.Reading{{Date: start, Time: "noon", Ketone: fptr(1)}})
	if !errors.Is(err, apperr.ErrInvalidTimeFormat) {
		t.Fatalf("expected ErrInvalidTimeFormat, got %v", err)
	}
	if n := countRows(t, sqldb, "ketone_log_entries"); n != 1 {
		t.Fatalf("expected the existing reading to survive, got %d", n)
	}
}

func TestSyncKetoneReadingsRejectsNegativeLevelsAsClientError(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")
	if _, err := service.SyncKetoneReadings(sqldb, userID, []plan.Reading{{Date: start, Time: "08:00", Ketone: fptr(0.9)}}); err != nil {
		t.Fatalf("initial sync: %v", err)
	}

	for _, bad := range []plan.Reading{
		{Date: start, Time: "09:00", Ketone: fptr(-1)},
		{Date: start, Time: "09:00", Glucose: fptr(-0.5)},
	} {
		_, err := service.SyncKetoneReadings(sqldb, userID, []plan.Reading{bad})
		if !errors.Is(err, apperr.ErrInvalidReading) {
			t.Fatalf("%+v: expected invalid reading, got %v", bad, err)
		}
		if errors.Is(err, apperr.ErrStorageFailure) || !apperr.IsUserFacing(err) {
			t.Fatalf("%+v: expected a user-facing client error, got %v", bad, err)
		}
	}
	readings, err := service.ListKetoneReadings(sqldb, userID, "", "")
	if err != nil {
		t.Fatalf("list readings: %v", err)
	}
	if len(readings) != 1 || *readings[0].KetoneLevel != 0.9 {
		t.Fatalf("rejected sync changed readings: %+v", readings)
	}
}
