package service_test

import (
	"testing"

	"github.com/saadjs/keto-cli/internal/service"
)

func TestCreateUserSeedsUnmeasuredIngredients(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	userID := mustUser(t, sqldb, "Ada")

	items, err := service.ListIngredients(sqldb, userID)
	if err != nil {
		t.Fatalf("list ingredients: %v", err)
	}
	if len(items) != 6 {
		t.Fatalf("expected 6 seeded ingredients, got %d", len(items))
	}
	for _, it := range items {
		if !it.Unmeasured {
			t.Fatalf("expected seeded ingredient %q to be unmeasured", it.Name)
		}
	}

	added, err := service.SeedUnmeasuredIngredients(sqldb, userID)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if added != 0 {
		t.Fatalf("expected reseeding to add nothing, got %d", added)
	}
}

func TestActiveUserRoundTrip(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	u, err := service.ActiveUser(sqldb)
	if err != nil {
		t.Fatalf("active user: %v", err)
	}
	if u != nil {
		t.Fatalf("expected no active user on a fresh db, got %+v", u)
	}

	mustUser(t, sqldb, "Ada")
	bobID := mustUser(t, sqldb, "Bob")
	if _, err := service.SetActiveUser(sqldb, "bob"); err != nil {
		t.Fatalf("set active user: %v", err)
	}
	u, err = service.ActiveUser(sqldb)
	if err != nil {
		t.Fatalf("active user: %v", err)
	}
	if u == nil || u.ID != bobID {
		t.Fatalf("expected active user %d, got %+v", bobID, u)
	}

	if _, err := service.SetActiveUser(sqldb, "nobody"); err == nil {
		t.Fatalf("expected unknown user to be rejected")
	}
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	mustUser(t, sqldb, "Ada")
	if _, err := service.CreateUser(sqldb, "Ada"); err == nil {
		t.Fatalf("expected duplicate user name to fail")
	}
	users, err := service.ListUsers(sqldb)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}
}
