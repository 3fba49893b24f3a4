package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"

	"jobtrack/internal/fsm"
	"jobtrack/internal/migrate"
)

// openTestDB connects to the database named by TEST_DATABASE_DSN,
// applying migrations first. Tests that need it are skipped when the
// variable is unset.
func openTestDB(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping database test")
	}

	if err := migrate.Run(dsn, "../../db/migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db)
}

// Creating an application and fetching it back must return identical
// field values.
func TestApplicationCreateGetRoundTrip(t *testing.T) {
	st := openTestDB(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, CreateUserParams{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("roundtrip-%s@example.com", uuid.New()),
		AuthProvider: "local",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	company, err := st.CreateCompany(ctx, uuid.New(), "Globex", "https://globex.example", user.ID)
	if err != nil {
		t.Fatalf("create company: %v", err)
	}

	created, err := st.CreateApplication(ctx, CreateApplicationParams{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Position:  "Staff Engineer",
		City:      "Lisbon",
		Region:    "PT",
		CreatorID: user.ID,
		Notes:     "referred by a former colleague",
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if created.Status != fsm.StatusSubmitted {
		t.Fatalf("expected new application in %s, got %s", fsm.StatusSubmitted, created.Status)
	}

	fetched, err := st.GetApplication(ctx, created.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}

	if fetched.ID != created.ID ||
		fetched.CompanyID != created.CompanyID ||
		fetched.Position != created.Position ||
		fetched.City != created.City ||
		fetched.Region != created.Region ||
		fetched.Status != created.Status ||
		fetched.CreatorID != created.CreatorID ||
		fetched.Notes != created.Notes {
		t.Fatalf("fetched row differs from created row:\ncreated: %+v\nfetched: %+v", created, fetched)
	}
	if !fetched.SubmittedDate.Equal(created.SubmittedDate) {
		t.Fatalf("submitted_date changed: %v vs %v", created.SubmittedDate, fetched.SubmittedDate)
	}
	if !fetched.CreatedAt.Equal(created.CreatedAt) || !fetched.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("timestamps changed across round trip:\ncreated: %+v\nfetched: %+v", created, fetched)
	}
	for name, valid := range map[string]bool{
		"updated_date":         fetched.UpdatedDate.Valid,
		"interview_date":       fetched.InterviewDate.Valid,
		"rejected_date":        fetched.RejectedDate.Valid,
		"rejected_reason":      fetched.RejectedReason.Valid,
		"rejected_from_status": fetched.RejectedFromStatus.Valid,
		"deleted_at":           fetched.DeletedAt.Valid,
	} {
		if valid {
			t.Fatalf("expected %s to be NULL on a fresh application", name)
		}
	}
}
