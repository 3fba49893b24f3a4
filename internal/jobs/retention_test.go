package jobs

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"jobtrack/internal/config"
	"jobtrack/internal/store"
)

func TestCleanupExpiredData_DisabledTTLIsNoop(t *testing.T) {
	cfg := &config.Config{}
	cfg.Retention.TrashDays = 0

	stats, err := CleanupExpiredData(context.Background(), cfg, &store.Store{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ApplicationsPurged != 0 {
		t.Fatalf("expected no purges, got %d", stats.ApplicationsPurged)
	}
}

func TestCleanupExpiredData_SurfacesPurgeError(t *testing.T) {
	// Port 1 is never a Postgres; the purge must fail and the error
	// must be returned rather than swallowed.
	db, err := sql.Open("pgx", "postgres://127.0.0.1:1/jobtrack?sslmode=disable&connect_timeout=1")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	defer db.Close()

	cfg := &config.Config{}
	cfg.Retention.TrashDays = 7

	if _, err := CleanupExpiredData(context.Background(), cfg, store.New(db)); err == nil {
		t.Fatalf("expected purge error against unreachable database")
	}
}
