package jobs

import (
	"context"
	"log/slog"
	"time"

	"jobtrack/internal/config"
	"jobtrack/internal/store"
)

// Runner periodically executes retention cleanup. It encapsulates the
// tick interval and graceful shutdown via context cancellation.
type Runner struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// NewRunner constructs a Runner with the given configuration and store.
func NewRunner(cfg *config.Config, st *store.Store, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, store: st, logger: logger}
}

// Start launches the worker loop in the current goroutine. Callers
// typically run this in its own goroutine and keep the process alive.
func (r *Runner) Start(ctx context.Context) {
	if !r.cfg.Retention.Enabled {
		return
	}

	interval := time.Duration(r.cfg.Retention.CleanupIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		stats, err := CleanupExpiredData(ctx, r.cfg, r.store)
		if err != nil {
			if r.logger != nil {
				r.logger.Error("retention cleanup failed", "error", err)
			}
			continue
		}
		if r.logger != nil && stats.ApplicationsPurged > 0 {
			r.logger.Info("retention cleanup",
				"applications_purged", stats.ApplicationsPurged)
		}
	}
}
