package jobs

import (
	"context"
	"time"

	"jobtrack/internal/config"
	"jobtrack/internal/metrics"
	"jobtrack/internal/store"
)

// RetentionStats captures the number of records deleted by TTL cleanup.
type RetentionStats struct {
	ApplicationsPurged int64 `json:"applicationsPurged"`
}

// CleanupExpiredData permanently deletes applications that were
// soft-deleted longer ago than the configured trash TTL, so that the
// database does not grow without bound.
func CleanupExpiredData(ctx context.Context, cfg *config.Config, st *store.Store) (RetentionStats, error) {
	var stats RetentionStats

	days := cfg.Retention.TrashDays
	if days <= 0 {
		return stats, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	n, err := st.PurgeDeletedApplications(ctx, cutoff)
	if err != nil {
		return stats, err
	}
	if n > 0 {
		stats.ApplicationsPurged += n
		metrics.RecordRetentionApplications(n)
	}

	return stats, nil
}
