package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/growth90/internal/events"
)

// analyticsRetention is how long analytics events are kept.
const analyticsRetention = 30 * 24 * time.Hour

// CleanupStats summarizes one maintenance sweep. It is the payload of
// storage:cleanup:completed.
type CleanupStats struct {
	ExpiredCacheEntries int
	PrunedAnalytics     int
}

// Maintenance sweeps expired contentCache entries and analytics older
// than the retention window. Each sweep is its own transaction, so it is
// safe to run concurrently with other operations.
func (s *Store) Maintenance(ctx context.Context) (CleanupStats, error) {
	var stats CleanupStats
	now := s.now().UTC()

	// contentCache.expiresAt is epoch milliseconds.
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %q WHERE %q IS NOT NULL AND %q <= ?`,
			ContentCache, indexColumn("expiresAt"), indexColumn("expiresAt")),
		float64(now.UnixMilli()),
	)
	if err != nil {
		return stats, backendErr("maintenance", ContentCache, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		stats.ExpiredCacheEntries = int(n)
	}

	cutoff := now.Add(-analyticsRetention).Format(time.RFC3339)
	res, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %q WHERE %q < ?`, Analytics, indexColumn("timestamp")),
		cutoff,
	)
	if err != nil {
		return stats, backendErr("maintenance", Analytics, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		stats.PrunedAnalytics = int(n)
	}

	s.emit(events.StorageCleanupDone, stats)
	return stats, nil
}
