package maintenance

import (
	"context"
	"log/slog"
	"time"

	"narrationgen/pkg/db"
	"narrationgen/pkg/store"
)

const lastPruneStateKey = "jobs_last_pruned"

// pruneInterval limits pruning to once per interval across runs.
const pruneInterval = 24 * time.Hour

// Run prunes job history older than retention. A zero retention keeps everything.
// Failures are logged and never returned; history is not needed for synthesis.
func Run(ctx context.Context, s store.StateStore, d *db.DB, retention time.Duration, now time.Time) {
	if retention <= 0 {
		return
	}

	if last, found := s.GetState(ctx, lastPruneStateKey); found {
		if t, err := time.Parse(time.RFC3339, last); err == nil && now.Sub(t) < pruneInterval {
			slog.Debug("Job history pruned recently, skipping", "last", last)
			return
		}
	}

	n, err := d.PruneJobs(retention)
	if err != nil {
		slog.Error("Job history pruning failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Pruned job history", "rows", n, "retention", retention)
	}

	if err := s.SetState(ctx, lastPruneStateKey, now.UTC().Format(time.RFC3339)); err != nil {
		slog.Warn("Failed to update prune state", "error", err)
	}
}
