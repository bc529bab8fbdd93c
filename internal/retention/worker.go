// Package retention prunes chat audit records past their retention period.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/restwell/internal/shared"
)

const defaultInterval = time.Hour

// Pruner deletes audit records older than a cutoff.
type Pruner interface {
	PruneChats(ctx context.Context, olderThan time.Time) (int64, error)
}

// Worker periodically deletes records older than its retention period.
type Worker struct {
	repo      Pruner
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	retry     *shared.Retrier
}

// NewWorker creates a worker. A non-positive interval means hourly.
func NewWorker(repo Pruner, retention, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Worker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		retry:     shared.NewRetrier(),
	}
}

// Start runs one sweep immediately, then one per interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Retention worker started", "interval", w.interval, "retention", w.retention)

		w.Sweep(ctx)
		for {
			select {
			case <-ticker.C:
				w.Sweep(ctx)
			case <-ctx.Done():
				slog.Info("Retention worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// Sweep prunes once and returns how many records were removed.
func (w *Worker) Sweep(ctx context.Context) int64 {
	cutoff := w.now().Add(-w.retention)
	deleted, err := w.pruneWithRetry(ctx, cutoff)
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("Retention worker: context canceled during prune", "error", err)
			return 0
		}
		slog.Error("Retention worker failed to prune audit records", "error", err)
		return 0
	}
	if deleted > 0 {
		slog.Info("Retention worker pruned audit records", "count", deleted, "cutoff", cutoff)
	}
	return deleted
}

// pruneWithRetry retries SQLITE_BUSY and locked errors with exponential
// backoff: 50ms, 100ms.
func (w *Worker) pruneWithRetry(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := w.retry.Do(ctx, "prune", func() error {
		var err error
		deleted, err = w.repo.PruneChats(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune audit records: %w", err)
	}
	return deleted, nil
}
