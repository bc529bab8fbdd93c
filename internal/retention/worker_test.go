package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakePruner struct {
	mu      sync.Mutex
	calls   int
	cutoffs []time.Time
	errs    []error
	deleted int64
}

func (f *fakePruner) PruneChats(_ context.Context, olderThan time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.cutoffs = append(f.cutoffs, olderThan)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return 0, err
		}
	}
	return f.deleted, nil
}

func (f *fakePruner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestWorker(repo Pruner, retention time.Duration, now time.Time) (*Worker, *[]time.Duration) {
	w := NewWorker(repo, retention, time.Hour)
	w.now = func() time.Time { return now }
	var slept []time.Duration
	w.retry.Sleep = func(d time.Duration) { slept = append(slept, d) }
	return w, &slept
}

func TestSweepUsesRetentionCutoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakePruner{deleted: 5}
	w, _ := newTestWorker(repo, 7*24*time.Hour, now)

	if got := w.Sweep(context.Background()); got != 5 {
		t.Fatalf("expected 5 deleted, got %d", got)
	}
	if want := now.Add(-7 * 24 * time.Hour); !repo.cutoffs[0].Equal(want) {
		t.Fatalf("cutoff = %v, want %v", repo.cutoffs[0], want)
	}
}

func TestSweepRetriesBusyErrors(t *testing.T) {
	t.Parallel()

	repo := &fakePruner{
		errs:    []error{errors.New("SQLITE_BUSY"), errors.New("database is locked"), nil},
		deleted: 2,
	}
	w, slept := newTestWorker(repo, time.Hour, time.Now())

	if got := w.Sweep(context.Background()); got != 2 {
		t.Fatalf("expected 2 deleted after retries, got %d", got)
	}
	if repo.callCount() != 3 {
		t.Fatalf("expected 3 attempts, got %d", repo.callCount())
	}
	if len(*slept) != 2 || (*slept)[0] != 50*time.Millisecond || (*slept)[1] != 100*time.Millisecond {
		t.Fatalf("unexpected backoff %v", *slept)
	}
}

func TestSweepDoesNotRetryOtherErrors(t *testing.T) {
	t.Parallel()

	repo := &fakePruner{errs: []error{errors.New("disk I/O error")}}
	w, slept := newTestWorker(repo, time.Hour, time.Now())

	if got := w.Sweep(context.Background()); got != 0 {
		t.Fatalf("expected 0 on error, got %d", got)
	}
	if repo.callCount() != 1 || len(*slept) != 0 {
		t.Fatalf("expected a single attempt, got %d calls and %v sleeps", repo.callCount(), *slept)
	}
}

func TestStartSweepsImmediatelyAndStops(t *testing.T) {
	t.Parallel()

	repo := &fakePruner{}
	ctx, cancel := context.WithCancel(context.Background())
	NewWorker(repo, time.Hour, time.Hour).Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for repo.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if repo.callCount() == 0 {
		t.Fatal("expected an initial sweep")
	}
}
