//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ashureev/restwell/internal/domain"
)

type fakeRepo struct {
	mu      sync.Mutex
	pingErr error
	since   time.Time
	stats   *domain.ChatStats
	recent  []*domain.ChatAudit
	limit   int
}

func (f *fakeRepo) RecordChat(_ context.Context, _ *domain.ChatAudit) error { return nil }

func (f *fakeRepo) ChatStats(_ context.Context, since time.Time) (*domain.ChatStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	if f.stats == nil {
		return nil, errors.New("stats unavailable")
	}
	copy := *f.stats
	return &copy, nil
}

func (f *fakeRepo) RecentChats(_ context.Context, limit int) ([]*domain.ChatAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeRepo) PruneChats(_ context.Context, _ time.Time) (int64, error) { return 0, nil }
func (f *fakeRepo) Ping(_ context.Context) error                             { return f.pingErr }
func (f *fakeRepo) Close() error                                             { return nil }
