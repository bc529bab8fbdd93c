// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/restwell/internal/domain"
)

// Repository defines the interface for persisting chat audit records.
type Repository interface {
	// RecordChat stores one audit record.
	RecordChat(ctx context.Context, rec *domain.ChatAudit) error

	// ChatStats aggregates records created at or after since.
	ChatStats(ctx context.Context, since time.Time) (*domain.ChatStats, error)

	// RecentChats returns up to limit records, newest first.
	RecentChats(ctx context.Context, limit int) ([]*domain.ChatAudit, error)

	// PruneChats deletes records created before olderThan and returns how many were removed.
	PruneChats(ctx context.Context, olderThan time.Time) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
