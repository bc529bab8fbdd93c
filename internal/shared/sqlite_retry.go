// Package shared holds helpers used by more than one storage caller.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Default retry budget for SQLite writes that hit lock contention.
const (
	DefaultAttempts  = 3
	DefaultBaseDelay = 50 * time.Millisecond
)

// IsSQLiteConflict reports whether err is SQLITE_BUSY or "database is locked".
// Both are transient under WAL when another connection holds the write lock.
func IsSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// Retrier re-runs SQLite operations that fail with a lock conflict, doubling
// the delay after each attempt.
type Retrier struct {
	Attempts  int
	BaseDelay time.Duration
	Sleep     func(time.Duration)
}

// NewRetrier returns a Retrier with the default budget.
func NewRetrier() *Retrier {
	return &Retrier{Attempts: DefaultAttempts, BaseDelay: DefaultBaseDelay, Sleep: time.Sleep}
}

// Do runs op until it succeeds, fails with a non-conflict error, the
// attempts run out, or ctx is done. It returns op's last error.
func (r *Retrier) Do(ctx context.Context, name string, op func() error) error {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if !IsSQLiteConflict(err) || i == attempts-1 || ctx.Err() != nil {
			return err
		}
		delay := r.BaseDelay * time.Duration(1<<i)
		slog.Debug("database locked, retrying", "op", name, "attempt", i+1, "delay", delay)
		r.Sleep(delay)
	}
	return err
}
