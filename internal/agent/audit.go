package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashureev/restwell/internal/domain"
	"github.com/ashureev/restwell/internal/shared"
)

const auditWriteTimeout = 5 * time.Second

// AuditLogger records chat outcomes. Log must never block the caller.
type AuditLogger interface {
	Log(rec domain.ChatAudit)
	Close() error
}

// Recorder persists one audit record.
type Recorder interface {
	RecordChat(ctx context.Context, rec *domain.ChatAudit) error
}

type noopAuditLogger struct{}

func (noopAuditLogger) Log(domain.ChatAudit) {}
func (noopAuditLogger) Close() error         { return nil }

// NoopAuditLogger discards every record.
func NoopAuditLogger() AuditLogger {
	return noopAuditLogger{}
}

// StoreAuditLogger queues records and writes them from a single goroutine.
// When the queue is full new records are dropped.
type StoreAuditLogger struct {
	repo    Recorder
	retry   *shared.Retrier
	queue   chan domain.ChatAudit
	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
}

// NewStoreAuditLogger starts the writer goroutine.
func NewStoreAuditLogger(repo Recorder, queueSize int) *StoreAuditLogger {
	if queueSize <= 0 {
		queueSize = 256
	}
	l := &StoreAuditLogger{
		repo:  repo,
		retry: shared.NewRetrier(),
		queue: make(chan domain.ChatAudit, queueSize),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

// Log enqueues rec without blocking.
func (l *StoreAuditLogger) Log(rec domain.ChatAudit) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- rec:
	default:
		n := l.dropped.Add(1)
		slog.Warn("Audit queue full, dropping record", "outcome", rec.Outcome, "dropped_total", n)
	}
}

// Dropped returns how many records were discarded because the queue was full.
func (l *StoreAuditLogger) Dropped() int64 {
	return l.dropped.Load()
}

// Close flushes queued records and stops the writer.
func (l *StoreAuditLogger) Close() error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()
	<-l.done
	return nil
}

func (l *StoreAuditLogger) run() {
	defer close(l.done)
	for rec := range l.queue {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		err := l.retry.Do(ctx, "record_chat", func() error {
			return l.repo.RecordChat(ctx, &rec)
		})
		if err != nil {
			slog.Error("Failed to write chat audit", "error", err, "outcome", rec.Outcome)
		}
		cancel()
	}
}

// contentHash returns the first 16 hex characters of the SHA-256 of v's JSON
// form, or "" for empty input.
func contentHash(v any) string {
	data, err := json.Marshal(v)
	if err != nil || len(data) == 0 || string(data) == "null" || string(data) == `""` {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
