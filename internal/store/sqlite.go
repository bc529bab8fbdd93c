package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/restwell/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL lets the stats endpoint read while the audit writer appends.
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS chat_audit (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		received_messages INTEGER NOT NULL,
		forwarded_messages INTEGER NOT NULL,
		status INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		latency_us INTEGER NOT NULL,
		input_hash TEXT NOT NULL,
		output_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_audit_created ON chat_audit(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordChat inserts one audit record.
func (s *SQLiteStore) RecordChat(ctx context.Context, rec *domain.ChatAudit) error {
	query := `
		INSERT INTO chat_audit (
			id, client_id, channel, received_messages, forwarded_messages,
			status, outcome, latency_us, input_hash, output_hash, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.ClientID, rec.Channel, rec.ReceivedMessages, rec.ForwardedMessages,
		rec.Status, rec.Outcome, rec.Latency.Microseconds(), rec.InputHash, rec.OutputHash,
		rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert chat audit: %w", err)
	}
	return nil
}

// ChatStats counts records per outcome since the given time.
func (s *SQLiteStore) ChatStats(ctx context.Context, since time.Time) (*domain.ChatStats, error) {
	query := `
		SELECT outcome, COUNT(*), COALESCE(SUM(latency_us), 0)
		FROM chat_audit WHERE created_at >= ?
		GROUP BY outcome`

	rows, err := s.db.QueryContext(ctx, query, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query chat stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &domain.ChatStats{Since: since, ByOutcome: make(map[string]int64)}
	var latencySum int64
	for rows.Next() {
		var outcome string
		var count, sum int64
		if err := rows.Scan(&outcome, &count, &sum); err != nil {
			return nil, fmt.Errorf("scan chat stats: %w", err)
		}
		stats.ByOutcome[outcome] = count
		stats.Total += count
		latencySum += sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat stats: %w", err)
	}

	if stats.Total > 0 {
		stats.AvgLatencyMs = float64(latencySum) / float64(stats.Total) / 1000
	}
	return stats, nil
}

// RecentChats returns the newest records first.
func (s *SQLiteStore) RecentChats(ctx context.Context, limit int) ([]*domain.ChatAudit, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, client_id, channel, received_messages, forwarded_messages,
		       status, outcome, latency_us, input_hash, output_hash, created_at
		FROM chat_audit ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent chats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.ChatAudit
	for rows.Next() {
		var rec domain.ChatAudit
		var latencyUs, createdAt int64
		if err := rows.Scan(
			&rec.ID, &rec.ClientID, &rec.Channel, &rec.ReceivedMessages, &rec.ForwardedMessages,
			&rec.Status, &rec.Outcome, &latencyUs, &rec.InputHash, &rec.OutputHash, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat audit: %w", err)
		}
		rec.Latency = time.Duration(latencyUs) * time.Microsecond
		rec.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent chats: %w", err)
	}
	return out, nil
}

// PruneChats removes records older than the cutoff.
func (s *SQLiteStore) PruneChats(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chat_audit WHERE created_at < ?`, olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune chat audit: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteStore)(nil)
