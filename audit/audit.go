// Package audit persists one row per dispatched tool call in SQLite.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/petal-labs/toolgate/tool"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS tool_invocations (
	call_id TEXT PRIMARY KEY,
	tool TEXT NOT NULL,
	outcome TEXT NOT NULL,
	message TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	started_at TEXT NOT NULL
);`

const (
	defaultStoreDir = ".toolgate"
	defaultStoreDB  = "audit.db"
)

// Store records tool invocations. It implements tool.Observer.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// DefaultPath returns the default audit database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("audit: resolve user home: %w", err)
	}
	return filepath.Join(home, defaultStoreDir, defaultStoreDB), nil
}

// Open opens (or creates) the audit database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("audit: store path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("audit: create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open store: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: set WAL mode: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// ObserveDispatch records one invocation. Failures are logged, never
// propagated; auditing must not affect dispatch.
func (s *Store) ObserveDispatch(obs tool.Observation) {
	if s == nil || s.db == nil {
		return
	}
	_, err := s.db.Exec(`
INSERT OR REPLACE INTO tool_invocations (call_id, tool, outcome, message, duration_ms, started_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		obs.CallID, obs.Tool, string(obs.Kind), obs.Message, obs.DurationMS,
		obs.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		s.logger.Warn("audit write failed", "call_id", obs.CallID, "error", err)
	}
}

// Record is one persisted invocation row.
type Record struct {
	CallID     string
	Tool       string
	Outcome    tool.OutcomeKind
	Message    string
	DurationMS int64
	StartedAt  time.Time
}

// Recent returns the most recent invocations, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("audit: store is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT call_id, tool, outcome, message, duration_ms, started_at
FROM tool_invocations
ORDER BY started_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: query invocations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var kind, startedAt string
		if err := rows.Scan(&rec.CallID, &rec.Tool, &kind, &rec.Message, &rec.DurationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("audit: scan invocation: %w", err)
		}
		rec.Outcome = tool.OutcomeKind(kind)
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			rec.StartedAt = ts
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: iterate invocations: %w", err)
	}
	return records, nil
}

// Close closes the store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
