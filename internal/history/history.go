// Package history keeps a local journal of load runs so the CLI can show
// what was loaded where, when, and whether it worked.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Statuses recorded for a run.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Run is one recorded load.
type Run struct {
	ID        int64
	StartedAt time.Time
	Duration  time.Duration
	Schema    string
	Table     string
	Rows      int64
	Status    string
	Error     string
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS load_runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	schema_name TEXT NOT NULL,
	table_name  TEXT NOT NULL,
	row_count   INTEGER NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT ''
)`

// Store is a sqlite-backed journal.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the journal location under the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "p2r-history.db"
	}
	return filepath.Join(home, ".p2r", "history.db")
}

// Open opens (and if needed creates) the journal at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the journal.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends a run.
func (s *Store) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO load_runs (started_at, duration_ms, schema_name, table_name, row_count, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.Schema, run.Table, run.Rows, run.Status, run.Error,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, schema_name, table_name, row_count, status, error
		FROM load_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		var durationMS int64
		if err := rows.Scan(&r.ID, &started, &durationMS, &r.Schema, &r.Table, &r.Rows, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			r.StartedAt = ts
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
