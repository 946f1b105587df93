// Package runlog keeps a SQLite history of evaluation runs.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jamesainslie/go-seqtag/chunk"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	model       TEXT NOT NULL,
	dataset     TEXT NOT NULL,
	scheme      TEXT NOT NULL,
	samples     INTEGER NOT NULL,
	num_infer   INTEGER NOT NULL,
	num_label   INTEGER NOT NULL,
	num_correct INTEGER NOT NULL,
	precision   REAL NOT NULL,
	recall      REAL NOT NULL,
	f1          REAL NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// ErrInvalidLimit is returned by List for a non-positive limit.
var ErrInvalidLimit = errors.New("runlog: limit must be positive")

// Run is one recorded evaluation.
type Run struct {
	ID        string
	Model     string
	Dataset   string
	Scheme    string
	Samples   int
	Counts    chunk.Counts
	Scores    chunk.Scores
	CreatedAt time.Time
}

// Store persists runs in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and runs migrations.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores run, assigning an ID and timestamp when they are unset,
// and returns the stored copy.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, model, dataset, scheme, samples,
		                   num_infer, num_label, num_correct,
		                   precision, recall, f1, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Model, run.Dataset, run.Scheme, run.Samples,
		run.Counts.Infer, run.Counts.Label, run.Counts.Correct,
		run.Scores.Precision, run.Scores.Recall, run.Scores.F1,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, model, dataset, scheme, samples,
		        num_infer, num_label, num_correct,
		        precision, recall, f1, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdStr string
		if err := rows.Scan(
			&r.ID, &r.Model, &r.Dataset, &r.Scheme, &r.Samples,
			&r.Counts.Infer, &r.Counts.Label, &r.Counts.Correct,
			&r.Scores.Precision, &r.Scores.Recall, &r.Scores.F1,
			&createdStr,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
