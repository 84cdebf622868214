// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists past batch runs and their per-entry results in
// a local SQLite database, so an operator can audit what was submitted
// for whom after the results files are gone.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/libapps/bulkill/pkg/types"
)

const dbFile = "history.db"

// RunMeta describes one batch run.
type RunMeta struct {
	InputFile string
	Requester string
	Pickup    string
	TestMode  bool
	StartedAt time.Time
}

// Store manages the submission-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database under dir and ensures the
// schema exists.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			input_file TEXT NOT NULL,
			requester TEXT NOT NULL,
			pickup TEXT,
			test_mode INTEGER NOT NULL,
			submitted INTEGER NOT NULL,
			recorded INTEGER NOT NULL,
			rejected INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			entry INTEGER NOT NULL,
			title TEXT,
			author TEXT,
			error TEXT,
			payload TEXT,
			transaction_number TEXT,
			outcome TEXT NOT NULL,
			PRIMARY KEY (run_id, entry)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_outcome ON entries(outcome)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun writes one run row and its per-entry results in a single
// transaction, returning the run's identifier.
func (s *Store) RecordRun(ctx context.Context, meta RunMeta, submitted, recorded, rejected int, results []types.ProcessingResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, input_file, requester, pickup, test_mode, submitted, recorded, rejected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.StartedAt.UTC().Format(time.RFC3339),
		meta.InputFile,
		meta.Requester,
		meta.Pickup,
		boolInt(meta.TestMode),
		submitted, recorded, rejected,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (run_id, entry, title, author, error, payload, transaction_number, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx,
			runID, r.Entry, r.Title, r.Author, r.Error,
			r.Payload.String(), r.TransactionNumber, string(r.Outcome),
		); err != nil {
			return 0, fmt.Errorf("inserting entry %d: %w", r.Entry, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RunCount returns how many runs have been recorded.
func (s *Store) RunCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

// EntriesForRun returns the recorded results of one run in entry order.
func (s *Store) EntriesForRun(ctx context.Context, runID int64) ([]types.ProcessingResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry, title, author, error, transaction_number, outcome
		 FROM entries WHERE run_id = ? ORDER BY entry`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var results []types.ProcessingResult
	for rows.Next() {
		var r types.ProcessingResult
		var outcome string
		if err := rows.Scan(&r.Entry, &r.Title, &r.Author, &r.Error, &r.TransactionNumber, &outcome); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		r.Outcome = types.EntryOutcome(outcome)
		results = append(results, r)
	}
	return results, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
