// Package store keeps a history of validation runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"invoiceqc/internal/logger"
	"invoiceqc/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	source TEXT NOT NULL,
	total_invoices INTEGER NOT NULL,
	valid_invoices INTEGER NOT NULL,
	invalid_invoices INTEGER NOT NULL,
	error_counts TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// Run is one stored validation run.
type Run struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Source    string              `json:"source"`
	Summary   models.BatchSummary `json:"summary"`
}

// NewRun creates a run record for summary with a fresh ID.
func NewRun(source string, summary models.BatchSummary) Run {
	return Run{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Summary:   summary,
	}
}

// Store persists runs.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (and migrates) the database at path. ":memory:" is accepted.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// A single connection keeps in-memory databases intact and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database %s: %w", path, err)
	}

	log := logger.WithComponent("store")
	log.Debug().Str("path", path).Msg("Run history database ready")

	return &Store{db: db, log: log}, nil
}

// SaveRun inserts run.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	counts := run.Summary.ErrorCounts
	if counts == nil {
		counts = map[string]int{}
	}
	encoded, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("encode error counts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source, total_invoices, valid_invoices, invalid_invoices, error_counts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), run.Source,
		run.Summary.TotalInvoices, run.Summary.ValidInvoices, run.Summary.InvalidInvoices,
		string(encoded),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	s.log.Info().Str("run_id", run.ID).Str("source", run.Source).Msg("Run saved")
	return nil
}

// ListRuns returns up to limit runs, newest first. A limit below one returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, total_invoices, valid_invoices, invalid_invoices, error_counts
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run       Run
			createdAt string
			counts    string
		)
		if err := rows.Scan(&run.ID, &createdAt, &run.Source,
			&run.Summary.TotalInvoices, &run.Summary.ValidInvoices, &run.Summary.InvalidInvoices,
			&counts); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of run %s: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(counts), &run.Summary.ErrorCounts); err != nil {
			return nil, fmt.Errorf("decode error counts of run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
