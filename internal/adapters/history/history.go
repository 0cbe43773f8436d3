// Package history persists completed analysis reports in SQLite so past
// runs can be compared without re-reading solver output. The engine itself
// stays stateless; the store is an optional adapter.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// SQLite driver registration.
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/okian/foamperf/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id           TEXT PRIMARY KEY,
	run_dir      TEXT NOT NULL,
	domain       TEXT NOT NULL,
	method       TEXT NOT NULL,
	time_start   REAL NOT NULL,
	time_end     REAL NOT NULL,
	samples      INTEGER NOT NULL,
	metrics_json TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_run_dir ON analyses(run_dir);
`

// Record is one stored analysis. IDs are ULIDs so insertion order sorts
// lexically.
type Record struct {
	ID        string
	RunDir    string
	Domain    model.Domain
	Method    model.ReductionMode
	TimeStart float64
	TimeEnd   float64
	Samples   int
	Metrics   model.MetricSet
	CreatedAt time.Time
}

// Store is a SQLite-backed analysis history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores one report. A missing ID is filled with a fresh ULID; a
// missing timestamp with the current time.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	metricsJSON, err := json.Marshal(rec.Metrics)
	if err != nil {
		return Record{}, fmt.Errorf("encoding metrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, run_dir, domain, method, time_start, time_end, samples, metrics_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunDir, string(rec.Domain), string(rec.Method),
		rec.TimeStart, rec.TimeEnd, rec.Samples, string(metricsJSON), rec.CreatedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("inserting analysis: %w", err)
	}
	return rec, nil
}

// List returns the most recent analyses for a run directory, newest first.
func (s *Store) List(ctx context.Context, runDir string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_dir, domain, method, time_start, time_end, samples, metrics_json, created_at
		 FROM analyses WHERE run_dir = ? ORDER BY id DESC LIMIT ?`,
		runDir, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec          Record
			domain, mode string
			metricsJSON  string
		)
		if err := rows.Scan(&rec.ID, &rec.RunDir, &domain, &mode,
			&rec.TimeStart, &rec.TimeEnd, &rec.Samples, &metricsJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning analysis row: %w", err)
		}
		rec.Domain = model.Domain(domain)
		rec.Method = model.ReductionMode(mode)
		if err := json.Unmarshal([]byte(metricsJSON), &rec.Metrics); err != nil {
			return nil, fmt.Errorf("decoding metrics: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
