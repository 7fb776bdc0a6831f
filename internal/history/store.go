// Package history persists run outcomes to a local sqlite database so
// operators can audit what each preprocessing run did after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openmaine/budget-preprocessor/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	mode         TEXT NOT NULL,
	started_at   TIMESTAMP NOT NULL,
	finished_at  TIMESTAMP NOT NULL,
	processed    INTEGER NOT NULL,
	succeeded    INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	skipped      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_files (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	file         TEXT NOT NULL,
	family       TEXT NOT NULL,
	period       TEXT NOT NULL,
	stage        TEXT NOT NULL,
	status       TEXT NOT NULL,
	detail       TEXT NOT NULL DEFAULT '',
	artifact     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
`

// Store records run reports in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun persists a run report and its per-file outcomes in one
// transaction.
func (s *Store) RecordRun(ctx context.Context, report *pipeline.RunReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, mode, started_at, finished_at, processed, succeeded, failed, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID.String(), string(report.Mode), report.StartedAt, report.FinishedAt,
		report.Processed(), report.Succeeded(), report.Failed(), report.Skipped(),
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}

	for _, o := range report.Outcomes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_files (run_id, file, family, period, stage, status, detail, artifact)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			report.ID.String(), o.Document.Path, string(o.Document.Family), o.Document.Period,
			string(o.Stage), string(o.Status), o.Err, o.ArtifactPath,
		)
		if err != nil {
			return fmt.Errorf("insert run file record: %w", err)
		}
	}

	return tx.Commit()
}

// RunSummary is one row of the run history listing.
type RunSummary struct {
	ID         string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Succeeded  int
	Failed     int
	Skipped    int
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, started_at, finished_at, processed, succeeded, failed, skipped
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Mode, &r.StartedAt, &r.FinishedAt,
			&r.Processed, &r.Succeeded, &r.Failed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
