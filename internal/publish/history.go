// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/HeroicSpider/ai-news-analyst/pkg/types"
)

const dbFile = "runs.db"

// History persists finished runs and their per-candidate outcomes in a
// SQLite database under the configured history directory.
type History struct {
	db *sql.DB
}

// OpenHistory opens or creates the run-history database at
// historyDir/runs.db, creating the schema on first use.
func OpenHistory(historyDir string) (*History, error) {
	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(historyDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	h := &History{db: db}
	if err := h.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return h, nil
}

// Close releases the database connection.
func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			status TEXT NOT NULL,
			seeded INTEGER NOT NULL,
			approved INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			candidate_id TEXT NOT NULL,
			title TEXT NOT NULL,
			state TEXT NOT NULL,
			skip_reason TEXT,
			attempts INTEGER NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := h.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over outcome titles with triggers for sync.
	var ftsExists int
	if err := h.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='outcomes_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE outcomes_fts USING fts5(title, content=outcomes, content_rowid=rowid)`,
			`CREATE TRIGGER outcomes_ai AFTER INSERT ON outcomes BEGIN
				INSERT INTO outcomes_fts(rowid, title) VALUES (new.rowid, new.title);
			END`,
			`CREATE TRIGGER outcomes_ad AFTER DELETE ON outcomes BEGIN
				INSERT INTO outcomes_fts(outcomes_fts, rowid, title) VALUES('delete', old.rowid, old.title);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := h.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// RecordRun stores one finished run and its outcomes. Returns the run's
// row ID.
func (h *History) RecordRun(ctx context.Context, report types.RunReport) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (timestamp, status, seeded, approved, skipped, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.Timestamp.UTC().Format(time.RFC3339Nano),
		string(report.Status),
		report.Seeded,
		report.Approved,
		report.Skipped,
		report.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run ID: %w", err)
	}

	for _, out := range report.Outcomes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO outcomes (run_id, candidate_id, title, state, skip_reason, attempts, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID,
			out.CandidateID,
			out.Title,
			string(out.State),
			string(out.SkipReason),
			out.Attempts,
			out.Error,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting outcome for %s: %w", out.CandidateID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RunSummary is one row of run history.
type RunSummary struct {
	ID        int64
	Timestamp time.Time
	Status    types.RunStatus
	Seeded    int
	Approved  int
	Skipped   int
	Error     string
}

// RecentRuns returns up to limit runs, newest first.
func (h *History) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, timestamp, status, seeded, approved, skipped, COALESCE(error, '')
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.Status, &r.Seeded, &r.Approved, &r.Skipped, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			r.Timestamp = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Outcomes returns the per-candidate outcomes of one run in insertion
// order.
func (h *History) Outcomes(ctx context.Context, runID int64) ([]types.CandidateOutcome, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT candidate_id, title, state, COALESCE(skip_reason, ''), attempts, COALESCE(error, '')
		 FROM outcomes WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []types.CandidateOutcome
	for rows.Next() {
		var o types.CandidateOutcome
		if err := rows.Scan(&o.CandidateID, &o.Title, &o.State, &o.SkipReason, &o.Attempts, &o.Error); err != nil {
			return nil, fmt.Errorf("scanning outcome row: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// SearchOutcomes finds outcomes whose title matches the FTS query,
// newest run first.
func (h *History) SearchOutcomes(ctx context.Context, query string, limit int) ([]types.CandidateOutcome, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT o.candidate_id, o.title, o.state, COALESCE(o.skip_reason, ''), o.attempts, COALESCE(o.error, '')
		 FROM outcomes_fts f
		 JOIN outcomes o ON o.rowid = f.rowid
		 WHERE outcomes_fts MATCH ?
		 ORDER BY o.run_id DESC, o.rowid LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []types.CandidateOutcome
	for rows.Next() {
		var o types.CandidateOutcome
		if err := rows.Scan(&o.CandidateID, &o.Title, &o.State, &o.SkipReason, &o.Attempts, &o.Error); err != nil {
			return nil, fmt.Errorf("scanning outcome row: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
