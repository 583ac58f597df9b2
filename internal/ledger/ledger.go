// Package ledger is the durable store behind the hearing pipeline: hearing
// records, per-step processing status, scraper health, and run accounting,
// all in one embedded SQLite file. Every logical mutation commits on its own,
// so a crash loses at most one in-flight write. The one exception is hearing
// ID migration, which runs as a single transaction.
package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Step statuses. Only StatusDone lets a step-processor skip re-execution;
// failed steps are eligible for retry on the next run.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Ledger wraps the SQLite state database. The underlying pool is capped at a
// single connection so writes serialize explicitly rather than relying on
// SQLite's file locking under contention; it does not provide cross-process
// mutual exclusion.
type Ledger struct {
	db   *sqlx.DB
	path string
}

// Open creates or opens the ledger database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ledger: create data dir: %w", err)
	}

	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db, path: path}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS hearings (
			id TEXT PRIMARY KEY,
			committee_key TEXT,
			date TEXT,
			title TEXT,
			slug TEXT,
			sources_json TEXT,
			discovered_at TEXT,
			processed_at TEXT,
			congress_event_id TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS processing_steps (
			hearing_id TEXT,
			step TEXT,
			status TEXT,
			started_at TEXT,
			completed_at TEXT,
			error TEXT,
			PRIMARY KEY (hearing_id, step)
		)`,
		`CREATE TABLE IF NOT EXISTS scraper_health (
			committee_key TEXT,
			source_type TEXT,
			last_success TEXT,
			last_failure TEXT,
			last_count INTEGER,
			consecutive_failures INTEGER DEFAULT 0,
			PRIMARY KEY (committee_key, source_type)
		)`,
		`CREATE TABLE IF NOT EXISTS title_searches (
			hearing_id TEXT PRIMARY KEY,
			searched_at TEXT,
			found INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS run_costs (
			run_id TEXT PRIMARY KEY,
			started_at TEXT,
			completed_at TEXT,
			hearings_processed INTEGER DEFAULT 0,
			llm_cleanup_usd REAL DEFAULT 0,
			whisper_usd REAL DEFAULT 0,
			total_usd REAL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hearings_congress_event_id
			ON hearings(congress_event_id) WHERE congress_event_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_hearings_committee_date
			ON hearings(committee_key, date)`,
	}
	for _, s := range stmts {
		if _, err := l.db.Exec(s); err != nil {
			return fmt.Errorf("ledger: init schema: %w", err)
		}
	}
	return nil
}

// nowUTC returns the current time as an RFC 3339 UTC string, the timestamp
// format used throughout the database.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
