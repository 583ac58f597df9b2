package ledger

import (
	"database/sql"
	"errors"
	"fmt"
)

// ScraperHealth is one (committee, source) health row, consumed by the
// alerting collaborator.
type ScraperHealth struct {
	CommitteeKey        string         `db:"committee_key"`
	SourceType          string         `db:"source_type"`
	LastSuccess         sql.NullString `db:"last_success"`
	LastFailure         sql.NullString `db:"last_failure"`
	LastCount           sql.NullInt64  `db:"last_count"`
	ConsecutiveFailures int            `db:"consecutive_failures"`
}

// RecordScraperRun logs one discovery attempt for health monitoring. A
// successful run (runErr == nil) records the count and resets the consecutive
// failure counter; a failure increments it.
func (l *Ledger) RecordScraperRun(committeeKey, sourceType string, count int, runErr error) error {
	now := nowUTC()

	var failures int
	err := l.db.Get(&failures, `
		SELECT consecutive_failures FROM scraper_health
		WHERE committee_key = ? AND source_type = ?`, committeeKey, sourceType)
	seen := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ledger: read scraper health: %w", err)
	}

	if runErr == nil {
		if seen {
			_, err = l.db.Exec(`
				UPDATE scraper_health
				SET last_success = ?, last_count = ?, consecutive_failures = 0
				WHERE committee_key = ? AND source_type = ?`,
				now, count, committeeKey, sourceType)
		} else {
			_, err = l.db.Exec(`
				INSERT INTO scraper_health (committee_key, source_type, last_success, last_count, consecutive_failures)
				VALUES (?, ?, ?, ?, 0)`, committeeKey, sourceType, now, count)
		}
	} else {
		failures++
		if seen {
			_, err = l.db.Exec(`
				UPDATE scraper_health
				SET last_failure = ?, consecutive_failures = ?
				WHERE committee_key = ? AND source_type = ?`,
				now, failures, committeeKey, sourceType)
		} else {
			_, err = l.db.Exec(`
				INSERT INTO scraper_health (committee_key, source_type, last_failure, consecutive_failures)
				VALUES (?, ?, ?, 1)`, committeeKey, sourceType, now)
		}
	}
	if err != nil {
		return fmt.Errorf("ledger: record scraper run %s/%s: %w", committeeKey, sourceType, err)
	}
	return nil
}

// GetFailingScrapers returns every (committee, source) pair whose consecutive
// failure count is at or above threshold, worst first.
func (l *Ledger) GetFailingScrapers(threshold int) ([]ScraperHealth, error) {
	var rows []ScraperHealth
	err := l.db.Select(&rows, `
		SELECT committee_key, source_type, last_success, last_failure,
			last_count, consecutive_failures
		FROM scraper_health
		WHERE consecutive_failures >= ?
		ORDER BY consecutive_failures DESC`, threshold)
	if err != nil {
		return nil, fmt.Errorf("ledger: get failing scrapers: %w", err)
	}
	return rows, nil
}
