package ledger

import (
	"database/sql"
	"errors"
	"fmt"
)

// MarkStep records a processing-step transition for a hearing. Setting
// "running" stamps started_at and clears any stale error; "done" and "failed"
// stamp completed_at and record the error (nil for done); "pending" clears
// status without touching timestamps. Step-processors must check IsStepDone
// before chargeable work and call MarkStep after, so repeated runs never redo
// completed non-idempotent work.
func (l *Ledger) MarkStep(hearingID, step, status string, stepErr error) error {
	now := nowUTC()
	errText := nullStr(errString(stepErr))

	var exists string
	err := l.db.Get(&exists, `
		SELECT hearing_id FROM processing_steps
		WHERE hearing_id = ? AND step = ?`, hearingID, step)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		switch status {
		case StatusRunning:
			_, err = l.db.Exec(`
				INSERT INTO processing_steps (hearing_id, step, status, started_at)
				VALUES (?, ?, ?, ?)`, hearingID, step, status, now)
		case StatusDone, StatusFailed:
			_, err = l.db.Exec(`
				INSERT INTO processing_steps (hearing_id, step, status, started_at, completed_at, error)
				VALUES (?, ?, ?, ?, ?, ?)`, hearingID, step, status, now, now, errText)
		default:
			_, err = l.db.Exec(`
				INSERT INTO processing_steps (hearing_id, step, status, error)
				VALUES (?, ?, ?, ?)`, hearingID, step, status, errText)
		}
	case err == nil:
		switch status {
		case StatusRunning:
			_, err = l.db.Exec(`
				UPDATE processing_steps
				SET status = ?, started_at = ?, error = NULL
				WHERE hearing_id = ? AND step = ?`, status, now, hearingID, step)
		case StatusDone, StatusFailed:
			_, err = l.db.Exec(`
				UPDATE processing_steps
				SET status = ?, completed_at = ?, error = ?
				WHERE hearing_id = ? AND step = ?`, status, now, errText, hearingID, step)
		default:
			_, err = l.db.Exec(`
				UPDATE processing_steps
				SET status = ?, error = ?
				WHERE hearing_id = ? AND step = ?`, status, errText, hearingID, step)
		}
	}
	if err != nil {
		return fmt.Errorf("ledger: mark step %s/%s=%s: %w", hearingID, step, status, err)
	}
	return nil
}

// IsStepDone reports whether the step's status is exactly "done". Failed and
// in-flight steps both return false, which makes them eligible for retry on
// the next run.
func (l *Ledger) IsStepDone(hearingID, step string) (bool, error) {
	var status string
	err := l.db.Get(&status, `
		SELECT status FROM processing_steps
		WHERE hearing_id = ? AND step = ?`, hearingID, step)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: is step done %s/%s: %w", hearingID, step, err)
	}
	return status == StatusDone, nil
}

// StepRecord is one row of per-hearing step state.
type StepRecord struct {
	HearingID   string         `db:"hearing_id"`
	Step        string         `db:"step"`
	Status      string         `db:"status"`
	StartedAt   sql.NullString `db:"started_at"`
	CompletedAt sql.NullString `db:"completed_at"`
	Error       sql.NullString `db:"error"`
}

// GetSteps returns all step rows for a hearing, ordered by step name.
func (l *Ledger) GetSteps(hearingID string) ([]StepRecord, error) {
	var rows []StepRecord
	err := l.db.Select(&rows, `
		SELECT hearing_id, step, status, started_at, completed_at, error
		FROM processing_steps WHERE hearing_id = ? ORDER BY step`, hearingID)
	if err != nil {
		return nil, fmt.Errorf("ledger: get steps %s: %w", hearingID, err)
	}
	return rows, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
