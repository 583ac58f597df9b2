package ledger

import "fmt"

// MergeHearingID migrates every hearing-keyed row from oldID to newID inside
// one transaction: processing steps and title-search tracking are copied to
// newID (rows that would collide with an existing newID row are skipped — the
// destination's own row wins), then all oldID rows are deleted. A partial
// migration is a correctness bug, so any error rolls the whole thing back.
func (l *Ledger) MergeHearingID(oldID, newID string) error {
	tx, err := l.db.Beginx()
	if err != nil {
		return fmt.Errorf("ledger: begin migration %s -> %s: %w", oldID, newID, err)
	}
	defer tx.Rollback()

	stmts := []string{
		`INSERT INTO processing_steps (hearing_id, step, status, started_at, completed_at, error)
			SELECT ?1, step, status, started_at, completed_at, error
			FROM processing_steps WHERE hearing_id = ?2
			ON CONFLICT (hearing_id, step) DO NOTHING`,
		`INSERT INTO title_searches (hearing_id, searched_at, found)
			SELECT ?1, searched_at, found
			FROM title_searches WHERE hearing_id = ?2
			ON CONFLICT (hearing_id) DO NOTHING`,
		`DELETE FROM processing_steps WHERE hearing_id = ?2`,
		`DELETE FROM title_searches WHERE hearing_id = ?2`,
		`DELETE FROM hearings WHERE id = ?2`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s, newID, oldID); err != nil {
			return fmt.Errorf("ledger: migrate %s -> %s: %w", oldID, newID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger: commit migration %s -> %s: %w", oldID, newID, err)
	}
	return nil
}
