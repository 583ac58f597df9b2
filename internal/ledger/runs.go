package ledger

import (
	"database/sql"
	"errors"
	"fmt"
)

// RunCost is the cost breakdown of one pipeline run.
type RunCost struct {
	RunID             string  `db:"run_id"`
	StartedAt         string  `db:"started_at"`
	CompletedAt       string  `db:"completed_at"`
	HearingsProcessed int     `db:"hearings_processed"`
	LLMCleanupUSD     float64 `db:"llm_cleanup_usd"`
	WhisperUSD        float64 `db:"whisper_usd"`
	TotalUSD          float64 `db:"total_usd"`
}

// RecordRun upserts the accounting row for one pipeline run.
func (l *Ledger) RecordRun(rc RunCost) error {
	_, err := l.db.Exec(`
		INSERT INTO run_costs
			(run_id, started_at, completed_at, hearings_processed,
			 llm_cleanup_usd, whisper_usd, total_usd)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			hearings_processed = excluded.hearings_processed,
			llm_cleanup_usd = excluded.llm_cleanup_usd,
			whisper_usd = excluded.whisper_usd,
			total_usd = excluded.total_usd`,
		rc.RunID, rc.StartedAt, rc.CompletedAt, rc.HearingsProcessed,
		rc.LLMCleanupUSD, rc.WhisperUSD, rc.TotalUSD)
	if err != nil {
		return fmt.Errorf("ledger: record run %s: %w", rc.RunID, err)
	}
	return nil
}

// TotalCost sums cost and volume across all recorded runs.
type TotalCost struct {
	Runs          int
	Hearings      int
	LLMCleanupUSD float64
	WhisperUSD    float64
	TotalUSD      float64
}

// GetTotalCost returns cumulative run accounting.
func (l *Ledger) GetTotalCost() (TotalCost, error) {
	row := struct {
		Runs     int             `db:"runs"`
		Hearings sql.NullInt64   `db:"hearings"`
		LLM      sql.NullFloat64 `db:"llm_cleanup_usd"`
		Whisper  sql.NullFloat64 `db:"whisper_usd"`
		Total    sql.NullFloat64 `db:"total_usd"`
	}{}
	err := l.db.Get(&row, `
		SELECT COUNT(*) AS runs,
			SUM(hearings_processed) AS hearings,
			SUM(llm_cleanup_usd) AS llm_cleanup_usd,
			SUM(whisper_usd) AS whisper_usd,
			SUM(total_usd) AS total_usd
		FROM run_costs`)
	if err != nil {
		return TotalCost{}, fmt.Errorf("ledger: total cost: %w", err)
	}
	return TotalCost{
		Runs:          row.Runs,
		Hearings:      int(row.Hearings.Int64),
		LLMCleanupUSD: row.LLM.Float64,
		WhisperUSD:    row.Whisper.Float64,
		TotalUSD:      row.Total.Float64,
	}, nil
}

// IsTitleSearched reports whether a video title search was already attempted
// for this hearing, so search rotation never repeats one.
func (l *Ledger) IsTitleSearched(hearingID string) (bool, error) {
	var id string
	err := l.db.Get(&id, `SELECT hearing_id FROM title_searches WHERE hearing_id = ?`, hearingID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: is title searched %s: %w", hearingID, err)
	}
	return true, nil
}

// RecordTitleSearch records that a title search was attempted for this
// hearing and whether it found anything.
func (l *Ledger) RecordTitleSearch(hearingID string, found bool) error {
	foundInt := 0
	if found {
		foundInt = 1
	}
	_, err := l.db.Exec(`
		INSERT INTO title_searches (hearing_id, searched_at, found)
		VALUES (?, ?, ?)
		ON CONFLICT (hearing_id) DO UPDATE SET
			searched_at = excluded.searched_at,
			found = excluded.found`,
		hearingID, nowUTC(), foundInt)
	if err != nil {
		return fmt.Errorf("ledger: record title search %s: %w", hearingID, err)
	}
	return nil
}
