package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hearing-sync/internal/domain"
)

// hearingRow mirrors the hearings table.
type hearingRow struct {
	ID              string         `db:"id"`
	CommitteeKey    string         `db:"committee_key"`
	Date            string         `db:"date"`
	Title           string         `db:"title"`
	Slug            string         `db:"slug"`
	SourcesJSON     string         `db:"sources_json"`
	DiscoveredAt    sql.NullString `db:"discovered_at"`
	ProcessedAt     sql.NullString `db:"processed_at"`
	CongressEventID sql.NullString `db:"congress_event_id"`
}

// HearingRecord is a hearing as stored in the ledger.
type HearingRecord struct {
	ID              string
	CommitteeKey    string
	Date            string
	Title           string
	Slug            string
	Sources         domain.Sources
	DiscoveredAt    string
	ProcessedAt     string // empty until MarkProcessed
	CongressEventID string
}

func (r hearingRow) toRecord() (HearingRecord, error) {
	rec := HearingRecord{
		ID:              r.ID,
		CommitteeKey:    r.CommitteeKey,
		Date:            r.Date,
		Title:           r.Title,
		Slug:            r.Slug,
		DiscoveredAt:    r.DiscoveredAt.String,
		ProcessedAt:     r.ProcessedAt.String,
		CongressEventID: r.CongressEventID.String,
	}
	if r.SourcesJSON != "" {
		if err := json.Unmarshal([]byte(r.SourcesJSON), &rec.Sources); err != nil {
			return rec, fmt.Errorf("ledger: decode sources for %s: %w", r.ID, err)
		}
	}
	return rec, nil
}

// RecordHearing upserts a hearing under its derived ID. First sighting stamps
// discovered_at; re-sighting updates the mutable fields. The congress event id
// is only written when the incoming value is non-empty, so a source that has
// stopped reporting it never clobbers a previously learned id.
func (l *Ledger) RecordHearing(h domain.Hearing) error {
	sourcesJSON, err := json.Marshal(h.Sources)
	if err != nil {
		return fmt.Errorf("ledger: encode sources: %w", err)
	}

	id := h.ID()
	eventID := nullStr(h.Sources.CongressEventID)

	var existing string
	err = l.db.Get(&existing, `SELECT id FROM hearings WHERE id = ?`, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = l.db.Exec(`
			INSERT INTO hearings (id, committee_key, date, title, slug,
				sources_json, discovered_at, congress_event_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, h.CommitteeKey, h.Date, h.Title, h.Slug(),
			string(sourcesJSON), nowUTC(), eventID)
	case err == nil:
		_, err = l.db.Exec(`
			UPDATE hearings
			SET committee_key = ?, date = ?, title = ?, slug = ?,
				sources_json = ?, congress_event_id = COALESCE(?, congress_event_id)
			WHERE id = ?`,
			h.CommitteeKey, h.Date, h.Title, h.Slug(),
			string(sourcesJSON), eventID, id)
	}
	if err != nil {
		return fmt.Errorf("ledger: record hearing %s: %w", id, err)
	}
	return nil
}

// GetHearing fetches one hearing by id. Returns (nil, nil) when absent.
func (l *Ledger) GetHearing(id string) (*HearingRecord, error) {
	var row hearingRow
	err := l.db.Get(&row, `
		SELECT id, committee_key, date, title, slug, sources_json,
			discovered_at, processed_at, congress_event_id
		FROM hearings WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: get hearing %s: %w", id, err)
	}
	rec, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByCongressEventID looks up a hearing by its congress.gov event id.
// Returns (nil, nil) when no record carries that id.
func (l *Ledger) FindByCongressEventID(eventID string) (*HearingRecord, error) {
	var row hearingRow
	err := l.db.Get(&row, `
		SELECT id, committee_key, date, title, slug, sources_json,
			discovered_at, processed_at, congress_event_id
		FROM hearings WHERE congress_event_id = ?`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: find by event id %s: %w", eventID, err)
	}
	rec, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByCommitteeDate returns all hearings for a committee on a given date,
// the candidate set for fuzzy cross-run reconciliation.
func (l *Ledger) FindByCommitteeDate(committeeKey, date string) ([]HearingRecord, error) {
	var rows []hearingRow
	err := l.db.Select(&rows, `
		SELECT id, committee_key, date, title, slug, sources_json,
			discovered_at, processed_at, congress_event_id
		FROM hearings WHERE committee_key = ? AND date = ?`, committeeKey, date)
	if err != nil {
		return nil, fmt.Errorf("ledger: find by committee/date: %w", err)
	}
	return toRecords(rows)
}

// GetUnprocessedHearings returns hearings with no processed_at stamp,
// most recent hearing date first.
func (l *Ledger) GetUnprocessedHearings() ([]HearingRecord, error) {
	var rows []hearingRow
	err := l.db.Select(&rows, `
		SELECT id, committee_key, date, title, slug, sources_json,
			discovered_at, processed_at, congress_event_id
		FROM hearings
		WHERE processed_at IS NULL
		ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("ledger: list unprocessed: %w", err)
	}
	return toRecords(rows)
}

// ListHearings returns every hearing in the ledger, most recent first.
func (l *Ledger) ListHearings() ([]HearingRecord, error) {
	var rows []hearingRow
	err := l.db.Select(&rows, `
		SELECT id, committee_key, date, title, slug, sources_json,
			discovered_at, processed_at, congress_event_id
		FROM hearings ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("ledger: list hearings: %w", err)
	}
	return toRecords(rows)
}

// IsProcessed reports whether the hearing has been marked fully processed.
func (l *Ledger) IsProcessed(id string) (bool, error) {
	var processedAt sql.NullString
	err := l.db.Get(&processedAt, `SELECT processed_at FROM hearings WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: is processed %s: %w", id, err)
	}
	return processedAt.Valid, nil
}

// MarkProcessed stamps processed_at on a hearing.
func (l *Ledger) MarkProcessed(id string) error {
	_, err := l.db.Exec(`UPDATE hearings SET processed_at = ? WHERE id = ?`, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("ledger: mark processed %s: %w", id, err)
	}
	return nil
}

func toRecords(rows []hearingRow) ([]HearingRecord, error) {
	out := make([]HearingRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
