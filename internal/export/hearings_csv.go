// Package export renders ledger contents for downstream consumers: a
// CSV snapshot for spreadsheets and a compressed JSON archive for bulk
// transfer.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"hearing-sync/internal/ledger"
)

// Keep header order EXACT; downstream sheets key on column position.
var hearingsHeader = []string{
	"HEARING_ID",
	"COMMITTEE_KEY",
	"DATE",
	"TITLE",
	"SLUG",
	"CONGRESS_EVENT_ID",
	"SOURCES",
	"DISCOVERED_AT",
	"PROCESSED_AT",
}

// WriteHearingsCSV writes one row per ledger hearing.
func WriteHearingsCSV(w io.Writer, records []ledger.HearingRecord) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(hearingsHeader); err != nil {
		return err
	}

	for _, rec := range records {
		if err := cw.Write(toHearingRow(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toHearingRow(rec ledger.HearingRecord) []string {
	sources := ""
	if !rec.Sources.IsZero() {
		if b, err := json.Marshal(rec.Sources); err == nil {
			sources = string(b)
		}
	}

	return []string{
		rec.ID,              // HEARING_ID
		rec.CommitteeKey,    // COMMITTEE_KEY
		rec.Date,            // DATE
		rec.Title,           // TITLE
		rec.Slug,            // SLUG
		rec.CongressEventID, // CONGRESS_EVENT_ID
		sources,             // SOURCES
		rec.DiscoveredAt,    // DISCOVERED_AT
		rec.ProcessedAt,     // PROCESSED_AT
	}
}
