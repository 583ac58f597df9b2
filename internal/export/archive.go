package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/andybalholm/brotli"

	"hearing-sync/internal/ledger"
)

// Archive is the envelope written to the .json.br snapshot.
type Archive struct {
	GeneratedAt string                 `json:"generated_at"`
	Count       int                    `json:"count"`
	Hearings    []ledger.HearingRecord `json:"hearings"`
}

// WriteArchive writes a brotli-compressed JSON snapshot of the ledger.
func WriteArchive(w io.Writer, records []ledger.HearingRecord) error {
	bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)

	arc := Archive{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Count:       len(records),
		Hearings:    records,
	}

	enc := json.NewEncoder(bw)
	if err := enc.Encode(arc); err != nil {
		return fmt.Errorf("export: encode archive: %w", err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("export: flush archive: %w", err)
	}
	return nil
}

// ReadArchive decodes a snapshot written by WriteArchive.
func ReadArchive(r io.Reader) (Archive, error) {
	var arc Archive
	dec := json.NewDecoder(brotli.NewReader(r))
	if err := dec.Decode(&arc); err != nil {
		return arc, fmt.Errorf("export: decode archive: %w", err)
	}
	return arc, nil
}
