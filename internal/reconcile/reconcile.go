// Package reconcile detects that an incoming hearing is already present in
// the ledger under a different identifier and migrates all ledger state to
// the new one. A hearing's ID hashes the title text visible this run; when a
// later run sees a cleaner title whose normalized prefix differs, the ID
// changes and the earlier record's completed steps would be orphaned without
// migration.
package reconcile

import (
	"fmt"
	"log/slog"

	"hearing-sync/internal/dedupe"
	"hearing-sync/internal/domain"
	"hearing-sync/internal/ledger"
)

// DefaultMinSimilarity is the Jaccard floor for matching an incoming title
// against stored titles for the same committee and date. Same-event titles
// from different sources usually share well over a third of their words;
// tune via config.
const DefaultMinSimilarity = 0.30

// Reconciler matches incoming hearings against the ledger before upsert.
type Reconciler struct {
	Ledger        *ledger.Ledger
	MinSimilarity float64
}

func New(l *ledger.Ledger, minSimilarity float64) *Reconciler {
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	return &Reconciler{Ledger: l, MinSimilarity: minSimilarity}
}

// Reconcile checks whether h already exists in the ledger under a different
// ID and migrates old state to h's ID if so. The congress.gov event id is the
// strongest signal; failing that, stored hearings for the same committee and
// date are matched by title similarity, highest similarity above the floor
// winning. Returns the migrated-from ID, or "" when h is genuinely new.
func (r *Reconciler) Reconcile(h domain.Hearing) (string, error) {
	newID := h.ID()

	if eventID := h.Sources.CongressEventID; eventID != "" {
		existing, err := r.Ledger.FindByCongressEventID(eventID)
		if err != nil {
			return "", err
		}
		if existing != nil && existing.ID != newID {
			if err := r.migrate(existing.ID, newID, h); err != nil {
				return "", err
			}
			return existing.ID, nil
		}
	}

	candidates, err := r.Ledger.FindByCommitteeDate(h.CommitteeKey, h.Date)
	if err != nil {
		return "", err
	}

	var bestID string
	bestSim := 0.0
	for _, c := range candidates {
		if c.ID == newID {
			continue
		}
		sim := dedupe.TitleSimilarity(h.Title, c.Title)
		if sim >= r.MinSimilarity && sim > bestSim {
			bestSim = sim
			bestID = c.ID
		}
	}
	if bestID == "" {
		return "", nil
	}

	if err := r.migrate(bestID, newID, h); err != nil {
		return "", err
	}
	return bestID, nil
}

func (r *Reconciler) migrate(oldID, newID string, h domain.Hearing) error {
	slog.Info("migrating hearing id",
		"old_id", oldID, "new_id", newID,
		"committee", h.CommitteeKey, "title", truncate(h.Title, 60))
	if err := r.Ledger.MergeHearingID(oldID, newID); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
