// Package pipeline drives one ingestion run: discover from every
// source, dedupe, reconcile with prior runs, and persist.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"hearing-sync/internal/concurrency"
	"hearing-sync/internal/config"
	"hearing-sync/internal/dedupe"
	"hearing-sync/internal/domain"
	"hearing-sync/internal/ledger"
	"hearing-sync/internal/reconcile"
	"hearing-sync/internal/sources"
)

// StepDiscover is the processing step stamped after a hearing is
// persisted by a run.
const StepDiscover = "discover"

// Summary reports what one run did.
type Summary struct {
	Discovered int // raw records from all sources
	Deduped    int // after intra-run + cross-source merging
	Migrated   int // prior-run identities migrated to new IDs
	Persisted  int
	SourceErrs int
}

// Runner owns the collaborators for one run.
type Runner struct {
	Cfg     config.Config
	Ledger  *ledger.Ledger
	Sources []sources.HearingSource
}

// Run executes the fixed pipeline ordering: discovery fan-out, then
// intra-run dedup, then cross-source reconciliation, then per-hearing
// cross-run reconciliation and upsert. A file lock next to the database
// keeps concurrent runs out.
func (r *Runner) Run(ctx context.Context, days int) (Summary, error) {
	var sum Summary

	lock := flock.New(r.Cfg.DBPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return sum, fmt.Errorf("pipeline: acquire run lock: %w", err)
	}
	if !locked {
		return sum, fmt.Errorf("pipeline: another run holds %s", lock.Path())
	}
	defer lock.Unlock()

	start := time.Now()
	raw := r.discover(ctx, days, &sum)
	sum.Discovered = len(raw)

	hearings := dedupe.Deduplicate(raw)
	hearings = dedupe.ReconcileCrossSource(hearings, r.Cfg.CrossSourceMinOverlap)
	sum.Deduped = len(hearings)

	rec := reconcile.New(r.Ledger, r.Cfg.CrossRunMinSimilarity)
	for _, h := range hearings {
		oldID, err := rec.Reconcile(h)
		if err != nil {
			return sum, fmt.Errorf("pipeline: reconcile %s: %w", h.ID(), err)
		}
		if oldID != "" {
			sum.Migrated++
		}

		if err := r.Ledger.RecordHearing(h); err != nil {
			return sum, err
		}
		if err := r.Ledger.MarkStep(h.ID(), StepDiscover, ledger.StatusDone, nil); err != nil {
			return sum, err
		}
		sum.Persisted++
	}

	slog.Info("run complete",
		"discovered", sum.Discovered,
		"deduped", sum.Deduped,
		"migrated", sum.Migrated,
		"persisted", sum.Persisted,
		"source_errors", sum.SourceErrs,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return sum, nil
}

// discover fans out across sources. A failing source is recorded in
// scraper health and skipped; the run continues with what it has.
func (r *Runner) discover(ctx context.Context, days int, sum *Summary) []domain.Hearing {
	results, errs := concurrency.ProcessParallel(ctx, r.Sources, concurrency.DefaultOptions(),
		func(ctx context.Context, _ int, src sources.HearingSource) ([]domain.Hearing, error) {
			found, err := src.Discover(ctx, days)

			if herr := r.Ledger.RecordScraperRun(src.Scope(), src.Name(), len(found), err); herr != nil {
				slog.Warn("health record failed", "source", src.Name(), "error", herr)
			}

			if err != nil {
				slog.Warn("source discovery failed", "source", src.Name(), "error", err)
				return nil, err
			}
			slog.Info("source discovery", "source", src.Name(), "count", len(found))
			return found, nil
		})

	sum.SourceErrs = len(errs)

	var all []domain.Hearing
	for _, batch := range results {
		all = append(all, batch...)
	}
	return all
}
