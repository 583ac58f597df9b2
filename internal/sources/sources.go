// Package sources defines the discovery interface every upstream
// hearing feed implements.
package sources

import (
	"context"

	"hearing-sync/internal/domain"
)

// HearingSource discovers hearings from one upstream system.
type HearingSource interface {
	// Name identifies the source in logs and health records.
	Name() string

	// Scope is the committee_key the source's health is tracked under.
	// Committee-specific scrapers return their committee key; the
	// federal APIs cover everything and return "all".
	Scope() string

	// Discover returns hearings seen in the last `days` days.
	Discover(ctx context.Context, days int) ([]domain.Hearing, error)
}
