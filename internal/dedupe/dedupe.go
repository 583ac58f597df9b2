// Package dedupe collapses hearing records that describe the same real-world
// event. Intra-run deduplication merges exact (committee, date) duplicates,
// and the cross-source reconciler pairs generic archive records with the
// committee-specific record for the same event.
package dedupe

import (
	"hearing-sync/internal/domain"
)

// ResolveString picks the winning value when two sources disagree on a field.
// A value from a strictly higher-ranked source wins outright; on equal rank
// the longer (more descriptive) string wins. Empty values never win over
// non-empty ones.
func ResolveString(a string, aRank int, b string, bRank int) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if aRank > bRank {
		return a
	}
	if bRank > aRank {
		return b
	}
	if len(b) > len(a) {
		return b
	}
	return a
}

// Deduplicate merges hearings discovered in the same run that exact-match on
// (committee_key, date), folding each group left-to-right into one survivor.
// Sources are shallow-merged with later records winning per key; the title
// follows the authority resolver. Input order among distinct groups is
// preserved, so deduplicating an already-deduplicated list is a no-op.
func Deduplicate(hearings []domain.Hearing) []domain.Hearing {
	type key struct{ committee, date string }

	merged := make(map[key]*domain.Hearing, len(hearings))
	order := make([]key, 0, len(hearings))

	for _, h := range hearings {
		k := key{h.CommitteeKey, h.Date}
		existing, ok := merged[k]
		if !ok {
			clone := h
			merged[k] = &clone
			order = append(order, k)
			continue
		}
		mergeFields(existing, h)
	}

	out := make([]domain.Hearing, 0, len(order))
	for _, k := range order {
		out = append(out, *merged[k])
	}
	return out
}

// mergeFields folds src into dst in place. Committee identity is left alone;
// callers that need to rewrite it (cross-source merges) do so themselves.
func mergeFields(dst *domain.Hearing, src domain.Hearing) {
	dst.Title = ResolveString(dst.Title, dst.Authority, src.Title, src.Authority)
	dst.CommitteeName = ResolveString(dst.CommitteeName, dst.Authority, src.CommitteeName, src.Authority)
	dst.Sources.Merge(src.Sources)
	if src.Authority > dst.Authority {
		dst.Authority = src.Authority
	}
}
