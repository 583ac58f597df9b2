package dedupe

import (
	"time"

	"hearing-sync/internal/domain"
)

// DefaultMinOverlap is the minimum significant-keyword overlap required before
// a generic archive record is merged into a committee-specific one. Two shared
// topic words is enough to pair a terse GPO title with a verbose committee
// title while keeping unrelated same-day hearings apart; tune via config.
const DefaultMinOverlap = 2

// ReconcileCrossSource merges generic archive-only records ("govinfo.house",
// "govinfo.senate") into committee-specific records for the same event.
// Within each date bucket (and, failing that, the adjacent-day buckets, since
// archive publish dates can lag the hearing date by one day) a generic record
// pairs with the specific record of the same chamber whose title shares at
// least minOverlap significant keywords; the best-overlapping candidate wins.
// The merged record always carries the specific committee key and name; title
// and the rest still go through the authority resolver, and sources are
// unioned. Records that never find a partner pass through unchanged.
func ReconcileCrossSource(hearings []domain.Hearing, minOverlap int) []domain.Hearing {
	if minOverlap <= 0 {
		minOverlap = DefaultMinOverlap
	}

	specificByDate := make(map[string][]*domain.Hearing)
	var generics []*domain.Hearing
	out := make([]*domain.Hearing, 0, len(hearings))

	for i := range hearings {
		h := hearings[i]
		p := &h
		if domain.IsGenericKey(h.CommitteeKey) {
			generics = append(generics, p)
		} else {
			specificByDate[h.Date] = append(specificByDate[h.Date], p)
		}
		out = append(out, p)
	}

	consumed := make(map[*domain.Hearing]bool)

	for _, g := range generics {
		best := findPartner(g, specificByDate[g.Date], minOverlap)
		if best == nil {
			// Publish-date vs hearing-date skew: retry one day either side.
			for _, date := range adjacentDates(g.Date) {
				best = findPartner(g, specificByDate[date], minOverlap)
				if best != nil {
					break
				}
			}
		}
		if best == nil {
			continue
		}
		// Committee identity always comes from the specific side, regardless
		// of which source ranks higher.
		key, name := best.CommitteeKey, best.CommitteeName
		mergeFields(best, *g)
		best.CommitteeKey, best.CommitteeName = key, name
		consumed[g] = true
	}

	result := make([]domain.Hearing, 0, len(out))
	for _, p := range out {
		if consumed[p] {
			continue
		}
		result = append(result, *p)
	}
	return result
}

// findPartner picks the specific record with the highest qualifying keyword
// overlap against the generic record. Cross-chamber pairs are never
// considered: a house and a senate hearing on the same date are different
// events no matter how similar the titles.
func findPartner(generic *domain.Hearing, candidates []*domain.Hearing, minOverlap int) *domain.Hearing {
	chamber := domain.Chamber(generic.CommitteeKey)

	var best *domain.Hearing
	bestOverlap := 0
	for _, c := range candidates {
		if domain.Chamber(c.CommitteeKey) != chamber {
			continue
		}
		overlap := KeywordOverlap(generic.Title, c.Title)
		if overlap >= minOverlap && overlap > bestOverlap {
			bestOverlap = overlap
			best = c
		}
	}
	return best
}

// adjacentDates returns the ISO dates one day before and after date. A
// malformed date yields nothing, which simply disables the adjacent-day pass.
func adjacentDates(date string) []string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil
	}
	return []string{
		t.AddDate(0, 0, -1).Format("2006-01-02"),
		t.AddDate(0, 0, 1).Format("2006-01-02"),
	}
}
