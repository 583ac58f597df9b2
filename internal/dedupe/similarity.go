package dedupe

import (
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)

// wordSet lowercases, strips punctuation, and returns the set of word tokens.
func wordSet(title string) map[string]bool {
	words := strings.Fields(nonAlnumRe.ReplaceAllString(strings.ToLower(title), ""))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// TitleSimilarity returns the Jaccard index of word tokens between two titles,
// in [0, 1]. Used for cross-run identity matching where both titles describe
// the same event in roughly the same register.
func TitleSimilarity(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

// Stopwords excluded from keyword overlap. Beyond common English words this
// drops the generic hearing vocabulary that appears in nearly every title.
var titleStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"to": true, "for": true, "and": true, "or": true, "at": true, "by": true,
	"is": true, "it": true, "as": true, "be": true, "was": true, "are": true,
	"its": true, "with": true, "that": true, "this": true, "from": true,
	"before": true, "after": true, "hearing": true, "committee": true,
	"subcommittee": true, "full": true, "oversight": true, "examine": true,
	"examining": true, "regarding": true, "concerning": true, "review": true,
	"united": true, "states": true, "senate": true, "house": true,
	"congress": true, "testifies": true, "testimony": true, "witnesses": true,
}

// significantWords returns the stopword-filtered set of tokens with at least
// 3 characters.
func significantWords(title string) map[string]bool {
	set := wordSet(title)
	for w := range set {
		if len(w) < 3 || titleStopwords[w] {
			delete(set, w)
		}
	}
	return set
}

// KeywordOverlap counts significant words shared by two titles. More tolerant
// of format differences than Jaccard, which penalizes length mismatch between
// a terse archive title and a verbose committee-site title.
func KeywordOverlap(a, b string) int {
	wa := significantWords(a)
	wb := significantWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	overlap := 0
	for w := range wa {
		if wb[w] {
			overlap++
		}
	}
	return overlap
}
