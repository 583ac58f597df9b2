package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Hearing is the canonical representation of one discovered event inside this
// service. All discovery sources map into this model, and the ledger and
// downstream processors consume it.
type Hearing struct {
	CommitteeKey  string // dotted key like "house.judiciary", or generic "govinfo.house"
	CommitteeName string
	Title         string
	Date          string // YYYY-MM-DD (event date, not publish date)
	Sources       Sources
	Authority     int // rank of the originating source, see Authority* constants
}

// Source authority ranks. When two sources disagree on a field, the value from
// the strictly higher rank wins; ties go to the longer string.
const (
	AuthorityVideo       = 0 // video-platform-only record (default)
	AuthorityWebsite     = 1 // committee website scrape
	AuthorityArchive     = 2 // official archive transcript/package (GovInfo)
	AuthorityCongressAPI = 3 // congress.gov committee-meeting API
)

// ID returns the deterministic hearing identifier: the first 12 hex chars of
// SHA-256 over (committee_key, date, normalized title prefix). Identical
// inputs always produce the identical ID; the ledger's upsert relies on this.
func (h Hearing) ID() string {
	raw := h.CommitteeKey + "|" + h.Date + "|" + NormalizeTitle(h.Title)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:12]
}

// Slug returns a filesystem-safe path fragment like
// "house-judiciary-ai-regulation-hearing".
func (h Hearing) Slug() string {
	safe := slugRe.ReplaceAllString(strings.ToLower(h.Title), "-")
	if len(safe) > 80 {
		safe = safe[:80]
	}
	safe = strings.Trim(safe, "-")

	chamber, committee, ok := strings.Cut(h.CommitteeKey, ".")
	if !ok {
		committee = "unknown"
	}
	committee = strings.ReplaceAll(committee, "_", "-")
	return chamber + "-" + committee + "-" + safe
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Title prefixes stripped before hashing, in match order.
var titlePrefixRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^full committee hearing:\s*`),
	regexp.MustCompile(`(?i)^hearing notice:\s*`),
	regexp.MustCompile(`(?i)^subcommittee hearing:\s*`),
	regexp.MustCompile(`(?i)^markup:\s*`),
	regexp.MustCompile(`(?i)^business meeting:\s*`),
	regexp.MustCompile(`(?i)^hearing:\s*`),
	regexp.MustCompile(`(?i)^notice:\s*`),
}

// Trailing boilerplate clauses some committee sites append to titles.
var titleSuffixRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*location:.*$`),
	regexp.MustCompile(`(?i)\s*time:\s+.*$`),
}

var (
	punctRe      = regexp.MustCompile(`[^\w\s]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeTitle normalizes a hearing title for identity and comparison.
// It strips known boilerplate prefixes ("Full Committee Hearing:",
// "HEARING NOTICE:", ...) and trailing Location:/Time: clauses, lowercases,
// removes punctuation, and keeps the first 8 words. The bounded prefix
// tolerates trailing boilerplate variation while staying sensitive to
// genuinely different topics.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	for _, re := range titlePrefixRes {
		normalized = re.ReplaceAllString(normalized, "")
	}
	for _, re := range titleSuffixRes {
		normalized = re.ReplaceAllString(normalized, "")
	}

	normalized = punctRe.ReplaceAllString(normalized, " ")
	normalized = strings.TrimSpace(multiSpaceRe.ReplaceAllString(normalized, " "))

	words := strings.Fields(normalized)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}

// Chamber extracts "house" or "senate" from a committee key. Generic archive
// keys encode the chamber as the suffix ("govinfo.house"); specific keys as
// the prefix ("house.judiciary").
func Chamber(committeeKey string) string {
	parts := strings.SplitN(committeeKey, ".", 2)
	if parts[0] == "govinfo" {
		if len(parts) > 1 {
			return parts[1]
		}
		return "unknown"
	}
	return parts[0]
}

// IsGenericKey reports whether the key is a chamber-only archive fallback
// ("govinfo.house", "govinfo.senate") rather than a real committee.
func IsGenericKey(committeeKey string) bool {
	return strings.HasPrefix(committeeKey, "govinfo.")
}
