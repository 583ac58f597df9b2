// Package govinfo polls the GovInfo collections API for recently
// published congressional hearing transcripts (CHRG packages).
package govinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"hearing-sync/internal/config"
	"hearing-sync/internal/domain"
	"hearing-sync/internal/httpx"
)

const defaultBaseURL = "https://api.govinfo.gov"

// GPO publishes transcripts months after the hearing, and the
// collections endpoint returns packages *modified* since the cutoff,
// not *published*. Anything issued before this window is a metadata
// touch on an old transcript, not a new hearing.
const publishWindowDays = 180

// Client polls GovInfo for CHRG hearing packages.
type Client struct {
	BaseURL  string
	APIKey   string
	Congress int

	// FetchDetails enables the extra per-package summary call when
	// title-based committee mapping fails.
	FetchDetails bool

	HTTPClient *http.Client
	limiter    *httpx.RateLimiter

	registry config.Registry
	nameMap  map[string][]string // lowered name fragment -> committee keys
	frags    []string            // fragments, longest first
}

// New builds a GovInfo client over the shared committee registry.
func New(cfg config.Config, reg config.Registry) *Client {
	c := &Client{
		BaseURL:    defaultBaseURL,
		APIKey:     cfg.GovInfoAPIKey,
		Congress:   cfg.Congress,
		HTTPClient: httpx.NewClient(30 * time.Second),
		registry:   reg,
		limiter:    httpx.NewRateLimiter(500 * time.Millisecond),
	}
	c.buildNameMap()
	return c
}

func (c *Client) Name() string  { return "govinfo" }
func (c *Client) Scope() string { return "all" }

type collectionResponse struct {
	Packages []struct {
		PackageID  string `json:"packageId"`
		DateIssued string `json:"dateIssued"`
		Title      string `json:"title"`
	} `json:"packages"`
}

// Discover lists CHRG packages modified in the last `days` days and
// maps each to a committee, falling back to a generic chamber key when
// no registered committee matches.
func (c *Client) Discover(ctx context.Context, days int) ([]domain.Hearing, error) {
	cutoff := time.Now().AddDate(0, 0, -days).UTC().Format("2006-01-02T00:00:00Z")
	listURL := fmt.Sprintf(
		"%s/collections/CHRG/%s?offsetMark=*&pageSize=100&congress=%d&api_key=%s",
		c.baseURL(), cutoff, c.Congress, url.QueryEscape(c.APIKey),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var data collectionResponse
	if err := httpx.GetJSON(ctx, c.httpClient(), listURL, &data, httpx.DefaultRetryConfig()); err != nil {
		return nil, fmt.Errorf("govinfo: list collections: %w", err)
	}

	dateFloor := time.Now().AddDate(0, 0, -publishWindowDays).Format("2006-01-02")

	var hearings []domain.Hearing
	for _, pkg := range data.Packages {
		if pkg.PackageID == "" {
			continue
		}
		dateIssued := pkg.DateIssued
		if len(dateIssued) > 10 {
			dateIssued = dateIssued[:10]
		}
		if dateIssued < dateFloor {
			continue
		}

		title := pkg.Title
		if title == "" {
			title = pkg.PackageID
		}

		chamber := chamberFromPackageID(pkg.PackageID)

		committeeKey := c.mapToCommittee(title, chamber)
		if committeeKey == "" && c.FetchDetails {
			committeeKey = c.fetchCommittee(ctx, pkg.PackageID)
		}
		if committeeKey == "" {
			committeeKey = "govinfo." + chamber
		}

		committeeName := chamberLabel(chamber) + " (via GovInfo)"
		if meta, ok := c.registry[committeeKey]; ok {
			committeeName = meta.Name
		}

		hearings = append(hearings, domain.Hearing{
			CommitteeKey:  committeeKey,
			CommitteeName: committeeName,
			Title:         title,
			Date:          dateIssued,
			Sources:       domain.Sources{GovInfoPackageID: pkg.PackageID},
			Authority:     domain.AuthorityArchive,
		})
	}

	slog.Info("govinfo packages after date filtering",
		"count", len(hearings), "floor", dateFloor)
	return hearings, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return defaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return httpx.NewClient(30 * time.Second)
}

func chamberFromPackageID(packageID string) string {
	lower := strings.ToLower(packageID)
	switch {
	case strings.Contains(lower, "hhrg"):
		return "house"
	case strings.Contains(lower, "shrg"):
		return "senate"
	default:
		return "unknown"
	}
}

func chamberLabel(chamber string) string {
	if chamber == "" {
		return "Unknown"
	}
	return strings.ToUpper(chamber[:1]) + chamber[1:]
}

// buildNameMap indexes registered committees by lowered name fragment.
// "House Ways and Means" indexes under "ways and means"; ambiguous
// fragments like "judiciary" map to both chambers' keys.
func (c *Client) buildNameMap() {
	c.nameMap = make(map[string][]string)
	for key, meta := range c.registry {
		name := meta.Name
		for _, prefix := range []string{"House ", "Senate "} {
			if strings.HasPrefix(name, prefix) {
				name = name[len(prefix):]
				break
			}
		}
		fragment := strings.ToLower(strings.TrimSpace(name))
		if fragment != "" {
			c.nameMap[fragment] = append(c.nameMap[fragment], key)
		}
	}

	c.frags = make([]string, 0, len(c.nameMap))
	for f := range c.nameMap {
		c.frags = append(c.frags, f)
	}
	// Longest fragments first so "banking, housing, and urban affairs"
	// beats "banking".
	sort.Slice(c.frags, func(i, j int) bool { return len(c.frags[i]) > len(c.frags[j]) })
}

var committeeOnRe = regexp.MustCompile(`COMMITTEE\s+ON\s+(.+?)(?:\s*[-\x{2014},]\s*(?:UNITED\s+STATES|U\.S\.)|$)`)
var theArticleRe = regexp.MustCompile(`^THE\s+`)

// mapToCommittee extracts a committee key from a package title.
// Titles read like "HEARING BEFORE THE COMMITTEE ON WAYS AND MEANS" or
// "COMMITTEE ON FINANCE--UNITED STATES SENATE".
func (c *Client) mapToCommittee(title, chamber string) string {
	titleUpper := strings.ToUpper(title)

	searchText := titleUpper
	if m := committeeOnRe.FindStringSubmatch(titleUpper); m != nil {
		searchText = strings.TrimSpace(m[1])
	}
	noArticle := theArticleRe.ReplaceAllString(searchText, "")

	candidates := []string{noArticle}
	if noArticle != searchText {
		candidates = append(candidates, searchText)
	}
	if searchText != titleUpper {
		candidates = append(candidates, titleUpper)
	}

	chamberPrefix := ""
	if chamber != "" && chamber != "unknown" {
		chamberPrefix = chamber + "."
	}

	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)
		for _, fragment := range c.frags {
			if !strings.Contains(candidateLower, fragment) {
				continue
			}
			for _, key := range c.nameMap[fragment] {
				if chamberPrefix != "" && !strings.HasPrefix(key, chamberPrefix) {
					continue
				}
				return key
			}
		}
	}
	return ""
}

type packageSummary struct {
	Title      string            `json:"title"`
	Committees []json.RawMessage `json:"committees"`
}

// fetchCommittee makes the extra summary call for a package whose
// title did not match any registered committee.
func (c *Client) fetchCommittee(ctx context.Context, packageID string) string {
	sumURL := fmt.Sprintf("%s/packages/%s/summary?api_key=%s",
		c.baseURL(), url.PathEscape(packageID), url.QueryEscape(c.APIKey))

	if err := c.limiter.Wait(ctx); err != nil {
		return ""
	}

	var summary packageSummary
	if err := httpx.GetJSON(ctx, c.httpClient(), sumURL, &summary, httpx.DefaultRetryConfig()); err != nil {
		slog.Warn("govinfo summary fetch failed", "package", packageID, "error", err)
		return ""
	}

	chamber := chamberFromPackageID(packageID)

	for _, raw := range summary.Committees {
		// Entries are either bare strings or {"committeeName": ...}.
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			var obj struct {
				CommitteeName string `json:"committeeName"`
			}
			if err := json.Unmarshal(raw, &obj); err != nil {
				continue
			}
			name = obj.CommitteeName
		}
		if name == "" {
			continue
		}
		if key := c.mapToCommittee(name, chamber); key != "" {
			return key
		}
	}

	if summary.Title != "" {
		return c.mapToCommittee(summary.Title, chamber)
	}
	return ""
}
