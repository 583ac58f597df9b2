// Package congress polls the congress.gov committee-meeting API, the
// highest-authority discovery source: structured metadata, meeting
// status, and witness lists.
package congress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hearing-sync/internal/config"
	"hearing-sync/internal/domain"
	"hearing-sync/internal/httpx"
)

const defaultBaseURL = "https://api.congress.gov/v3"

const pageSize = 250

// Client polls congress.gov committee meetings for both chambers.
type Client struct {
	BaseURL  string
	APIKey   string
	Congress int

	HTTPClient *http.Client
	limiter    *httpx.RateLimiter

	registry  config.Registry
	codeToKey map[string]string // systemCode -> committee_key
}

// New builds a congress.gov client over the shared committee registry.
func New(cfg config.Config, reg config.Registry) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		APIKey:     cfg.CongressAPIKey,
		Congress:   cfg.Congress,
		HTTPClient: httpx.NewClient(30 * time.Second),
		limiter:    httpx.NewRateLimiter(500 * time.Millisecond),
		registry:   reg,
		codeToKey:  reg.CodeIndex(),
	}
}

func (c *Client) Name() string  { return "congress_api" }
func (c *Client) Scope() string { return "all" }

type meetingList struct {
	CommitteeMeetings []struct {
		EventID string `json:"eventId"`
		URL     string `json:"url"`
	} `json:"committeeMeetings"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"pagination"`
}

type meetingDetail struct {
	CommitteeMeeting *meetingBody `json:"committeeMeeting"`
	meetingBody
}

type meetingBody struct {
	EventID       string `json:"eventId"`
	MeetingStatus string `json:"meetingStatus"`
	Title         string `json:"title"`
	Date          string `json:"date"`
	Committees    []struct {
		SystemCode string `json:"systemCode"`
	} `json:"committees"`
	Witnesses []witness `json:"witnesses"`
}

type witness struct {
	Name         string `json:"name,omitempty"`
	Position     string `json:"position,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Discover pages through committee meetings for house and senate,
// skipping canceled/postponed entries and meetings whose committee is
// not in the registry.
func (c *Client) Discover(ctx context.Context, days int) ([]domain.Hearing, error) {
	if len(c.codeToKey) == 0 {
		slog.Warn("no committee codes configured, skipping congress.gov API")
		return nil, nil
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	fromDT := cutoff.UTC().Format("2006-01-02T00:00:00Z")

	var hearings []domain.Hearing

	for _, chamber := range []string{"house", "senate"} {
		offset := 0
		for {
			listURL := fmt.Sprintf(
				"%s/committee-meeting/%d/%s?fromDateTime=%s&limit=%d&offset=%d&format=json&api_key=%s",
				c.baseURL(), c.Congress, chamber, fromDT, pageSize, offset, url.QueryEscape(c.APIKey),
			)

			if err := c.limiter.Wait(ctx); err != nil {
				return hearings, err
			}

			var list meetingList
			if err := httpx.GetJSON(ctx, c.httpClient(), listURL, &list, httpx.DefaultRetryConfig()); err != nil {
				return hearings, fmt.Errorf("congress: list %s meetings: %w", chamber, err)
			}
			if len(list.CommitteeMeetings) == 0 {
				break
			}

			for _, m := range list.CommitteeMeetings {
				if m.EventID == "" || m.URL == "" {
					continue
				}
				h, ok, err := c.fetchMeeting(ctx, m.URL, cutoff)
				if err != nil {
					slog.Warn("congress meeting detail failed",
						"event_id", m.EventID, "error", err)
					continue
				}
				if ok {
					hearings = append(hearings, h)
				}
			}

			if list.Pagination.Next == "" {
				break
			}
			offset += pageSize
		}
	}

	slog.Info("congress.gov API hearings discovered", "count", len(hearings))
	return hearings, nil
}

// fetchMeeting resolves one meeting detail into a Hearing. ok is false
// for meetings that should be skipped (canceled, unmapped committee,
// before cutoff).
func (c *Client) fetchMeeting(ctx context.Context, detailURL string, cutoff time.Time) (domain.Hearing, bool, error) {
	detailURL = c.authorize(detailURL)

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Hearing{}, false, err
	}

	var detail meetingDetail
	if err := httpx.GetJSON(ctx, c.httpClient(), detailURL, &detail, httpx.DefaultRetryConfig()); err != nil {
		return domain.Hearing{}, false, err
	}

	// The payload nests under "committeeMeeting" on the live API but
	// some responses put fields at the top level.
	body := detail.meetingBody
	if detail.CommitteeMeeting != nil {
		body = *detail.CommitteeMeeting
	}

	if body.MeetingStatus == "Canceled" || body.MeetingStatus == "Postponed" {
		return domain.Hearing{}, false, nil
	}
	if body.Title == "" || len(body.Date) < 10 {
		return domain.Hearing{}, false, nil
	}

	date := body.Date[:10] // "2026-02-05T15:00:00Z" -> "2026-02-05"
	meetingDate, err := time.Parse("2006-01-02", date)
	if err != nil || meetingDate.Before(cutoff) {
		return domain.Hearing{}, false, nil
	}

	committeeKey := c.mapCommittee(body.Committees)
	if committeeKey == "" {
		return domain.Hearing{}, false, nil
	}

	committeeName := committeeKey
	if meta, ok := c.registry[committeeKey]; ok {
		committeeName = meta.Name
	}

	srcs := domain.Sources{CongressEventID: body.EventID}
	if witnesses := nonEmptyWitnesses(body.Witnesses); len(witnesses) > 0 {
		raw, err := json.Marshal(witnesses)
		if err == nil {
			srcs.Extra = map[string]json.RawMessage{"witnesses": raw}
		}
	}

	return domain.Hearing{
		CommitteeKey:  committeeKey,
		CommitteeName: committeeName,
		Title:         body.Title,
		Date:          date,
		Sources:       srcs,
		Authority:     domain.AuthorityCongressAPI,
	}, true, nil
}

// mapCommittee resolves a meeting's committee list against the
// registry. A subcommittee code like "hsif16" falls back to the parent
// committee "hsif00".
func (c *Client) mapCommittee(committees []struct {
	SystemCode string `json:"systemCode"`
}) string {
	for _, comm := range committees {
		code := comm.SystemCode
		if code == "" {
			continue
		}
		if key, ok := c.codeToKey[code]; ok {
			return key
		}
		if len(code) >= 4 {
			if key, ok := c.codeToKey[code[:4]+"00"]; ok {
				return key
			}
		}
	}
	return ""
}

func nonEmptyWitnesses(ws []witness) []witness {
	var out []witness
	for _, w := range ws {
		if w.Name != "" || w.Position != "" || w.Organization != "" {
			out = append(out, w)
		}
	}
	return out
}

// authorize appends the api key and JSON format to a detail URL handed
// back by the list endpoint.
func (c *Client) authorize(detailURL string) string {
	if !strings.Contains(detailURL, "api_key=") {
		if strings.Contains(detailURL, "?") {
			detailURL += "&api_key=" + url.QueryEscape(c.APIKey)
		} else {
			detailURL += "?api_key=" + url.QueryEscape(c.APIKey)
		}
	}
	if !strings.Contains(detailURL, "format=") {
		detailURL += "&format=json"
	}
	return detailURL
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
