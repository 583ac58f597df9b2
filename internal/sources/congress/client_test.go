package congress

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hearing-sync/internal/config"
	"hearing-sync/internal/domain"
)

func testRegistry() config.Registry {
	return config.Registry{
		"house.energy_commerce": {
			Name: "House Energy and Commerce",
			Tier: 1,
			Code: "hsif00",
		},
		"senate.banking": {
			Name: "Senate Banking, Housing, and Urban Affairs",
			Tier: 1,
			Code: "ssbk00",
		},
	}
}

func TestDiscoverResolvesMeetings(t *testing.T) {
	meetingDate := time.Now().AddDate(0, 0, -2).Format("2006-01-02")

	var srvURL string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/committee-meeting/119/house") && !strings.Contains(r.URL.Path, "115538"):
			fmt.Fprintf(w, `{"committeeMeetings": [
				{"eventId": "115538", "url": "%s/committee-meeting/119/house/115538?format=json"}
			], "pagination": {}}`, srvURL)
		case strings.Contains(r.URL.Path, "115538"):
			if !strings.Contains(r.URL.RawQuery, "api_key=TEST_KEY") {
				t.Errorf("Detail request missing api key: %s", r.URL.RawQuery)
			}
			fmt.Fprintf(w, `{"committeeMeeting": {
				"eventId": "115538",
				"meetingStatus": "Scheduled",
				"title": "Oversight of the Federal Communications Commission",
				"date": "%sT15:00:00Z",
				"committees": [{"systemCode": "hsif16"}],
				"witnesses": [
					{"name": "Jane Doe", "position": "Chair", "organization": "FCC"},
					{}
				]
			}}`, meetingDate)
		case strings.HasPrefix(r.URL.Path, "/committee-meeting/119/senate"):
			fmt.Fprint(w, `{"committeeMeetings": [], "pagination": {}}`)
		default:
			t.Errorf("Unexpected request path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	cfg := config.Config{CongressAPIKey: "TEST_KEY", Congress: 119}
	c := New(cfg, testRegistry())
	c.BaseURL = srv.URL
	c.HTTPClient = srv.Client()

	hearings, err := c.Discover(context.Background(), 7)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(hearings) != 1 {
		t.Fatalf("Expected 1 hearing, got %d", len(hearings))
	}

	h := hearings[0]
	if h.CommitteeKey != "house.energy_commerce" {
		t.Errorf("Expected subcommittee hsif16 to map to parent house.energy_commerce, got %s", h.CommitteeKey)
	}
	if h.CommitteeName != "House Energy and Commerce" {
		t.Errorf("Unexpected committee name %s", h.CommitteeName)
	}
	if h.Date != meetingDate {
		t.Errorf("Expected date %s, got %s", meetingDate, h.Date)
	}
	if h.Sources.CongressEventID != "115538" {
		t.Errorf("Expected event id 115538, got %q", h.Sources.CongressEventID)
	}
	if h.Authority != domain.AuthorityCongressAPI {
		t.Errorf("Expected congress API authority, got %d", h.Authority)
	}

	raw, ok := h.Sources.Extra["witnesses"]
	if !ok {
		t.Fatal("Expected witnesses in sources extra")
	}
	if !strings.Contains(string(raw), "Jane Doe") {
		t.Errorf("Expected witness name in extra, got %s", raw)
	}
	if strings.Contains(string(raw), "{}") {
		t.Errorf("Expected empty witness entries to be dropped, got %s", raw)
	}
}

func TestDiscoverSkipsCanceledAndUnmapped(t *testing.T) {
	meetingDate := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	var srvURL string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/committee-meeting/119/house") && !strings.Contains(r.URL.Path, "/house/"):
			fmt.Fprintf(w, `{"committeeMeetings": [
				{"eventId": "1", "url": "%s/committee-meeting/119/house/1"},
				{"eventId": "2", "url": "%s/committee-meeting/119/house/2"}
			], "pagination": {}}`, srvURL, srvURL)
		case strings.HasSuffix(r.URL.Path, "/house/1"):
			fmt.Fprintf(w, `{"committeeMeeting": {
				"eventId": "1", "meetingStatus": "Canceled",
				"title": "Canceled Hearing", "date": "%sT10:00:00Z",
				"committees": [{"systemCode": "hsif00"}]
			}}`, meetingDate)
		case strings.HasSuffix(r.URL.Path, "/house/2"):
			fmt.Fprintf(w, `{"committeeMeeting": {
				"eventId": "2", "meetingStatus": "Scheduled",
				"title": "Hearing for an Untracked Committee", "date": "%sT10:00:00Z",
				"committees": [{"systemCode": "zzzz99"}]
			}}`, meetingDate)
		case strings.HasPrefix(r.URL.Path, "/committee-meeting/119/senate"):
			fmt.Fprint(w, `{"committeeMeetings": [], "pagination": {}}`)
		default:
			t.Errorf("Unexpected request path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	cfg := config.Config{CongressAPIKey: "TEST_KEY", Congress: 119}
	c := New(cfg, testRegistry())
	c.BaseURL = srv.URL
	c.HTTPClient = srv.Client()

	hearings, err := c.Discover(context.Background(), 7)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(hearings) != 0 {
		t.Errorf("Expected canceled and unmapped meetings to be skipped, got %d hearings", len(hearings))
	}
}

func TestDiscoverWithoutCodes(t *testing.T) {
	c := New(config.Config{Congress: 119}, config.Registry{
		"house.rules": {Name: "House Rules", Tier: 3},
	})

	hearings, err := c.Discover(context.Background(), 7)
	if err != nil {
		t.Errorf("Expected no error for empty code index, got %v", err)
	}
	if hearings != nil {
		t.Errorf("Expected nil hearings without committee codes, got %v", hearings)
	}
}

func TestAuthorize(t *testing.T) {
	c := &Client{APIKey: "K"}

	cases := []struct {
		in       string
		expected string
	}{
		{"https://api.congress.gov/v3/committee-meeting/119/house/1", "https://api.congress.gov/v3/committee-meeting/119/house/1?api_key=K&format=json"},
		{"https://api.congress.gov/v3/committee-meeting/119/house/1?format=json", "https://api.congress.gov/v3/committee-meeting/119/house/1?format=json&api_key=K"},
		{"https://api.congress.gov/v3/x?api_key=K&format=json", "https://api.congress.gov/v3/x?api_key=K&format=json"},
	}
	for _, tc := range cases {
		if got := c.authorize(tc.in); got != tc.expected {
			t.Errorf("authorize(%q) = %q, want %q", tc.in, got, tc.expected)
		}
	}
}

func TestMapCommittee(t *testing.T) {
	c := New(config.Config{Congress: 119}, testRegistry())

	type comm = struct {
		SystemCode string `json:"systemCode"`
	}

	// Exact match
	if got := c.mapCommittee([]comm{{SystemCode: "ssbk00"}}); got != "senate.banking" {
		t.Errorf("Expected senate.banking, got %q", got)
	}
	// Subcommittee falls back to parent
	if got := c.mapCommittee([]comm{{SystemCode: "hsif16"}}); got != "house.energy_commerce" {
		t.Errorf("Expected house.energy_commerce, got %q", got)
	}
	// Unknown code
	if got := c.mapCommittee([]comm{{SystemCode: "nope99"}}); got != "" {
		t.Errorf("Expected empty key for unknown code, got %q", got)
	}
}
