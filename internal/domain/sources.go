package domain

import "encoding/json"

// Sources holds the per-source locator fields attached to a hearing. The named
// fields are the recognized key set; anything else a source reports rides in
// Extra and round-trips opaquely through the ledger.
type Sources struct {
	YouTubeURL       string   `json:"youtube_url,omitempty"`
	YouTubeID        string   `json:"youtube_id,omitempty"`
	WebsiteURL       string   `json:"website_url,omitempty"`
	CongressURL      string   `json:"congress_url,omitempty"`
	CSPANURL         string   `json:"cspan_url,omitempty"`
	ISVPComm         string   `json:"isvp_comm,omitempty"`
	GovInfoPackageID string   `json:"govinfo_package_id,omitempty"`
	TestimonyPDFURLs []string `json:"testimony_pdf_urls,omitempty"`
	CongressEventID  string   `json:"congress_api_event_id,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// recognizedSourceKeys are the JSON keys mapped to named fields above.
var recognizedSourceKeys = map[string]bool{
	"youtube_url":           true,
	"youtube_id":            true,
	"website_url":           true,
	"congress_url":          true,
	"cspan_url":             true,
	"isvp_comm":             true,
	"govinfo_package_id":    true,
	"testimony_pdf_urls":    true,
	"congress_api_event_id": true,
}

// MarshalJSON flattens Extra into the same object as the named fields, so
// the persisted sources_json looks like one flat map regardless of whether a
// key was recognized.
func (s Sources) MarshalJSON() ([]byte, error) {
	type alias Sources
	b, err := json.Marshal(alias(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return b, nil
	}

	var flat map[string]json.RawMessage
	if err := json.Unmarshal(b, &flat); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if recognizedSourceKeys[k] {
			continue
		}
		flat[k] = v
	}
	return json.Marshal(flat)
}

// UnmarshalJSON routes recognized keys to the named fields and everything else
// into Extra.
func (s *Sources) UnmarshalJSON(data []byte) error {
	type alias Sources
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	for k := range flat {
		if recognizedSourceKeys[k] {
			delete(flat, k)
		}
	}
	if len(flat) > 0 {
		a.Extra = flat
	}

	*s = Sources(a)
	return nil
}

// Merge overlays other onto s: every field set in other overwrites the
// corresponding field in s, and Extra keys are shallow-merged with other's
// values winning on collision. Fields other leaves empty are kept, so a merge
// never drops a source.
func (s *Sources) Merge(other Sources) {
	if other.YouTubeURL != "" {
		s.YouTubeURL = other.YouTubeURL
	}
	if other.YouTubeID != "" {
		s.YouTubeID = other.YouTubeID
	}
	if other.WebsiteURL != "" {
		s.WebsiteURL = other.WebsiteURL
	}
	if other.CongressURL != "" {
		s.CongressURL = other.CongressURL
	}
	if other.CSPANURL != "" {
		s.CSPANURL = other.CSPANURL
	}
	if other.ISVPComm != "" {
		s.ISVPComm = other.ISVPComm
	}
	if other.GovInfoPackageID != "" {
		s.GovInfoPackageID = other.GovInfoPackageID
	}
	if len(other.TestimonyPDFURLs) > 0 {
		s.TestimonyPDFURLs = other.TestimonyPDFURLs
	}
	if other.CongressEventID != "" {
		s.CongressEventID = other.CongressEventID
	}
	for k, v := range other.Extra {
		if s.Extra == nil {
			s.Extra = make(map[string]json.RawMessage)
		}
		s.Extra[k] = v
	}
}

// IsZero reports whether no source field is set.
func (s Sources) IsZero() bool {
	return s.YouTubeURL == "" && s.YouTubeID == "" && s.WebsiteURL == "" &&
		s.CongressURL == "" && s.CSPANURL == "" && s.ISVPComm == "" &&
		s.GovInfoPackageID == "" && len(s.TestimonyPDFURLs) == 0 &&
		s.CongressEventID == "" && len(s.Extra) == 0
}
