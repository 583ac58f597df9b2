package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Committee describes one tracked committee as declared in committees.yaml.
// The registry key (e.g. "senate.banking") is the canonical committee_key
// used everywhere downstream; the part before the dot is the chamber.
type Committee struct {
	Name        string `yaml:"name"`
	Tier        int    `yaml:"tier"`
	Code        string `yaml:"code"` // congress.gov system code, e.g. "ssbk00"
	YouTube     string `yaml:"youtube,omitempty"`
	HearingsURL string `yaml:"hearings_url,omitempty"`
}

// Registry maps committee_key to its declaration.
type Registry map[string]Committee

// LoadRegistry reads and validates the committee registry. Any invalid
// entry is a startup error; a run must never proceed with a partial
// committee list.
func LoadRegistry(path string) (Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read registry: %w", err)
	}
	var reg Registry
	if err := yaml.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("config: parse registry %s: %w", path, err)
	}
	if len(reg) == 0 {
		return nil, fmt.Errorf("config: registry %s declares no committees", path)
	}
	for key, c := range reg {
		if c.Name == "" {
			return nil, fmt.Errorf("config: committee %q has no name", key)
		}
		if c.Tier < 1 {
			return nil, fmt.Errorf("config: committee %q has invalid tier %d", key, c.Tier)
		}
	}
	return reg, nil
}

// Filter returns the keys of committees at or below maxTier, so callers
// can restrict a run to the highest-priority committees.
func (r Registry) Filter(maxTier int) []string {
	var keys []string
	for key, c := range r {
		if c.Tier <= maxTier {
			keys = append(keys, key)
		}
	}
	return keys
}

// CodeIndex inverts the registry by congress.gov system code. Committees
// without a code are omitted.
func (r Registry) CodeIndex() map[string]string {
	idx := make(map[string]string)
	for key, c := range r {
		if c.Code != "" {
			idx[c.Code] = key
		}
	}
	return idx
}
