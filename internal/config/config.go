package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Table validation errors.
var (
	ErrNoCountries        = errors.New("countries table is empty")
	ErrEmptyCountryCode   = errors.New("country code must not be empty")
	ErrEmptyNoiseKeyword  = errors.New("noise keyword must not be empty")
	ErrRuleMissingName    = errors.New("generic url rule requires a name")
	ErrRuleMissingDomains = errors.New("generic url rule requires domains or domain_contains")
)

// GenericURLRule classifies registration links by domain, path and query.
//
// A rule matches when the host matches (Domains exactly or DomainContains as a substring) and
// the trimmed path matches (Path exactly when set, PathContains as a substring when set).
// A matching rule marks the URL generic unless SpecificQuery is set and present in the query.
type GenericURLRule struct {
	Name           string   `yaml:"name"`
	Domains        []string `yaml:"domains"`
	DomainContains string   `yaml:"domain_contains"`
	Path           *string  `yaml:"path"`
	PathContains   string   `yaml:"path_contains"`
	SpecificQuery  string   `yaml:"specific_query"`
}

// Tables holds the static lookup data used by the normalizer
type Tables struct {
	Countries     map[string]string `yaml:"countries"`
	NoiseKeywords []string          `yaml:"noise_keywords"`
	GenericURLs   []GenericURLRule  `yaml:"generic_urls"`
}

// DefaultTables returns the tables shipped with the binary
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultTables)
}

// LoadTables reads tables from a YAML file. An empty path loads the defaults.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tables: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes and validates YAML table data.
// Country keys are lowercased so lookups stay case-insensitive.
func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing tables: %w", err)
	}

	countries := make(map[string]string, len(t.Countries))
	for name, code := range t.Countries {
		countries[strings.ToLower(strings.TrimSpace(name))] = strings.ToUpper(strings.TrimSpace(code))
	}
	t.Countries = countries

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the tables for obviously broken entries
func (t *Tables) Validate() error {
	if len(t.Countries) == 0 {
		return ErrNoCountries
	}
	for name, code := range t.Countries {
		if code == "" {
			return fmt.Errorf("%w: %q", ErrEmptyCountryCode, name)
		}
	}
	for i, kw := range t.NoiseKeywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("%w at index %d", ErrEmptyNoiseKeyword, i)
		}
	}
	for i, rule := range t.GenericURLs {
		if rule.Name == "" {
			return fmt.Errorf("%w at index %d", ErrRuleMissingName, i)
		}
		if len(rule.Domains) == 0 && rule.DomainContains == "" {
			return fmt.Errorf("%w: %s", ErrRuleMissingDomains, rule.Name)
		}
	}
	return nil
}
