package normalize

import (
	"regexp"
	"strings"

	"github.com/pfrederiksen/wikirace-events/internal/config"
)

// Normalizer holds the compiled lookup tables. It is immutable after New and safe to share.
type Normalizer struct {
	countries   map[string]string
	noise       *regexp.Regexp
	genericURLs []config.GenericURLRule
}

// New compiles the tables into a Normalizer
func New(tables *config.Tables) *Normalizer {
	n := &Normalizer{
		countries:   make(map[string]string, len(tables.Countries)),
		genericURLs: append([]config.GenericURLRule(nil), tables.GenericURLs...),
	}
	for name, code := range tables.Countries {
		n.countries[strings.ToLower(name)] = code
	}

	if len(tables.NoiseKeywords) > 0 {
		quoted := make([]string, 0, len(tables.NoiseKeywords))
		for _, kw := range tables.NoiseKeywords {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(CleanText(kw))))
		}
		n.noise = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return n
}

// MapCountryCode looks up the code for a country name, case-insensitively.
// Unknown names yield def.
func (n *Normalizer) MapCountryCode(country, def string) string {
	if code, ok := n.countries[strings.ToLower(CleanText(country))]; ok {
		return code
	}
	return def
}

// IsNoiseEvent reports whether a listing describes a non-race activity.
// Empty text counts as noise.
func (n *Normalizer) IsNoiseEvent(name, distances, description string) bool {
	haystack := strings.ToLower(CleanText(name + " " + distances + " " + description))
	if haystack == "" {
		return true
	}
	if n.noise == nil {
		return false
	}
	return n.noise.MatchString(haystack)
}
