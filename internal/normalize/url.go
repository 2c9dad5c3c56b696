package normalize

import (
	"net/url"
	"slices"
	"strings"

	"github.com/pfrederiksen/wikirace-events/internal/config"
)

// SanitizeURL turns protocol-relative URLs into https and rejects anything that is not
// http(s). Returns "" on rejection.
func SanitizeURL(raw string) string {
	value := CleanText(raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "//") {
		value = "https:" + value
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return ""
	}
	return value
}

// IsGenericURL reports whether a URL points at a search or landing page rather than a
// specific event. URLs that cannot be sanitized are generic.
func (n *Normalizer) IsGenericURL(raw string) bool {
	value := SanitizeURL(raw)
	if value == "" {
		return true
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return true
	}

	domain := strings.ToLower(parsed.Host)
	path := strings.Trim(parsed.Path, "/")
	query := strings.ToLower(parsed.RawQuery)

	for _, rule := range n.genericURLs {
		if !ruleMatches(rule, domain, path) {
			continue
		}
		if rule.SpecificQuery != "" {
			return !strings.Contains(query, strings.ToLower(rule.SpecificQuery))
		}
		return true
	}

	return path == "" && query == ""
}

func ruleMatches(rule config.GenericURLRule, domain, path string) bool {
	domainOK := false
	if len(rule.Domains) > 0 && slices.Contains(rule.Domains, domain) {
		domainOK = true
	}
	if rule.DomainContains != "" && strings.Contains(domain, rule.DomainContains) {
		domainOK = true
	}
	if !domainOK {
		return false
	}
	if rule.Path != nil && path != *rule.Path {
		return false
	}
	if rule.PathContains != "" && !strings.Contains(path, rule.PathContains) {
		return false
	}
	return true
}
