package normalize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxDescriptionLength is the rune limit for event descriptions
const MaxDescriptionLength = 240

var whitespacePattern = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs and trims
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// StripHTML returns the visible text of an HTML fragment
func StripHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CleanText(fragment)
	}
	// Block elements run together in Text(), so pad them first
	doc.Find("p, br, div, li, h1, h2, h3, h4").Each(func(i int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return CleanText(doc.Text())
}

// TruncateDescription cleans s and cuts it to MaxDescriptionLength runes
func TruncateDescription(s string) string {
	s = CleanText(s)
	runes := []rune(s)
	if len(runes) <= MaxDescriptionLength {
		return s
	}
	return strings.TrimSpace(string(runes[:MaxDescriptionLength]))
}

// IsVirtualLocation reports whether a city value is a placeholder for a virtual race
func IsVirtualLocation(city string) bool {
	switch strings.ToLower(CleanText(city)) {
	case "", "virtual", "online", "anywhere":
		return true
	}
	return false
}
