package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/wikirace-events/internal/event"
)

var (
	numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	eurPattern    = regexp.MustCompile(`\bEUR\b`)
	usdPattern    = regexp.MustCompile(`\bUSD\b`)
	gbpPattern    = regexp.MustCompile(`\bGBP\b`)
	madPattern    = regexp.MustCompile(`\bMAD\b`)
)

// ParsePrice extracts an amount and a currency code from free text such as "€45,50" or
// "120 USD". Currency is detected before the number. The pair is returned jointly: when
// either the number or the currency is missing the result is (nil, "").
func ParsePrice(text string) (*float64, string) {
	text = CleanText(text)
	if text == "" {
		return nil, ""
	}

	currency := detectCurrency(text)
	match := numberPattern.FindString(text)
	if match == "" || currency == "" {
		return nil, ""
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return nil, ""
	}
	return &amount, currency
}

func detectCurrency(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case eurPattern.MatchString(upper) || strings.Contains(text, "€"):
		return "EUR"
	case usdPattern.MatchString(upper) || strings.Contains(text, "$"):
		return "USD"
	case gbpPattern.MatchString(upper) || strings.Contains(text, "£"):
		return "GBP"
	case madPattern.MatchString(upper):
		return "MAD"
	}
	return ""
}

// NormalizeRegistrationStatus maps raw status text to a Status.
// A cancelled event is always Closed; unmatched text yields "" (unknown).
func NormalizeRegistrationStatus(raw string, cancelled bool) event.Status {
	if cancelled {
		return event.StatusClosed
	}
	token := strings.ToLower(CleanText(raw))
	if token == "" {
		return ""
	}
	switch {
	case strings.Contains(token, "sold out") || strings.Contains(token, "soldout"):
		return event.StatusSoldOut
	case strings.Contains(token, "open") || strings.Contains(token, "active"):
		return event.StatusOpen
	case strings.Contains(token, "closed") || strings.Contains(token, "ended") || strings.Contains(token, "cancelled"):
		return event.StatusClosed
	}
	return ""
}
