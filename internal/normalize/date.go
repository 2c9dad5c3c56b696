package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/wikirace-events/internal/event"
)

var (
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	dayRangePattern      = regexp.MustCompile(`^(\d{1,2})-\d{1,2}\s+`)
	isoDateTimePattern   = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T`)
)

// dateLayouts is tried in order. ISO and slash forms come before month names;
// MM/DD wins over DD/MM when both would parse.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"2/1/2006",
	"2 Jan, 2006",
	"2 January, 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// ParseDateToISO converts a human date into YYYY-MM-DD.
// Returns "" if no layout matches.
//
// "15 Mar, 2026 (Sun)" and "07-08 Nov, 2026 (Sat - Sun)" become "2026-03-15" and "2026-11-07".
func ParseDateToISO(text string) string {
	raw := CleanText(text)
	if raw == "" {
		return ""
	}

	if m := isoDateTimePattern.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}
	raw = strings.TrimSpace(parentheticalPattern.ReplaceAllString(raw, ""))
	raw = dayRangePattern.ReplaceAllString(raw, "$1 ")
	raw = CleanText(strings.ReplaceAll(raw, ",", ", "))
	raw = strings.ReplaceAll(raw, " ,", ",")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(event.DateLayout)
		}
	}
	return ""
}

// IsReasonableFutureDate reports whether yesterday <= date <= today + maxMonths*31 days,
// with today taken from now in UTC. Empty or invalid dates are never reasonable.
func IsReasonableFutureDate(date string, maxMonths int, now time.Time) bool {
	d := event.ParseDate(date)
	if d.IsZero() {
		return false
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	lower := today.AddDate(0, 0, -1)
	upper := today.AddDate(0, 0, maxMonths*31)
	return !d.Before(lower) && !d.After(upper)
}
