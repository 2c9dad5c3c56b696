package event

import "time"

// DateLayout is the canonical catalog date format
const DateLayout = "2006-01-02"

// ParseDate parses a canonical YYYY-MM-DD date.
// Returns time.Time{} (zero value) if the text is not a real calendar date.
func ParseDate(date string) time.Time {
	if date == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsValidDate reports whether date is a real YYYY-MM-DD calendar date
func IsValidDate(date string) bool {
	return !ParseDate(date).IsZero()
}

// Time returns the event date as a UTC midnight time, zero if invalid
func (e *Event) Time() time.Time {
	return ParseDate(e.Date)
}

// IsUpcoming checks if an event is on or after the day of now.
// Returns false if the date cannot be parsed.
func (e *Event) IsUpcoming(now time.Time) bool {
	parsed := e.Time()
	if parsed.IsZero() {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !parsed.Before(today)
}

// IsWithinDays checks if an event falls within N days from now.
// Returns true if days <= 0 (feature disabled).
func (e *Event) IsWithinDays(now time.Time, days int) bool {
	if days <= 0 {
		return true
	}
	if !e.IsUpcoming(now) {
		return false
	}
	cutoff := now.UTC().AddDate(0, 0, days)
	return !e.Time().After(cutoff)
}
