// Package calendar exports a catalog as an iCalendar feed.
package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/wikirace-events/internal/event"
)

// UIDDomain is appended to every event id to form its UID
const UIDDomain = "wikirace-events"

const icsDateLayout = "20060102"

// GenerateICS builds one calendar holding an all-day VEVENT per event.
// Events whose date cannot be parsed are skipped.
func GenerateICS(events []event.Event, now time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//WikiRace//wikirace-events//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString("X-WR-CALNAME:WikiRace Events\r\n")

	stamp := formatICSTime(now)
	for i := range events {
		writeEvent(&ics, &events[i], stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.Event, stamp string) {
	start := event.ParseDate(evt.Date)
	if start.IsZero() {
		return
	}

	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@%s\r\n", evt.ID, UIDDomain))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))

	// all-day: DTEND is exclusive
	ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", start.Format(icsDateLayout)))
	ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", start.AddDate(0, 0, 1).Format(icsDateLayout)))

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(evt.Name)))

	description := evt.Description
	if evt.Distance != "" {
		description = fmt.Sprintf("%s - %s\n\n%s", evt.Discipline, evt.Distance, description)
	}
	if evt.RegistrationURL != "" {
		description = fmt.Sprintf("%s\n\nRegister at: %s", strings.TrimSpace(description), evt.RegistrationURL)
	}
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(strings.TrimSpace(description))))

	location := evt.City
	if evt.Country != "" {
		location = strings.Trim(fmt.Sprintf("%s, %s", evt.City, evt.Country), ", ")
	}
	if location != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(location)))
	}

	if evt.RegistrationURL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", evt.RegistrationURL))
	}
	ics.WriteString(fmt.Sprintf("CATEGORIES:%s\r\n", escapeICS(evt.Discipline)))

	status := "CONFIRMED"
	if evt.RegistrationStatus != nil && *evt.RegistrationStatus == event.StatusClosed {
		status = "TENTATIVE"
	}
	ics.WriteString(fmt.Sprintf("STATUS:%s\r\n", status))
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// WriteFile writes the calendar for events to path
func WriteFile(path string, events []event.Event, now time.Time) error {
	if err := os.WriteFile(path, []byte(GenerateICS(events, now)), 0644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
