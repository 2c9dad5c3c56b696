package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/wikirace-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate    SortOrder = "date"
	SortByName    SortOrder = "name"
	SortByCountry SortOrder = "country"
)

func parseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortByDate, SortByName, SortByCountry:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'date', 'name' or 'country')", s)
	}
}

// sortEvents sorts a slice of events based on the specified sort order
func sortEvents(events []event.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(&events[i], &events[j])
		})
	case SortByCountry:
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].CountryCode != events[j].CountryCode {
				return events[i].CountryCode < events[j].CountryCode
			}
			// If countries are equal, sort by date
			return compareByDate(&events[i], &events[j])
		})
	case SortByName:
		sort.SliceStable(events, func(i, j int) bool {
			a, b := strings.ToLower(events[i].Name), strings.ToLower(events[j].Name)
			if a != b {
				return a < b
			}
			return compareByDate(&events[i], &events[j])
		})
	}
}

// compareByDate compares two events by their date
// Returns true if event i should come before event j
func compareByDate(i, j *event.Event) bool {
	dateI := i.Time()
	dateJ := j.Time()

	if !dateI.IsZero() && !dateJ.IsZero() && !dateI.Equal(dateJ) {
		return dateI.Before(dateJ)
	}

	// If only one date is valid, put the valid one first
	if !dateI.IsZero() && dateJ.IsZero() {
		return true
	}
	if dateI.IsZero() && !dateJ.IsZero() {
		return false
	}

	return strings.ToLower(i.Name) < strings.ToLower(j.Name)
}
