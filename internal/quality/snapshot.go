package quality

import (
	"sort"

	"github.com/pfrederiksen/wikirace-events/internal/event"
)

// TopCountriesLimit is the number of countries kept in a snapshot
const TopCountriesLimit = 10

// CountryCount is the number of events in one country
type CountryCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// Quality summarizes a final event set
type Quality struct {
	TotalEvents   int            `json:"totalEvents"`
	Disciplines   map[string]int `json:"disciplines"`
	Sources       map[string]int `json:"sources"`
	TopCountries  []CountryCount `json:"topCountries"`
	FallbackCount int            `json:"fallbackCount"`
	FallbackRatio float64        `json:"fallbackRatio"`
}

// Snapshot aggregates events. An empty set has a fallback ratio of 1.
func Snapshot(events []event.Event) Quality {
	q := Quality{
		TotalEvents:  len(events),
		Disciplines:  make(map[string]int),
		Sources:      make(map[string]int),
		TopCountries: []CountryCount{},
	}

	countries := make(map[string]int)
	for _, evt := range events {
		q.Disciplines[evt.Discipline]++
		q.Sources[sourceName(evt.Source)]++
		countries[evt.CountryCode]++
		if evt.IsFallback {
			q.FallbackCount++
		}
	}

	for code, n := range countries {
		q.TopCountries = append(q.TopCountries, CountryCount{Code: code, Count: n})
	}
	sort.Slice(q.TopCountries, func(i, j int) bool {
		a, b := q.TopCountries[i], q.TopCountries[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Code < b.Code
	})
	if len(q.TopCountries) > TopCountriesLimit {
		q.TopCountries = q.TopCountries[:TopCountriesLimit]
	}

	q.FallbackRatio = ratio(q.FallbackCount, q.TotalEvents)
	return q
}

func sourceName(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// ratio returns part/total, or 1 when total is zero
func ratio(part, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(part) / float64(total)
}
