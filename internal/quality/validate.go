package quality

import (
	"math"
	"time"

	"github.com/pfrederiksen/wikirace-events/internal/event"
)

// Check names, in report order
const (
	CheckMinEvents          = "min_events"
	CheckDuplicateIDs       = "duplicate_ids"
	CheckInvalidDates       = "invalid_dates"
	CheckGenericURLRatio    = "generic_url_ratio"
	CheckFallbackRatio      = "fallback_ratio"
	CheckMinDisciplines     = "min_disciplines"
	CheckMinTriathlonEvents = "min_triathlon_events"
	CheckFutureHorizon      = "future_horizon"
	CheckSourceDiversity    = "source_diversity"
)

// CheckNames lists every check in report order
var CheckNames = []string{
	CheckMinEvents,
	CheckDuplicateIDs,
	CheckInvalidDates,
	CheckGenericURLRatio,
	CheckFallbackRatio,
	CheckMinDisciplines,
	CheckMinTriathlonEvents,
	CheckFutureHorizon,
	CheckSourceDiversity,
}

// Thresholds configure the quality gate
type Thresholds struct {
	MinEvents              int
	MinDisciplines         int
	MinTriathlonEvents     int
	MaxFallbackRatio       float64
	MaxGenericURLRatio     float64
	MinFutureHorizonDays   int
	MinContributingSources int
}

// DefaultThresholds returns the thresholds used by scheduled runs
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinEvents:              80,
		MinDisciplines:         3,
		MinTriathlonEvents:     5,
		MaxFallbackRatio:       0.35,
		MaxGenericURLRatio:     0.08,
		MinFutureHorizonDays:   120,
		MinContributingSources: 2,
	}
}

// URLClassifier decides whether a registration link is generic
type URLClassifier interface {
	IsGenericURL(raw string) bool
}

// Metrics are recomputed from the artifact, independently of the snapshot stored in it
type Metrics struct {
	TotalEvents         int            `json:"totalEvents"`
	DuplicateIDs        int            `json:"duplicateIds"`
	InvalidDates        int            `json:"invalidDates"`
	GenericURLCount     int            `json:"genericUrlCount"`
	GenericURLRatio     float64        `json:"genericUrlRatio"`
	FallbackEvents      int            `json:"fallbackEvents"`
	FallbackRatio       float64        `json:"fallbackRatio"`
	TriathlonEvents     int            `json:"triathlonEvents"`
	Disciplines         map[string]int `json:"disciplines"`
	SourceCounts        map[string]int `json:"sourceCounts"`
	MaxDate             *string        `json:"maxDate"`
	MinRequiredDate     string         `json:"minRequiredDate"`
	ContributingSources int            `json:"contributingSources"`
}

// Report is the validation outcome
type Report struct {
	GeneratedAt string          `json:"generatedAt"`
	Checks      map[string]bool `json:"checks"`
	Metrics     Metrics         `json:"metrics"`
}

// Passed reports whether every check passed
func (r Report) Passed() bool {
	return len(r.Failed()) == 0
}

// Failed returns the names of failing checks in report order
func (r Report) Failed() []string {
	var failed []string
	for _, name := range CheckNames {
		if passed, ok := r.Checks[name]; ok && !passed {
			failed = append(failed, name)
		}
	}
	return failed
}

// Validate recomputes catalog metrics and evaluates every check against th.
// The future horizon is compared by calendar day in UTC.
func Validate(events []event.Event, th Thresholds, urls URLClassifier, now time.Time) Report {
	now = now.UTC()
	m := Metrics{
		TotalEvents:  len(events),
		Disciplines:  make(map[string]int),
		SourceCounts: make(map[string]int),
	}

	ids := make(map[string]int, len(events))
	var maxDate time.Time
	for _, evt := range events {
		ids[evt.ID]++

		if d := event.ParseDate(evt.Date); d.IsZero() {
			m.InvalidDates++
		} else if d.After(maxDate) {
			maxDate = d
		}

		if urls.IsGenericURL(evt.RegistrationURL) {
			m.GenericURLCount++
		}
		if evt.IsFallback {
			m.FallbackEvents++
		}
		if evt.Discipline == event.Triathlon {
			m.TriathlonEvents++
		}

		discipline := evt.Discipline
		if discipline == "" {
			discipline = "Unknown"
		}
		m.Disciplines[discipline]++
		m.SourceCounts[sourceName(evt.Source)]++
	}

	for _, n := range ids {
		m.DuplicateIDs += n - 1
	}
	for _, n := range m.SourceCounts {
		if n >= 2 {
			m.ContributingSources++
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	minRequired := today.AddDate(0, 0, th.MinFutureHorizonDays)
	m.MinRequiredDate = minRequired.Format(event.DateLayout)
	if !maxDate.IsZero() {
		s := maxDate.Format(event.DateLayout)
		m.MaxDate = &s
	}

	genericRatio := ratio(m.GenericURLCount, m.TotalEvents)
	fallbackRatio := ratio(m.FallbackEvents, m.TotalEvents)
	m.GenericURLRatio = round4(genericRatio)
	m.FallbackRatio = round4(fallbackRatio)

	checks := map[string]bool{
		CheckMinEvents:          m.TotalEvents >= th.MinEvents,
		CheckDuplicateIDs:       m.DuplicateIDs == 0,
		CheckInvalidDates:       m.InvalidDates == 0,
		CheckGenericURLRatio:    genericRatio <= th.MaxGenericURLRatio,
		CheckFallbackRatio:      fallbackRatio <= th.MaxFallbackRatio,
		CheckMinDisciplines:     len(m.Disciplines) >= th.MinDisciplines,
		CheckMinTriathlonEvents: m.TriathlonEvents >= th.MinTriathlonEvents,
		CheckFutureHorizon:      !maxDate.IsZero() && !maxDate.Before(minRequired),
		CheckSourceDiversity:    m.ContributingSources >= th.MinContributingSources,
	}

	return Report{
		GeneratedAt: now.Format(time.RFC3339),
		Checks:      checks,
		Metrics:     m,
	}
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
