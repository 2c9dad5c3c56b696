// Package filter applies the catalog acceptance policy to deduplicated events.
//
// A Policy rejects, in order:
//   - Dates outside yesterday .. today + MaxMonths*31 days
//   - Missing or generic registration links (search pages, bare landing pages)
//   - Noise listings (memberships, training camps, lotteries) matched on name, distance and
//     description
//
// Survivors are ordered by date. The sort is stable, so events on the same day keep the order
// they arrived in.
//
// Example usage:
//
//	p := filter.NewPolicy(normalizer, time.Now)
//	kept, rejected := p.Apply(events)
//	// rejected[filter.ReasonGenericURL] is the number of events dropped for a generic link
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/normalize"
)

// DefaultMaxMonths is how far ahead an event may be scheduled
const DefaultMaxMonths = 24

// Reason names why an event was rejected
type Reason string

const (
	ReasonDate       Reason = "date"
	ReasonMissingURL Reason = "missing_url"
	ReasonGenericURL Reason = "generic_url"
	ReasonNoise      Reason = "noise"
)

// Reasons lists every rejection reason in evaluation order
var Reasons = []Reason{ReasonDate, ReasonMissingURL, ReasonGenericURL, ReasonNoise}

// Classifier is the subset of the normalizer the policy depends on
type Classifier interface {
	IsGenericURL(raw string) bool
	IsNoiseEvent(name, distances, description string) bool
}

// Policy decides which events make it into the catalog
type Policy struct {
	MaxMonths int

	classifier Classifier
	now        func() time.Time
}

// NewPolicy creates a policy with DefaultMaxMonths. now is called once per Apply.
func NewPolicy(classifier Classifier, now func() time.Time) *Policy {
	if now == nil {
		now = time.Now
	}
	return &Policy{
		MaxMonths:  DefaultMaxMonths,
		classifier: classifier,
		now:        now,
	}
}

// Check returns the reason evt is rejected, or "" if it is accepted
func (p *Policy) Check(evt event.Event, now time.Time) Reason {
	if !normalize.IsReasonableFutureDate(evt.Date, p.MaxMonths, now) {
		return ReasonDate
	}
	if strings.TrimSpace(evt.RegistrationURL) == "" {
		return ReasonMissingURL
	}
	if p.classifier.IsGenericURL(evt.RegistrationURL) {
		return ReasonGenericURL
	}
	if p.classifier.IsNoiseEvent(evt.Name, evt.Distance, evt.Description) {
		return ReasonNoise
	}
	return ""
}

// Apply returns the accepted events sorted by date, and the number of rejections per reason.
// The input slice is not modified.
func (p *Policy) Apply(events []event.Event) ([]event.Event, map[Reason]int) {
	now := p.now()
	rejected := make(map[Reason]int)

	kept := make([]event.Event, 0, len(events))
	for _, evt := range events {
		if reason := p.Check(evt, now); reason != "" {
			rejected[reason]++
			continue
		}
		kept = append(kept, evt)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date < kept[j].Date
	})

	return kept, rejected
}

// Summary returns a human-readable rejection breakdown.
// Format: "date: 3 | generic_url: 12"
func Summary(rejected map[Reason]int) string {
	var parts []string
	for _, reason := range Reasons {
		if n := rejected[reason]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", reason, n))
		}
	}
	if len(parts) == 0 {
		return "No rejections"
	}
	return strings.Join(parts, " | ")
}
