package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/logger"
)

const triathlonMinLive = 8

var triathlonPattern = regexp.MustCompile(`(?i)(triathlon|duathlon|aquathlon|ironman|70\.3|\btri\b|triatlon)`)

// Triathlon reads the Ahotu triathlon calendar and tops it up with curated world majors
type Triathlon struct {
	MaxResults int

	calendar *Ahotu
	deps     Deps
}

// NewTriathlon creates the triathlon adapter
func NewTriathlon(deps Deps) *Triathlon {
	calendar := NewAhotu(deps)
	calendar.Calendars = []string{"triathlon"}
	return &Triathlon{
		MaxResults: 50,
		calendar:   calendar,
		deps:       deps,
	}
}

func (t *Triathlon) Name() string { return "Triathlon" }

// SetBaseURL points the underlying calendar at another host
func (t *Triathlon) SetBaseURL(base string) {
	t.calendar.BaseURL = base
}

// Fetch keeps calendar entries that look like triathlons. With fewer than 8 of them the curated
// list is appended, skipping ids already present. A calendar failure is not fatal here.
func (t *Triathlon) Fetch(ctx context.Context) ([]event.Event, error) {
	t.calendar.MaxResults = t.MaxResults

	found, err := t.calendar.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		t.deps.log().Warn("triathlon calendar failed, using curated races", logger.Fields{"error": err.Error()})
	}

	events := make([]event.Event, 0, len(found))
	for _, evt := range found {
		if !isProbableTriathlon(evt) {
			continue
		}
		evt.Discipline = event.Triathlon
		if evt.Distance != event.DistanceHalfIronman && evt.Distance != event.DistanceIronman {
			if strings.Contains(evt.Name, "70.3") {
				evt.Distance = event.DistanceHalfIronman
			} else {
				evt.Distance = event.DistanceIronman
			}
		}
		evt.Source = "Ahotu/triathlon"
		events = append(events, evt)
	}

	if len(events) >= triathlonMinLive {
		if len(events) > t.MaxResults {
			events = events[:t.MaxResults]
		}
		return events, nil
	}

	curated, err := fallbackTriathlons(t.deps.Normalizer)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(events))
	for _, evt := range events {
		seen[evt.ID] = true
	}
	for _, evt := range curated {
		if len(events) >= t.MaxResults {
			break
		}
		if seen[evt.ID] {
			continue
		}
		seen[evt.ID] = true
		events = append(events, evt)
	}
	return events, nil
}

func isProbableTriathlon(evt event.Event) bool {
	haystack := evt.Name + " " + evt.RegistrationURL
	if evt.WebsiteURL != nil {
		haystack += " " + *evt.WebsiteURL
	}
	return triathlonPattern.MatchString(haystack)
}
