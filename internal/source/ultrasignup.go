package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/normalize"
)

const UltraSignupURL = "https://ultrasignup.com/service/events.svc/closestevents"

// UltraSignup reads the UltraSignup nearest-events service
type UltraSignup struct {
	BaseURL    string
	MaxResults int

	deps Deps
}

// NewUltraSignup creates the UltraSignup adapter with production defaults
func NewUltraSignup(deps Deps) *UltraSignup {
	return &UltraSignup{
		BaseURL:    UltraSignupURL,
		MaxResults: 120,
		deps:       deps,
	}
}

func (u *UltraSignup) Name() string { return "UltraSignup" }

// Fetch queries a 5000 mile radius around the center of the US, 24 months ahead
func (u *UltraSignup) Fetch(ctx context.Context) ([]event.Event, error) {
	params := url.Values{
		"virtual": {"0"},
		"open":    {"1"},
		"past":    {"0"},
		"lat":     {"39.5"},
		"lng":     {"-98.35"},
		"mi":      {"5000"},
		"mo":      {"24"},
	}

	var payload []map[string]any
	if err := u.deps.Fetcher.GetJSON(ctx, u.BaseURL, params, &payload); err != nil {
		return nil, fmt.Errorf("ultrasignup: %w", err)
	}

	now := u.deps.now()
	events := make([]event.Event, 0, len(payload))
	seen := make(map[string]bool)

	for _, raw := range payload {
		if len(events) >= u.MaxResults {
			break
		}
		evt, ok := u.parseEvent(raw, now)
		if !ok || seen[evt.ID] {
			continue
		}
		seen[evt.ID] = true
		events = append(events, evt)
	}
	return events, nil
}

func (u *UltraSignup) parseEvent(raw map[string]any, now time.Time) (event.Event, bool) {
	n := u.deps.Normalizer

	name := normalize.CleanText(pickStr(raw, "EventName"))
	if name == "" {
		return event.Event{}, false
	}

	date := normalize.ParseDateToISO(pickStr(raw, "EventDate"))
	if !normalize.IsReasonableFutureDate(date, 24, now) {
		return event.Event{}, false
	}

	city := normalize.CleanText(pickStr(raw, "City"))
	state := normalize.CleanText(pickStr(raw, "State"))
	if city == "" || strings.EqualFold(city, "virtual") || pickBool(raw, "VirtualEvent") {
		return event.Event{}, false
	}

	distances := normalize.CleanText(pickStr(raw, "Distances"))
	if n.IsNoiseEvent(name, distances, "") {
		return event.Event{}, false
	}

	distance := normalize.InferDistance(name, distances, "trail")
	discipline := normalize.InferDiscipline(name, "trail", distance)

	website := normalize.SanitizeURL(pickStr(raw, "EventWebsite"))
	regURL := website
	if regURL == "" {
		if id := pickID(raw, "EventId"); id != "" {
			regURL = "https://ultrasignup.com/register.aspx?eid=" + id
		}
	}
	if regURL == "" {
		return event.Event{}, false
	}

	locationHint := city
	displayCity := city
	if state != "" {
		locationHint = city + "-" + state
		displayCity = city + ", " + state
	}

	description := strings.Trim(fmt.Sprintf("%s in %s, %s", distances, city, state), ", ")

	return event.Event{
		ID:                 event.GenerateID(name, date, locationHint),
		Name:               name,
		Date:               date,
		City:               displayCity,
		Country:            "United States",
		CountryCode:        "US",
		Discipline:         discipline,
		Distance:           distance,
		Description:        normalize.TruncateDescription(description),
		RegistrationURL:    regURL,
		ImageURL:           event.ImageKey(name),
		RegistrationStatus: event.OptionalStatus(normalize.NormalizeRegistrationStatus("open", pickBool(raw, "Cancelled"))),
		WebsiteURL:         event.OptionalString(website),
		Source:             u.Name(),
	}, true
}
