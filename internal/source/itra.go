package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/logger"
	"github.com/pfrederiksen/wikirace-events/internal/normalize"
)

const (
	ITRAURL = "https://itra.run/api/races/search"

	itraMinLive = 5
)

// ITRA reads the ITRA race search API
type ITRA struct {
	BaseURL    string
	MaxResults int

	deps Deps
}

// NewITRA creates the ITRA adapter with production defaults
func NewITRA(deps Deps) *ITRA {
	return &ITRA{
		BaseURL:    ITRAURL,
		MaxResults: 100,
		deps:       deps,
	}
}

func (s *ITRA) Name() string { return "ITRA" }

// Fetch queries one page of upcoming races. When the API fails or returns fewer than 5
// races the curated trail list is appended.
func (s *ITRA) Fetch(ctx context.Context) ([]event.Event, error) {
	now := s.deps.now()
	params := url.Values{
		"startDate": {now.Format(event.DateLayout)},
		"endDate":   {now.AddDate(0, 24, 0).Format(event.DateLayout)},
		"pageSize":  {strconv.Itoa(s.MaxResults)},
		"page":      {"1"},
	}

	var events []event.Event
	var payload map[string]any
	if err := s.deps.Fetcher.GetJSON(ctx, s.BaseURL, params, &payload); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		s.deps.log().Warn("itra search failed, using curated races", logger.Fields{"error": err.Error()})
	} else {
		for _, race := range pickList(payload, "races", "items") {
			if len(events) >= s.MaxResults {
				break
			}
			if evt, ok := s.parseRace(race); ok {
				events = append(events, evt)
			}
		}
	}

	if len(events) < itraMinLive {
		curated, err := fallbackTrail()
		if err != nil {
			return nil, err
		}
		events = append(events, curated...)
	}
	return events, nil
}

func (s *ITRA) parseRace(race map[string]any) (event.Event, bool) {
	name := normalize.CleanText(pickStr(race, "name"))
	date := normalize.ParseDateToISO(pickStr(race, "date", "startDate"))
	if name == "" || date == "" {
		return event.Event{}, false
	}

	city := normalize.CleanText(pickStr(race, "city", "location"))
	country := normalize.CleanText(pickStr(race, "country"))

	km, _ := pickNum(race, "distance")
	var elevation int
	if v, ok := pickNum(race, "elevationGain", "elevation"); ok {
		elevation = int(v)
	}

	regURL := normalize.SanitizeURL(pickStr(race, "url"))
	if regURL == "" {
		regURL = "https://itra.run/race/" + pickID(race, "id")
	}

	return event.Event{
		ID:              event.GenerateID(name, date, ""),
		Name:            name,
		Date:            date,
		City:            city,
		Country:         country,
		CountryCode:     s.deps.Normalizer.MapCountryCode(country, event.UnknownCountryCode),
		Discipline:      event.Trail,
		Distance:        trailDistanceCategory(km),
		ElevationGain:   event.OptionalInt(elevation),
		Description:     fmt.Sprintf("Trail running event in %s, %s", city, country),
		RegistrationURL: regURL,
		ImageURL:        event.ImageKey(name),
		WebsiteURL:      event.OptionalString(normalize.SanitizeURL(pickStr(race, "website"))),
		Source:          s.Name(),
	}, true
}

// trailDistanceCategory buckets a race length in km. Unknown lengths are ultras.
func trailDistanceCategory(km float64) string {
	switch {
	case km >= 80:
		return event.DistanceUltraTrail
	case km >= 40:
		return event.DistanceMarathon
	case km > 0:
		return event.DistanceHalf
	default:
		return event.DistanceUltraTrail
	}
}
