package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/logger"
	"github.com/pfrederiksen/wikirace-events/internal/normalize"
)

const (
	RunSignupURL = "https://runsignup.com/Rest/races"

	// runSignupMinLive is the live count below which curated marathons are appended
	runSignupMinLive = 20
)

// RunSignup reads the paginated RunSignup race API
type RunSignup struct {
	BaseURL        string
	MaxPages       int
	ResultsPerPage int
	MaxResults     int

	deps Deps
}

// NewRunSignup creates the RunSignup adapter with production defaults
func NewRunSignup(deps Deps) *RunSignup {
	return &RunSignup{
		BaseURL:        RunSignupURL,
		MaxPages:       10,
		ResultsPerPage: 100,
		MaxResults:     200,
		deps:           deps,
	}
}

func (r *RunSignup) Name() string { return "RunSignup" }

// Fetch walks result pages until one comes back empty, MaxPages is reached or MaxResults
// events are collected. A failing page ends pagination; curated marathons are appended when
// fewer than 20 live events were found.
func (r *RunSignup) Fetch(ctx context.Context) ([]event.Event, error) {
	now := r.deps.now()
	today := now.Format(event.DateLayout)
	endDate := now.AddDate(0, 0, 540).Format(event.DateLayout)

	var events []event.Event
	pages := 0

	for page := 1; page <= r.MaxPages && len(events) < r.MaxResults; page++ {
		params := url.Values{
			"format":             {"json"},
			"start_date":         {today},
			"end_date":           {endDate},
			"distance_units":     {"K"},
			"results_per_page":   {strconv.Itoa(r.ResultsPerPage)},
			"page":               {strconv.Itoa(page)},
			"sort":               {"date"},
			"only_partner_races": {"F"},
			"include_waiver":     {"F"},
			"include_event_days": {"T"},
		}

		var payload map[string]any
		if err := r.deps.Fetcher.GetJSON(ctx, r.BaseURL, params, &payload); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			r.deps.log().Warn("runsignup page failed", logger.Fields{
				"page":  page,
				"error": err.Error(),
			})
			break
		}
		pages++

		races := pickList(payload, "races")
		if len(races) == 0 {
			break
		}
		for _, wrapper := range races {
			evt, ok := r.parseRace(pickMap(wrapper, "race"), today)
			if !ok {
				continue
			}
			events = append(events, evt)
			if len(events) >= r.MaxResults {
				break
			}
		}
	}

	live := len(events)
	if live < runSignupMinLive {
		curated, err := fallbackMarathons()
		if err != nil {
			return nil, err
		}
		events = append(events, curated...)
	}

	r.deps.log().Debug("runsignup fetched", logger.Fields{
		"pages":  pages,
		"live":   live,
		"events": len(events),
	})
	return events, nil
}

func (r *RunSignup) parseRace(race map[string]any, today string) (event.Event, bool) {
	n := r.deps.Normalizer

	date := normalize.ParseDateToISO(pickStr(race, "next_date"))
	if date == "" || date < today {
		return event.Event{}, false
	}

	name := normalize.CleanText(pickStr(race, "name"))
	if name == "" {
		return event.Event{}, false
	}

	address := pickMap(race, "address")
	city := normalize.CleanText(pickStr(address, "city"))
	if normalize.IsVirtualLocation(city) {
		return event.Event{}, false
	}
	state := normalize.CleanText(pickStr(address, "state"))
	country := pickStr(address, "country")
	if country == "" {
		country = "United States"
	}

	regURL := pickStr(race, "url")
	if regURL == "" {
		regURL = "https://runsignup.com/Race/" + pickID(race, "race_id")
	}
	if !strings.HasPrefix(regURL, "http") && !strings.HasPrefix(regURL, "//") {
		regURL = "https://runsignup.com" + regURL
	}
	regURL = normalize.SanitizeURL(regURL)
	if regURL == "" {
		return event.Event{}, false
	}

	var firstDistance string
	if evts := pickList(race, "events"); len(evts) > 0 {
		first := pickMap(evts[0], "event")
		firstDistance = pickStr(first, "distance")
		if firstDistance == "" {
			if d, ok := pickNum(first, "distance"); ok {
				firstDistance = strconv.FormatFloat(d, 'f', -1, 64) + "k"
			}
		}
	}
	distance := normalize.InferDistance(name, firstDistance, "")
	discipline := normalize.InferDiscipline(name, "running", distance)

	displayCity := city
	if state != "" {
		displayCity = fmt.Sprintf("%s, %s", city, state)
	}

	description := normalize.TruncateDescription(normalize.StripHTML(pickStr(race, "description")))
	if description == "" {
		description = "Running event in " + displayCity
	}

	var status event.Status
	if pickBool(race, "is_registration_open") {
		status = event.StatusOpen
	}

	return event.Event{
		ID:                 event.GenerateID(name, date, ""),
		Name:               name,
		Date:               date,
		City:               displayCity,
		Country:            country,
		CountryCode:        n.MapCountryCode(country, "US"),
		Discipline:         discipline,
		Distance:           distance,
		Description:        description,
		RegistrationURL:    regURL,
		ImageURL:           event.ImageKey(name),
		RegistrationStatus: event.OptionalStatus(status),
		WebsiteURL:         event.OptionalString(normalize.SanitizeURL(pickStr(race, "external_race_url"))),
		Source:             r.Name(),
	}, true
}
