package source

import (
	_ "embed"
	"fmt"
	"net/url"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/normalize"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type curatedRace struct {
	Name            string `yaml:"name"`
	Date            string `yaml:"date"`
	City            string `yaml:"city"`
	Country         string `yaml:"country"`
	Code            string `yaml:"code"`
	Description     string `yaml:"description"`
	ElevationGain   int    `yaml:"elevation_gain"`
	RegistrationURL string `yaml:"registration_url"`
	Distance        string `yaml:"distance"`
}

type curatedCatalog struct {
	Marathons []curatedRace `yaml:"marathons"`
	Trail     []curatedRace `yaml:"trail"`
	Triathlon []curatedRace `yaml:"triathlon"`
}

var (
	curatedOnce sync.Once
	curated     curatedCatalog
	curatedErr  error
)

func loadCurated() (curatedCatalog, error) {
	curatedOnce.Do(func() {
		if err := yaml.Unmarshal(fallbackYAML, &curated); err != nil {
			curatedErr = fmt.Errorf("parsing curated fallback: %w", err)
		}
	})
	return curated, curatedErr
}

// fallbackMarathons returns major road marathons. Their registration links are search pages,
// so the final filter drops them unless a live source supplies a better record.
func fallbackMarathons() ([]event.Event, error) {
	cat, err := loadCurated()
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(cat.Marathons))
	for _, r := range cat.Marathons {
		query := url.Values{"q": {r.Name + " registration official"}}
		events = append(events, event.Event{
			ID:              event.GenerateID(r.Name, r.Date, ""),
			Name:            r.Name,
			Date:            r.Date,
			City:            r.City,
			Country:         r.Country,
			CountryCode:     r.Code,
			Discipline:      event.Running,
			Distance:        event.DistanceMarathon,
			Description:     r.Description,
			RegistrationURL: "https://www.google.com/search?" + query.Encode(),
			ImageURL:        event.ImageKey(r.Name),
			Source:          "RunSignup/curated",
			IsFallback:      true,
		})
	}
	return events, nil
}

// fallbackTrail returns major trail races pointing at the ITRA landing page
func fallbackTrail() ([]event.Event, error) {
	cat, err := loadCurated()
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(cat.Trail))
	for _, r := range cat.Trail {
		events = append(events, event.Event{
			ID:              event.GenerateID(r.Name, r.Date, ""),
			Name:            r.Name,
			Date:            r.Date,
			City:            r.City,
			Country:         r.Country,
			CountryCode:     r.Code,
			Discipline:      event.Trail,
			Distance:        event.DistanceUltraTrail,
			ElevationGain:   event.OptionalInt(r.ElevationGain),
			Description:     fmt.Sprintf("Major trail event in %s, part of international circuits.", r.City),
			RegistrationURL: "https://itra.run",
			ImageURL:        event.ImageKey(r.Name),
			Source:          "ITRA/curated",
			IsFallback:      true,
		})
	}
	return events, nil
}

// fallbackTriathlons returns world-major triathlons with their official pages
func fallbackTriathlons(n *normalize.Normalizer) ([]event.Event, error) {
	cat, err := loadCurated()
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(cat.Triathlon))
	for _, r := range cat.Triathlon {
		events = append(events, event.Event{
			ID:                 event.GenerateID(r.Name, r.Date, r.City),
			Name:               r.Name,
			Date:               r.Date,
			City:               r.City,
			Country:            r.Country,
			CountryCode:        n.MapCountryCode(r.Country, event.UnknownCountryCode),
			Discipline:         event.Triathlon,
			Distance:           r.Distance,
			Description:        fmt.Sprintf("Major triathlon event in %s.", r.City),
			RegistrationURL:    r.RegistrationURL,
			ImageURL:           event.ImageKey(r.Name),
			RegistrationStatus: event.OptionalStatus(normalize.NormalizeRegistrationStatus("open", false)),
			WebsiteURL:         event.OptionalString(r.RegistrationURL),
			Source:             "Triathlon/curated",
			IsFallback:         true,
		})
	}
	return events, nil
}
