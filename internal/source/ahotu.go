package source

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/logger"
	"github.com/pfrederiksen/wikirace-events/internal/normalize"
)

const AhotuURL = "https://www.ahotu.com"

// ahotuCalendars maps a calendar name to its path
var ahotuCalendars = map[string]string{
	"running":       "/calendar/running-ede0cd",
	"trail-running": "/calendar/trail-running",
	"marathon":      "/calendar/marathon",
	"triathlon":     "/calendar/triathlon",
}

var (
	ahotuDatePattern     = regexp.MustCompile(`\d{1,2}(?:-\d{1,2})?\s+[A-Za-z]+,?\s+\d{4}`)
	ahotuLocationPattern = regexp.MustCompile(`^([\p{L}][\p{L}'.\- ]*?),\s*([\p{L}][\p{L}'.\- ]*)$`)
	ahotuRatingPattern   = regexp.MustCompile(`^[\d.,]+$`)
	ahotuPromoPattern    = regexp.MustCompile(`(?i)^(map|up to \d+% off|sponsored|featured)$`)
)

// Ahotu scrapes the Ahotu race calendars
type Ahotu struct {
	BaseURL    string
	Calendars  []string
	MaxResults int // per calendar

	deps Deps
}

// NewAhotu creates the Ahotu adapter reading the running, trail and marathon calendars
func NewAhotu(deps Deps) *Ahotu {
	return &Ahotu{
		BaseURL:    AhotuURL,
		Calendars:  []string{"running", "trail-running", "marathon"},
		MaxResults: 50,
		deps:       deps,
	}
}

func (a *Ahotu) Name() string { return "Ahotu" }

// Fetch reads each calendar in turn. A failing calendar is skipped; the source fails only
// when every calendar fails.
func (a *Ahotu) Fetch(ctx context.Context) ([]event.Event, error) {
	var events []event.Event
	var errs []error

	for _, calendar := range a.Calendars {
		found, err := a.fetchCalendar(ctx, calendar)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			a.deps.log().Warn("ahotu calendar failed", logger.Fields{
				"calendar": calendar,
				"error":    err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", calendar, err))
			continue
		}
		events = append(events, found...)
	}

	if len(errs) == len(a.Calendars) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return events, nil
}

func (a *Ahotu) fetchCalendar(ctx context.Context, calendar string) ([]event.Event, error) {
	path, ok := ahotuCalendars[calendar]
	if !ok {
		return nil, fmt.Errorf("unknown calendar %q", calendar)
	}
	doc, err := a.deps.Fetcher.GetDocument(ctx, strings.TrimRight(a.BaseURL, "/")+path)
	if err != nil {
		return nil, err
	}
	return a.parseCalendar(doc, calendar), nil
}

// parseCalendar extracts one event per distinct /event/ link on a calendar page
func (a *Ahotu) parseCalendar(doc *goquery.Document, calendar string) []event.Event {
	today := a.deps.now().Format(event.DateLayout)
	hint := ""
	if strings.Contains(calendar, "trail") {
		hint = "trail"
	}

	var events []event.Event
	seen := make(map[string]bool)

	doc.Find(`a[href*="/event/"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if len(events) >= a.MaxResults {
			return false
		}

		href, _ := link.Attr("href")
		if seen[href] {
			return true
		}
		seen[href] = true

		card := parseAhotuCard(link)
		if card.name == "" || card.date == "" || card.date < today {
			return true
		}

		fullURL := href
		if !strings.HasPrefix(href, "http") && !strings.HasPrefix(href, "//") {
			fullURL = strings.TrimRight(a.BaseURL, "/") + "/" + strings.TrimLeft(href, "/")
		}
		fullURL = normalize.SanitizeURL(fullURL)
		if fullURL == "" {
			return true
		}

		distance := normalize.InferDistance(card.name, "", hint)
		events = append(events, event.Event{
			ID:              event.GenerateID(card.name, card.date, ""),
			Name:            card.name,
			Date:            card.date,
			City:            card.city,
			Country:         card.country,
			CountryCode:     a.deps.Normalizer.MapCountryCode(card.country, event.UnknownCountryCode),
			Discipline:      normalize.InferDiscipline(card.name, hint, distance),
			Distance:        distance,
			Description:     normalize.TruncateDescription(fmt.Sprintf("%s - %s, %s", card.name, card.city, card.country)),
			RegistrationURL: fullURL,
			ImageURL:        event.ImageKey(card.name),
			WebsiteURL:      event.OptionalString(fullURL),
			Source:          "Ahotu/" + calendar,
		})
		return true
	})

	return events
}

type ahotuCard struct {
	name    string
	date    string
	city    string
	country string
}

// parseAhotuCard reads the text fragments of an event card. A heading is preferred for the
// name; otherwise the first fragment that is neither date, location, rating nor promo wins.
func parseAhotuCard(link *goquery.Selection) ahotuCard {
	var card ahotuCard

	parts := textParts(link)
	for _, part := range parts {
		if card.date == "" {
			if m := ahotuDatePattern.FindString(part); m != "" {
				card.date = normalize.ParseDateToISO(m)
				continue
			}
		}
		if card.city == "" {
			if m := ahotuLocationPattern.FindStringSubmatch(part); m != nil {
				card.city = strings.TrimSpace(m[1])
				card.country = strings.TrimSpace(m[2])
				continue
			}
		}
	}

	if heading := link.Find("h1, h2, h3, h4, h5").First(); heading.Length() > 0 {
		card.name = normalize.CleanText(heading.Text())
	}
	if card.name == "" {
		for _, part := range parts {
			if len(part) < 3 || ahotuRatingPattern.MatchString(part) || ahotuPromoPattern.MatchString(part) {
				continue
			}
			if ahotuDatePattern.MatchString(part) || ahotuLocationPattern.MatchString(part) {
				continue
			}
			card.name = part
			break
		}
	}
	return card
}

// textParts returns the non-empty text nodes under sel in document order
func textParts(sel *goquery.Selection) []string {
	var parts []string
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "#text" {
			if text := normalize.CleanText(node.Text()); text != "" {
				parts = append(parts, text)
			}
			return
		}
		parts = append(parts, textParts(node)...)
	})
	return parts
}
