package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/wikirace-events/internal/config"
	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/logger"
	"github.com/pfrederiksen/wikirace-events/internal/normalize"
	"github.com/pfrederiksen/wikirace-events/internal/source"
)

var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func testNormalizer(t *testing.T) *normalize.Normalizer {
	t.Helper()
	tables, err := config.DefaultTables()
	require.NoError(t, err)
	return normalize.New(tables)
}

func race(name, date, discipline, url string) event.Event {
	return event.Event{
		ID:              event.GenerateID(name, date, ""),
		Name:            name,
		Date:            date,
		City:            "Lyon",
		Country:         "France",
		CountryCode:     "FR",
		Discipline:      discipline,
		Distance:        event.DistanceMarathon,
		Description:     "Road race through the old town",
		RegistrationURL: url,
		Source:          "Ahotu/running",
	}
}

type stubSource struct {
	name   string
	events []event.Event
	err    error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(ctx context.Context) ([]event.Event, error) {
	return s.events, s.err
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Grand-Raid  (Réunion)", "grand raid réunion"},
		{"  UTMB® Mont-Blanc ", "utmb mont blanc"},
		{"Berlin Marathon 2026", "berlin marathon 2026"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), tt.in)
	}
}

func TestScore(t *testing.T) {
	n := testNormalizer(t)

	curated := race("Lyon Marathon", "2026-11-01", event.Running, "https://www.google.com/search?q=lyon")
	curated.IsFallback = true
	assert.Equal(t, 0, Score(curated, n))

	live := race("Lyon Marathon", "2026-11-01", event.Running, "https://www.runinlyon.com/en/marathon")
	live.Description = "The Lyon marathon crosses both rivers and finishes on the Place Bellecour in the city centre."
	live.RegistrationStatus = event.OptionalStatus(event.StatusOpen)
	price := 65.0
	live.Price = &price
	live.WebsiteURL = event.OptionalString("https://www.runinlyon.com")
	assert.Equal(t, 10, Score(live, n))
}

func TestDedupe_SpecificURLWins(t *testing.T) {
	n := testNormalizer(t)
	generic := race("Lyon Marathon", "2026-11-01", event.Running, "https://www.google.com/search?q=lyon+marathon")
	specific := race("LYON marathon!", "2026-11-01", event.Running, "https://www.runinlyon.com/en/marathon")
	other := race("Lyon Trail", "2026-11-01", event.Trail, "https://lyon-urban-trail.fr/inscriptions")

	out := Dedupe([]event.Event{generic, other, specific}, n)

	require.Len(t, out, 2)
	assert.Equal(t, specific.RegistrationURL, out[0].RegistrationURL)
	assert.Equal(t, "Lyon Trail", out[1].Name)
}

func TestDedupe_TieKeepsFirst(t *testing.T) {
	n := testNormalizer(t)
	a := race("Lyon Marathon", "2026-11-01", event.Running, "https://a.example.org/lyon")
	b := race("Lyon Marathon", "2026-11-01", event.Running, "https://b.example.org/lyon")

	out := Dedupe([]event.Event{a, b}, n)

	require.Len(t, out, 1)
	assert.Equal(t, a.RegistrationURL, out[0].RegistrationURL)
}

func TestDedupe_KeyIncludesDisciplineAndCountry(t *testing.T) {
	n := testNormalizer(t)
	road := race("Lyon Run", "2026-11-01", event.Running, "https://a.example.org/lyon")
	trail := race("Lyon Run", "2026-11-01", event.Trail, "https://a.example.org/lyon")
	swiss := race("Lyon Run", "2026-11-01", event.Running, "https://a.example.org/lyon")
	swiss.CountryCode = "CH"

	assert.Len(t, Dedupe([]event.Event{road, trail, swiss}, n), 3)
}

func TestDedupe_Idempotent(t *testing.T) {
	n := testNormalizer(t)
	events := []event.Event{
		race("Lyon Marathon", "2026-11-01", event.Running, "https://www.google.com/search?q=lyon"),
		race("Lyon Trail", "2026-11-02", event.Trail, "https://lyon-urban-trail.fr/inscriptions"),
		race("lyon marathon", "2026-11-01", event.Running, "https://www.runinlyon.com/en/marathon"),
		race("Annecy Half", "2026-11-03", event.Running, "https://annecy.example.org"),
	}

	once := Dedupe(events, n)
	twice := Dedupe(once, n)

	assert.Equal(t, once, twice)
	assert.Empty(t, Dedupe(nil, n))
}

func TestAssignIDs_Sequence(t *testing.T) {
	events := []event.Event{
		{ID: "city-race-2026", Discipline: event.Running},
		{ID: "city-race-2026", Discipline: event.Running},
		{ID: "city-race-2026", Discipline: event.Trail},
		{ID: "city-race-2026", Discipline: event.Trail},
		{ID: "city-race-2026", Discipline: event.Running},
	}

	AssignIDs(events)

	got := make([]string, len(events))
	for i, evt := range events {
		got[i] = evt.ID
	}
	assert.Equal(t, []string{
		"city-race-2026",
		"city-race-2026-2",
		"city-race-2026-trail",
		"city-race-2026-3",
		"city-race-2026-4",
	}, got)
}

func TestAssignIDs_Unique(t *testing.T) {
	events := []event.Event{
		{ID: "x-2026", Discipline: event.Running},
		{ID: "x-2026-2", Discipline: event.Running},
		{ID: "x-2026", Discipline: event.Running},
		{ID: "x-2026", Discipline: event.Running},
		{Name: "Nameless Run", Date: "2026-12-01", Discipline: event.Running},
		{Name: "Nameless Run", Date: "2026-12-01", Discipline: event.Running},
	}

	AssignIDs(events)

	seen := make(map[string]bool)
	for _, evt := range events {
		require.NotEmpty(t, evt.ID)
		assert.False(t, seen[evt.ID], "duplicate id %s", evt.ID)
		seen[evt.ID] = true
	}
	assert.Equal(t, "x-2026-3", events[2].ID)
	assert.Equal(t, "nameless-run-2026", events[4].ID)
}

func TestPipeline_Run(t *testing.T) {
	metrics := logger.NewMetrics()
	p := New(testNormalizer(t),
		WithLogger(logger.New(logger.LevelError, io.Discard)),
		WithMetrics(metrics),
		WithClock(func() time.Time { return testNow }),
		WithPublicURL("https://example.org/events.json"),
	)

	good := stubSource{name: "Ahotu", events: []event.Event{
		race("Annecy Half", "2026-12-05", event.Running, "https://annecy.example.org/half"),
		race("Lyon Marathon", "2026-11-01", event.Running, "https://www.runinlyon.com/en/marathon"),
		race("Lyon Trail", "2026-11-20", event.Trail, "https://lyon-urban-trail.fr/inscriptions"),
		race("Old Race", "2026-01-10", event.Running, "https://old.example.org"),
		race("Search Race", "2026-11-11", event.Running, "https://www.google.com/search?q=race"),
		race("Lyon Marathon", "2026-11-01", event.Running, "https://www.google.com/search?q=lyon"),
	}}
	bad := stubSource{name: "ITRA", err: errors.New("unexpected status code from itra.run: 503")}

	catalog := p.Run(context.Background(), []source.Source{good, bad})

	assert.Equal(t, 3, catalog.TotalEvents)
	require.Len(t, catalog.Events, 3)
	assert.Equal(t, "Lyon Marathon", catalog.Events[0].Name)
	assert.Equal(t, "Annecy Half", catalog.Events[2].Name)
	assert.Equal(t, []string{"Ahotu", "ITRA"}, catalog.Sources)
	assert.Equal(t, "2026-10-17T09:00:00Z", catalog.LastUpdated)
	assert.Equal(t, "https://example.org/events.json", catalog.PublicURL)

	require.Contains(t, catalog.SourceStats, "Ahotu")
	assert.True(t, catalog.SourceStats["Ahotu"].OK)
	assert.Equal(t, 6, catalog.SourceStats["Ahotu"].Count)
	assert.Nil(t, catalog.SourceStats["Ahotu"].Error)

	require.Contains(t, catalog.SourceStats, "ITRA")
	assert.False(t, catalog.SourceStats["ITRA"].OK)
	require.NotNil(t, catalog.SourceStats["ITRA"].Error)
	assert.Contains(t, *catalog.SourceStats["ITRA"].Error, "503")

	assert.Equal(t, 3, catalog.Quality.TotalEvents)
	assert.NotEmpty(t, catalog.Quality.Sources)
	assert.Equal(t, 1, catalog.Stats.Dropped)
	assert.Equal(t, int64(1), metrics.Counter("dedupe.dropped"))
	assert.Equal(t, int64(1), metrics.Counter("filter.rejected.date"))
	assert.Equal(t, int64(1), metrics.Counter("filter.rejected.generic_url"))
}

func TestPipeline_EmptyCatalog(t *testing.T) {
	p := New(testNormalizer(t),
		WithLogger(logger.New(logger.LevelError, io.Discard)),
		WithMetrics(logger.NewMetrics()),
		WithClock(func() time.Time { return testNow }),
	)

	catalog := p.Run(context.Background(), []source.Source{stubSource{name: "RunSignup", err: errors.New("down")}})

	assert.Equal(t, 0, catalog.TotalEvents)
	assert.NotNil(t, catalog.Events)
	assert.Equal(t, 1.0, catalog.Quality.FallbackRatio)
}
