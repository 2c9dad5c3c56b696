package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/wikirace-events/internal/event"
)

const ahotuRunningPage = `<html><body><main>
<a href="/event/lisbon-marathon" class="card">
  <span class="rating">4.6</span><span>Map</span>
  <h3>EDP Lisbon Marathon</h3>
  <div class="location">Lisbon, Portugal</div>
  <div class="date">18 Oct, 2026 (Sun)</div>
</a>
<a href="/event/lisbon-marathon">duplicate link</a>
<a href="https://www.ahotu.com/event/trail-des-templiers" class="card">
  <span>Up to 10% off</span>
  <div>Festival des Templiers Ultra</div>
  <div>Millau, France</div>
  <div>07-08 Nov, 2026 (Sat-Sun)</div>
</a>
<a href="/event/old-race">
  <h3>Old City 10K</h3><div>Porto, Portugal</div><div>12 Jan, 2026</div>
</a>
<a href="/event/no-date"><h3>Mystery Run</h3></a>
<a href="/about">About</a>
</main></body></html>`

func htmlServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAhotu_ParseCalendar(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ahotuRunningPage))
	require.NoError(t, err)

	a := NewAhotu(testDeps(t))
	a.BaseURL = "https://www.ahotu.com"
	events := a.parseCalendar(doc, "running")
	require.Len(t, events, 2)

	lisbon := events[0]
	assert.Equal(t, "EDP Lisbon Marathon", lisbon.Name)
	assert.Equal(t, "2026-10-18", lisbon.Date)
	assert.Equal(t, "Lisbon", lisbon.City)
	assert.Equal(t, "Portugal", lisbon.Country)
	assert.Equal(t, "PT", lisbon.CountryCode)
	assert.Equal(t, event.DistanceMarathon, lisbon.Distance)
	assert.Equal(t, event.Running, lisbon.Discipline)
	assert.Equal(t, "https://www.ahotu.com/event/lisbon-marathon", lisbon.RegistrationURL)
	assert.Equal(t, "EDP Lisbon Marathon - Lisbon, Portugal", lisbon.Description)
	assert.Equal(t, "Ahotu/running", lisbon.Source)

	templiers := events[1]
	assert.Equal(t, "Festival des Templiers Ultra", templiers.Name)
	assert.Equal(t, "2026-11-07", templiers.Date)
	assert.Equal(t, "FR", templiers.CountryCode)
	assert.Equal(t, event.Trail, templiers.Discipline)
	assert.Equal(t, event.DistanceUltraTrail, templiers.Distance)
}

func TestAhotu_FetchSkipsFailingCalendar(t *testing.T) {
	srv := htmlServer(t, map[string]string{
		"/calendar/running-ede0cd": ahotuRunningPage,
	})

	a := NewAhotu(testDeps(t))
	a.BaseURL = srv.URL
	events, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestAhotu_FetchFailsWhenEveryCalendarFails(t *testing.T) {
	srv := htmlServer(t, map[string]string{})

	a := NewAhotu(testDeps(t))
	a.BaseURL = srv.URL
	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trail-running")
}

const ahotuTriathlonPage = `<html><body>
<a href="/event/ironman-70-3-agadir"><h3>Ironman 70.3 Agadir</h3><div>Agadir, Morocco</div><div>25 Oct, 2026</div></a>
<a href="/event/lake-swim"><h3>Lake Geneva Open Water Swim</h3><div>Geneva, Switzerland</div><div>14 Nov, 2026</div></a>
<a href="/event/tri-de-nice"><h3>Nice Triathlon Sprint</h3><div>Nice, France</div><div>6 Dec, 2026</div></a>
</body></html>`

func TestTriathlon_FetchFiltersAndTopsUp(t *testing.T) {
	srv := htmlServer(t, map[string]string{
		"/calendar/triathlon": ahotuTriathlonPage,
	})

	tri := NewTriathlon(testDeps(t))
	tri.SetBaseURL(srv.URL)
	events, err := tri.Fetch(context.Background())
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(events), 2)
	agadir := events[0]
	assert.Equal(t, "Ahotu/triathlon", agadir.Source)
	assert.Equal(t, event.Triathlon, agadir.Discipline)
	assert.Equal(t, event.DistanceHalfIronman, agadir.Distance)
	assert.False(t, agadir.IsFallback)

	nice := events[1]
	assert.Equal(t, "Nice Triathlon Sprint", nice.Name)
	assert.Equal(t, event.DistanceIronman, nice.Distance)

	// 2 live results pull in the curated list
	ids := make(map[string]int)
	for _, evt := range events {
		ids[evt.ID]++
		assert.NotEqual(t, "Lake Geneva Open Water Swim", evt.Name)
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, id)
	}
	assert.Equal(t, 2+5, len(events), "the curated Agadir race shares an id with the live one")
}

func TestTriathlon_CalendarFailureFallsBackToCurated(t *testing.T) {
	srv := htmlServer(t, map[string]string{})

	tri := NewTriathlon(testDeps(t))
	tri.SetBaseURL(srv.URL)
	events, err := tri.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 6)
	for _, evt := range events {
		assert.True(t, evt.IsFallback)
	}
}
