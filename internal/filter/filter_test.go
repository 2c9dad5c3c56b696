package filter

import (
	"testing"
	"time"

	"github.com/pfrederiksen/wikirace-events/internal/config"
	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/normalize"
)

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newTestPolicy(t *testing.T) *Policy {
	t.Helper()
	tables, err := config.DefaultTables()
	if err != nil {
		t.Fatalf("DefaultTables() error = %v", err)
	}
	return NewPolicy(normalize.New(tables), func() time.Time { return now })
}

func race(name, date, url string) event.Event {
	return event.Event{
		Name:            name,
		Date:            date,
		Distance:        event.DistanceMarathon,
		Description:     "A road race",
		RegistrationURL: url,
	}
}

func TestPolicy_Check(t *testing.T) {
	p := newTestPolicy(t)

	tests := []struct {
		name string
		evt  event.Event
		want Reason
	}{
		{
			name: "accepted",
			evt:  race("Lisbon Marathon", "2026-10-18", "https://www.maratonalisboa.pt/en"),
			want: "",
		},
		{
			name: "yesterday is still accepted",
			evt:  race("Lisbon Marathon", "2026-10-16", "https://www.maratonalisboa.pt/en"),
			want: "",
		},
		{
			name: "past date",
			evt:  race("Old Race", "2026-10-15", "https://www.oldrace.org/register"),
			want: ReasonDate,
		},
		{
			name: "too far ahead",
			evt:  race("Far Race", "2029-01-01", "https://www.farrace.org/register"),
			want: ReasonDate,
		},
		{
			name: "invalid date",
			evt:  race("Broken", "2026-02-30", "https://www.broken.org/register"),
			want: ReasonDate,
		},
		{
			name: "missing url",
			evt:  race("No Link Run", "2026-11-01", ""),
			want: ReasonMissingURL,
		},
		{
			name: "search page",
			evt:  race("Boston Marathon", "2027-04-19", "https://www.google.com/search?q=Boston+Marathon"),
			want: ReasonGenericURL,
		},
		{
			name: "bare register page",
			evt:  race("Bear 100", "2027-09-24", "https://ultrasignup.com/register.aspx"),
			want: ReasonGenericURL,
		},
		{
			name: "register page with event id",
			evt:  race("Bear 100", "2027-09-24", "https://ultrasignup.com/register.aspx?eid=123"),
			want: "",
		},
		{
			name: "noise",
			evt:  race("Club Membership 2027", "2026-12-01", "https://www.runclub.org/join"),
			want: ReasonNoise,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Check(tt.evt, now); got != tt.want {
				t.Errorf("Check() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPolicy_ApplySortsStablyAndCounts(t *testing.T) {
	p := newTestPolicy(t)

	input := []event.Event{
		race("C Race", "2026-12-05", "https://c.example.org/race"),
		race("A Race", "2026-11-01", "https://a.example.org/race"),
		race("B Race", "2026-12-05", "https://b.example.org/race"),
		race("Old Race", "2025-01-01", "https://old.example.org/race"),
		race("Search", "2026-11-02", "https://www.google.com/search?q=x"),
		race("Lottery Draw", "2026-11-03", "https://lottery.example.org/draw"),
		race("Nothing", "2026-11-04", ""),
	}
	original := append([]event.Event(nil), input...)

	kept, rejected := p.Apply(input)

	wantOrder := []string{"A Race", "C Race", "B Race"}
	if len(kept) != len(wantOrder) {
		t.Fatalf("Apply() kept %d events, want %d", len(kept), len(wantOrder))
	}
	for i, name := range wantOrder {
		if kept[i].Name != name {
			t.Errorf("kept[%d] = %q, want %q", i, kept[i].Name, name)
		}
	}

	for _, reason := range Reasons {
		if rejected[reason] != 1 {
			t.Errorf("rejected[%s] = %d, want 1", reason, rejected[reason])
		}
	}

	for i := range input {
		if input[i].Name != original[i].Name {
			t.Fatalf("Apply() modified its input at %d", i)
		}
	}
}

func TestPolicy_MaxMonths(t *testing.T) {
	p := newTestPolicy(t)
	p.MaxMonths = 1

	evt := race("Next Month Run", "2026-11-17", "https://nextmonth.example.org/run")
	if got := p.Check(evt, now); got != "" {
		t.Errorf("Check() = %q, want accepted within 31 days", got)
	}

	evt.Date = "2026-11-18"
	if got := p.Check(evt, now); got != ReasonDate {
		t.Errorf("Check() = %q, want %q past 31 days", got, ReasonDate)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		rejected map[Reason]int
		want     string
	}{
		{"none", map[Reason]int{}, "No rejections"},
		{"ordered", map[Reason]int{ReasonNoise: 2, ReasonDate: 3}, "date: 3 | noise: 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.rejected); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}
