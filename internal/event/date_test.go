package event

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		wantYear  int
		wantMonth time.Month
		wantDay   int
		wantZero  bool
	}{
		{
			name:      "Canonical date",
			date:      "2026-03-15",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   15,
		},
		{
			name:      "Leap day",
			date:      "2028-02-29",
			wantYear:  2028,
			wantMonth: time.February,
			wantDay:   29,
		},
		{
			name:     "Not a calendar date",
			date:     "2026-02-30",
			wantZero: true,
		},
		{
			name:     "Empty string",
			date:     "",
			wantZero: true,
		},
		{
			name:     "Human format",
			date:     "Mar 13 2026",
			wantZero: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.date)

			if tt.wantZero {
				if !got.IsZero() {
					t.Errorf("ParseDate(%q) = %v, want zero time", tt.date, got)
				}
				return
			}

			if got.Year() != tt.wantYear {
				t.Errorf("ParseDate(%q).Year() = %d, want %d", tt.date, got.Year(), tt.wantYear)
			}
			if got.Month() != tt.wantMonth {
				t.Errorf("ParseDate(%q).Month() = %v, want %v", tt.date, got.Month(), tt.wantMonth)
			}
			if got.Day() != tt.wantDay {
				t.Errorf("ParseDate(%q).Day() = %d, want %d", tt.date, got.Day(), tt.wantDay)
			}
		})
	}
}

func TestEvent_IsUpcoming(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		want bool
	}{
		{name: "Later today", date: "2026-10-17", want: true},
		{name: "Future date", date: "2027-01-01", want: true},
		{name: "Yesterday", date: "2026-10-16", want: false},
		{name: "Unparseable date", date: "invalid", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := &Event{Date: tt.date}
			if got := evt.IsUpcoming(now); got != tt.want {
				t.Errorf("Event.IsUpcoming() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvent_IsWithinDays(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		days int
		want bool
	}{
		{name: "Within 30 days - tomorrow", date: "2026-10-18", days: 30, want: true},
		{name: "Boundary day", date: "2026-11-16", days: 30, want: true},
		{name: "Beyond 30 days", date: "2026-11-21", days: 30, want: false},
		{name: "Feature disabled (days=0)", date: "2027-11-21", days: 0, want: true},
		{name: "Past date", date: "2026-10-01", days: 30, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := &Event{Date: tt.date}
			if got := evt.IsWithinDays(now, tt.days); got != tt.want {
				t.Errorf("Event.IsWithinDays(%d) = %v, want %v", tt.days, got, tt.want)
			}
		})
	}
}
