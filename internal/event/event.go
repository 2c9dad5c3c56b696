package event

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Discipline values
const (
	Running   = "Running"
	Trail     = "Trail"
	Triathlon = "Triathlon"
)

// Distance categories
const (
	Distance5K          = "5km"
	Distance10K         = "10km"
	DistanceHalf        = "Half Marathon"
	DistanceMarathon    = "Marathon"
	DistanceUltraTrail  = "Ultra Trail"
	DistanceHalfIronman = "Half Ironman"
	DistanceIronman     = "Ironman"
)

// UnknownCountryCode is used when a country name has no known code
const UnknownCountryCode = "XX"

// Status is a registration status
type Status string

const (
	StatusOpen    Status = "Open"
	StatusClosed  Status = "Closed"
	StatusSoldOut Status = "Sold Out"
)

// Event represents a single race in the catalog.
// Optional fields are pointers so they encode as null instead of being omitted.
type Event struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Date               string   `json:"date"` // YYYY-MM-DD
	City               string   `json:"city"`
	Country            string   `json:"country"`
	CountryCode        string   `json:"countryCode"`
	Discipline         string   `json:"discipline"`
	Distance           string   `json:"distance"`
	ElevationGain      *int     `json:"elevationGain"`
	Description        string   `json:"description"`
	RegistrationURL    string   `json:"registrationUrl"`
	ImageURL           string   `json:"imageUrl"`
	Price              *float64 `json:"price"`
	Currency           *string  `json:"currency"`
	RegistrationStatus *Status  `json:"registrationStatus"`
	GPXURL             *string  `json:"gpxUrl"`
	WebsiteURL         *string  `json:"websiteUrl"`
	Source             string   `json:"source"`
	IsFallback         bool     `json:"isFallback"`
}

// OptionalString returns nil for an empty string
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// OptionalStatus returns nil for an unknown status
func OptionalStatus(s Status) *Status {
	if s == "" {
		return nil
	}
	return &s
}

// OptionalInt returns nil for values <= 0
func OptionalInt(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// Slugify lowercases s, folds accents and joins alphanumeric runs with dashes.
// "Grand Raid de la Réunion" becomes "grand-raid-de-la-reunion".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ReplaceAll(strings.ToLower(folded), "'", "")

	var b strings.Builder
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// GenerateID creates the base id for an event from its name, date and an optional
// location hint. The location slug is skipped when the name already contains it.
func GenerateID(name, date, locationHint string) string {
	parts := make([]string, 0, 3)
	nameSlug := Slugify(name)
	if nameSlug != "" {
		parts = append(parts, nameSlug)
	}
	if loc := Slugify(locationHint); loc != "" && !strings.Contains(nameSlug, loc) {
		parts = append(parts, loc)
	}
	if len(date) >= 4 {
		parts = append(parts, date[:4])
	}
	return strings.Join(parts, "-")
}

// ImageKey derives the image key the catalog consumers resolve locally
func ImageKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
