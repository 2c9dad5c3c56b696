package normalize

import (
	"regexp"
	"strings"

	"github.com/pfrederiksen/wikirace-events/internal/event"
)

var halfMarathon21k = regexp.MustCompile(`\b21k\b`)

// distanceRule maps keyword triggers to a distance category
type distanceRule struct {
	distance string
	matches  func(text string) bool
}

func containsAny(tokens ...string) func(string) bool {
	return func(text string) bool {
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				return true
			}
		}
		return false
	}
}

// distanceRules is evaluated in order and the first match wins.
// 70.3 must beat 5k/10k, "half marathon" must beat "marathon", and so on.
var distanceRules = []distanceRule{
	{event.DistanceHalfIronman, containsAny("70.3", "half ironman")},
	{event.Distance5K, containsAny("5k", "5 km")},
	{event.Distance10K, containsAny("10k", "10 km")},
	{event.DistanceHalf, func(text string) bool {
		return strings.Contains(text, "half marathon") || halfMarathon21k.MatchString(text)
	}},
	{event.DistanceMarathon, containsAny("marathon")},
	{event.DistanceUltraTrail, containsAny("ultra", "50k", "100k", "50 mile", "100 mile", "trail")},
	{event.DistanceIronman, containsAny("ironman", "triathlon", "duathlon")},
	{event.Distance10K, containsAny("running")},
}

// InferDistance picks a distance category from the event name, any auxiliary distance text
// and the source's discipline hint. Defaults to Marathon.
func InferDistance(name, aux, disciplineHint string) string {
	text := strings.ToLower(CleanText(name + " " + aux + " " + disciplineHint))
	for _, rule := range distanceRules {
		if rule.matches(text) {
			return rule.distance
		}
	}
	return event.DistanceMarathon
}

var (
	triathlonKeywords = containsAny("triathlon", "ironman", "duathlon")
	trailKeywords     = containsAny("trail", "ultra", "mountain")
)

// InferDiscipline classifies an event. Triathlon keywords beat trail keywords.
func InferDiscipline(name, hint, distance string) string {
	text := strings.ToLower(CleanText(name + " " + hint + " " + distance))
	switch {
	case triathlonKeywords(text):
		return event.Triathlon
	case trailKeywords(text):
		return event.Trail
	default:
		return event.Running
	}
}
