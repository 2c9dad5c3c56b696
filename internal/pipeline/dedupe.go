package pipeline

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pfrederiksen/wikirace-events/internal/event"
)

// URLClassifier decides whether a registration link is generic
type URLClassifier interface {
	IsGenericURL(raw string) bool
}

// dedupeKey identifies one real-world race
type dedupeKey struct {
	name        string
	date        string
	countryCode string
	discipline  string
}

func keyOf(evt event.Event) dedupeKey {
	return dedupeKey{
		name:        NormalizeName(evt.Name),
		date:        evt.Date,
		countryCode: evt.CountryCode,
		discipline:  evt.Discipline,
	}
}

// NormalizeName lowercases name and collapses every run of non-alphanumeric characters into a
// single space. "Grand-Raid  (Réunion)" becomes "grand raid réunion".
func NormalizeName(name string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			pendingSpace = false
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Score rates how useful a record is. A specific registration link outweighs everything else,
// and live records beat curated ones.
func Score(evt event.Event, urls URLClassifier) int {
	score := 0
	if evt.RegistrationURL != "" && !urls.IsGenericURL(evt.RegistrationURL) {
		score += 4
	}
	if utf8.RuneCountInString(evt.Description) > 60 {
		score++
	}
	if evt.RegistrationStatus != nil {
		score++
	}
	if evt.Price != nil {
		score++
	}
	if evt.WebsiteURL != nil {
		score++
	}
	if !evt.IsFallback {
		score += 2
	}
	return score
}

// Dedupe keeps the best-scoring record per (name, date, country, discipline) in a single pass.
// On equal scores the first record seen wins. Output follows the order in which keys were
// first seen.
func Dedupe(events []event.Event, urls URLClassifier) []event.Event {
	index := make(map[dedupeKey]int, len(events))
	out := make([]event.Event, 0, len(events))
	scores := make([]int, 0, len(events))

	for _, evt := range events {
		key := keyOf(evt)
		score := Score(evt, urls)

		if i, ok := index[key]; ok {
			if score > scores[i] {
				out[i] = evt
				scores[i] = score
			}
			continue
		}

		index[key] = len(out)
		out = append(out, evt)
		scores = append(scores, score)
	}
	return out
}
