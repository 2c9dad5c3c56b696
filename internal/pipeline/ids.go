package pipeline

import (
	"strconv"
	"strings"

	"github.com/pfrederiksen/wikirace-events/internal/event"
)

// AssignIDs makes every id in events unique, in place, walking the slice in order.
//
// The first holder of a base id keeps it and also reserves "<base>-<discipline>". A later
// holder takes "<base>-<discipline>" when that is free, otherwise the first free "<base>-<n>"
// counting up from the last number issued for that base. Events without an id get one from
// their name and date.
func AssignIDs(events []event.Event) {
	used := make(map[string]bool, len(events)*2)
	counters := make(map[string]int)

	for i := range events {
		evt := &events[i]
		base := evt.ID
		if base == "" {
			base = event.GenerateID(evt.Name, evt.Date, "")
		}
		withDiscipline := base + "-" + strings.ToLower(evt.Discipline)

		if !used[base] {
			evt.ID = base
			used[base] = true
			used[withDiscipline] = true
			counters[base] = 1
			continue
		}

		if !used[withDiscipline] {
			evt.ID = withDiscipline
			used[withDiscipline] = true
			continue
		}

		n := counters[base] + 1
		for used[base+"-"+strconv.Itoa(n)] {
			n++
		}
		evt.ID = base + "-" + strconv.Itoa(n)
		used[evt.ID] = true
		counters[base] = n
	}
}
