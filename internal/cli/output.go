package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/filter"
	"github.com/pfrederiksen/wikirace-events/internal/pipeline"
	"github.com/pfrederiksen/wikirace-events/internal/quality"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

const nameColumnWidth = 42

// ScrapeResult contains data to be output after a scrape
type ScrapeResult struct {
	RunID       string                         `json:"run_id"`
	GeneratedAt string                         `json:"generated_at"`
	CatalogPath string                         `json:"catalog_path"`
	PublicURL   string                         `json:"public_url"`
	TotalEvents int                            `json:"total_events"`
	Candidates  int                            `json:"candidates"`
	Dropped     int                            `json:"dedupe_dropped"`
	Rejected    map[filter.Reason]int          `json:"rejected"`
	Sources     []string                       `json:"sources"`
	SourceStats map[string]pipeline.SourceStat `json:"source_stats"`
	Quality     quality.Quality                `json:"quality"`
	Sample      []event.Event                  `json:"sample"`
}

// NewScrapeResult summarizes catalog. The sample is a sorted copy; the catalog is not modified.
func NewScrapeResult(catalog *pipeline.Catalog, runID, path string, order SortOrder, sample int) *ScrapeResult {
	events := append([]event.Event(nil), catalog.Events...)
	sortEvents(events, order)
	if sample >= 0 && len(events) > sample {
		events = events[:sample]
	}
	if events == nil {
		events = []event.Event{}
	}

	return &ScrapeResult{
		RunID:       runID,
		GeneratedAt: catalog.LastUpdated,
		CatalogPath: path,
		PublicURL:   catalog.PublicURL,
		TotalEvents: catalog.TotalEvents,
		Candidates:  catalog.Stats.Candidates,
		Dropped:     catalog.Stats.Dropped,
		Rejected:    catalog.Stats.Rejected,
		Sources:     catalog.Sources,
		SourceStats: catalog.SourceStats,
		Quality:     catalog.Quality,
		Sample:      events,
	}
}

// WriteScrapeOutput writes the result in the specified format
func WriteScrapeOutput(w io.Writer, result *ScrapeResult, format OutputFormat, now time.Time) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeScrapeText(w, result, now)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteValidateOutput writes a validation report in the specified format
func WriteValidateOutput(w io.Writer, report quality.Report, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeValidateText(w, report)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeScrapeText outputs results as human-readable text
func writeScrapeText(w io.Writer, result *ScrapeResult, now time.Time) error {
	fmt.Fprintf(w, "Sources:\n")
	for _, name := range result.Sources {
		stat := result.SourceStats[name]
		status := "ok"
		if !stat.OK {
			status = "FAILED"
			if stat.Error != nil {
				status += ": " + *stat.Error
			}
		}
		fmt.Fprintf(w, "  %s %6s  %s\n", runewidth.FillRight(name, 12), humanize.Comma(int64(stat.Count)), status)
	}

	fmt.Fprintf(w, "\nCandidates: %s, merged duplicates: %s, rejected: %s\n",
		humanize.Comma(int64(result.Candidates)),
		humanize.Comma(int64(result.Dropped)),
		filter.Summary(result.Rejected))
	fmt.Fprintf(w, "Total: %s events, %.0f%% fallback\n",
		humanize.Comma(int64(result.TotalEvents)), result.Quality.FallbackRatio*100)

	if len(result.Quality.Disciplines) > 0 {
		names := make([]string, 0, len(result.Quality.Disciplines))
		for name := range result.Quality.Disciplines {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s %d", name, result.Quality.Disciplines[name]))
		}
		fmt.Fprintf(w, "Disciplines: %s\n", strings.Join(parts, ", "))
	}

	if last := lastDate(result.Sample); !last.IsZero() {
		fmt.Fprintf(w, "Furthest listed race: %s\n", humanize.RelTime(last, now, "ago", "from now"))
	}

	if len(result.Sample) > 0 {
		fmt.Fprintln(w)
		for _, evt := range result.Sample {
			fmt.Fprintf(w, "  %s  %s  %s\n", evt.Date, formatName(evt.Name), location(evt))
		}
	}

	if result.CatalogPath != "" {
		fmt.Fprintf(w, "\nSaved to: %s\n", result.CatalogPath)
	}
	if result.PublicURL != "" {
		fmt.Fprintf(w, "Public URL: %s\n", result.PublicURL)
	}
	return nil
}

func writeValidateText(w io.Writer, report quality.Report) error {
	m := report.Metrics
	maxDate := "none"
	if m.MaxDate != nil {
		maxDate = *m.MaxDate
	}

	fmt.Fprintf(w, "Events:            %s\n", humanize.Comma(int64(m.TotalEvents)))
	fmt.Fprintf(w, "Duplicate ids:     %d\n", m.DuplicateIDs)
	fmt.Fprintf(w, "Invalid dates:     %d\n", m.InvalidDates)
	fmt.Fprintf(w, "Generic URLs:      %d (%.4f)\n", m.GenericURLCount, m.GenericURLRatio)
	fmt.Fprintf(w, "Fallback events:   %d (%.4f)\n", m.FallbackEvents, m.FallbackRatio)
	fmt.Fprintf(w, "Triathlon events:  %d\n", m.TriathlonEvents)
	fmt.Fprintf(w, "Disciplines:       %d\n", len(m.Disciplines))
	fmt.Fprintf(w, "Sources:           %d contributing\n", m.ContributingSources)
	fmt.Fprintf(w, "Latest event:      %s (need %s)\n", maxDate, m.MinRequiredDate)

	failed := report.Failed()
	if len(failed) == 0 {
		fmt.Fprintln(w, "\nAll quality checks passed.")
		return nil
	}
	fmt.Fprintf(w, "\nFailed checks (%d):\n", len(failed))
	for _, name := range failed {
		fmt.Fprintf(w, "  - %s\n", name)
	}
	return nil
}

// formatName pads or truncates name to a fixed display width
func formatName(name string) string {
	return runewidth.FillRight(runewidth.Truncate(name, nameColumnWidth, "…"), nameColumnWidth)
}

func location(evt event.Event) string {
	return strings.Trim(fmt.Sprintf("%s, %s", evt.City, evt.CountryCode), ", ")
}

func lastDate(events []event.Event) time.Time {
	var last time.Time
	for i := range events {
		if t := events[i].Time(); t.After(last) {
			last = t
		}
	}
	return last
}
