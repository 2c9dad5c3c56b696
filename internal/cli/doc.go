// Package cli implements the wikirace-events command line interface.
//
// The scrape command runs every source through the pipeline and writes the catalog artifacts,
// optionally with an iCalendar export and a Prometheus textfile. The validate command runs the
// quality gate against a written catalog and exits non-zero when a check fails.
package cli
