// Package storage provides JSON persistence for catalog artifacts.
//
// A scrape writes two files into the output directory: events.json, the full catalog consumed
// by the site, and events_summary.json, which carries the source stats and quality snapshot
// without the events. The validate command reads events.json back with LoadCatalog and writes
// quality_report.json with SaveReport.
package storage
