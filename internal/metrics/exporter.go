// Package metrics exports run results in the Prometheus text format.
//
// A run is a batch job, so nothing is served: Exporter fills a private registry from a built
// catalog and WriteTextfile drops it where a node_exporter textfile collector can pick it up.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pfrederiksen/wikirace-events/internal/filter"
	"github.com/pfrederiksen/wikirace-events/internal/pipeline"
)

const namespace = "wikirace"

// Exporter holds the gauges describing one run
type Exporter struct {
	registry *prometheus.Registry

	sourceUp      *prometheus.GaugeVec
	sourceEvents  *prometheus.GaugeVec
	catalogEvents prometheus.Gauge
	fallbackRatio prometheus.Gauge
	rejected      *prometheus.GaugeVec
	dedupeDropped prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewExporter registers every gauge on a fresh registry
func NewExporter() *Exporter {
	e := &Exporter{registry: prometheus.NewRegistry()}

	e.sourceUp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_up",
		Help:      "1 if the source returned without error on the last run",
	}, []string{"source"})
	e.sourceEvents = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_events",
		Help:      "Events returned by the source before dedupe and filtering",
	}, []string{"source"})
	e.catalogEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_events",
		Help:      "Events in the published catalog",
	})
	e.fallbackRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_fallback_ratio",
		Help:      "Share of catalog events taken from curated fallback lists",
	})
	e.rejected = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "filter_rejected",
		Help:      "Events dropped by the final filter, by reason",
	}, []string{"reason"})
	e.dedupeDropped = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dedupe_dropped",
		Help:      "Records collapsed into a better duplicate",
	})
	e.lastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the run that produced these values",
	})

	e.registry.MustRegister(
		e.sourceUp, e.sourceEvents, e.catalogEvents, e.fallbackRatio,
		e.rejected, e.dedupeDropped, e.lastRun,
	)
	return e
}

// Registry exposes the underlying registry
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe sets every gauge from catalog. Rejection reasons that did not occur are reported as 0.
func (e *Exporter) Observe(catalog *pipeline.Catalog, unixTime int64) {
	for name, stat := range catalog.SourceStats {
		up := 0.0
		if stat.OK {
			up = 1
		}
		e.sourceUp.WithLabelValues(name).Set(up)
		e.sourceEvents.WithLabelValues(name).Set(float64(stat.Count))
	}

	e.catalogEvents.Set(float64(catalog.TotalEvents))
	e.fallbackRatio.Set(catalog.Quality.FallbackRatio)

	for _, reason := range filter.Reasons {
		e.rejected.WithLabelValues(string(reason)).Set(float64(catalog.Stats.Rejected[reason]))
	}
	e.dedupeDropped.Set(float64(catalog.Stats.Dropped))
	e.lastRun.Set(float64(unixTime))
}

// WriteTextfile writes the registry to path atomically
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
