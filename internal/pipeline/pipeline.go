package pipeline

import (
	"context"
	"time"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/filter"
	"github.com/pfrederiksen/wikirace-events/internal/logger"
	"github.com/pfrederiksen/wikirace-events/internal/quality"
	"github.com/pfrederiksen/wikirace-events/internal/source"
)

// SourceStat is the per-source line of a catalog. Error is null when the source succeeded.
type SourceStat struct {
	OK    bool    `json:"ok"`
	Count int     `json:"count"`
	Error *string `json:"error"`
}

// Catalog is the published artifact
type Catalog struct {
	LastUpdated string                `json:"lastUpdated"`
	TotalEvents int                   `json:"totalEvents"`
	PublicURL   string                `json:"publicUrl"`
	Sources     []string              `json:"sources"`
	SourceStats map[string]SourceStat `json:"sourceStats"`
	Quality     quality.Quality       `json:"quality"`
	Events      []event.Event         `json:"events"`

	Stats RunStats `json:"-"`
}

// RunStats describes what happened during a run. It is not part of the artifact.
type RunStats struct {
	Candidates int
	Dropped    int
	Rejected   map[filter.Reason]int
	Results    []source.Result
}

// Classifier is what the pipeline needs from the normalizer
type Classifier interface {
	filter.Classifier
}

// Pipeline runs sources and turns their output into a Catalog
type Pipeline struct {
	PublicURL string

	runner     *source.Runner
	policy     *filter.Policy
	classifier Classifier
	log        *logger.Logger
	metrics    *logger.Metrics
	now        func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMetrics sets the metrics tracker
func WithMetrics(m *logger.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock sets the clock used for filtering and timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithPublicURL sets the URL the catalog is published at
func WithPublicURL(u string) Option {
	return func(p *Pipeline) { p.PublicURL = u }
}

// New creates a pipeline using classifier for URL and noise decisions
func New(classifier Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: classifier,
		log:        logger.Default(),
		metrics:    logger.DefaultMetrics(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.runner = source.NewRunner(p.log, p.metrics)
	p.policy = filter.NewPolicy(classifier, p.now)
	return p
}

// Run executes every source in order and builds the catalog. A failing source only shows up
// in SourceStats; Run itself does not fail.
func (p *Pipeline) Run(ctx context.Context, sources []source.Source) *Catalog {
	results := p.runner.RunAll(ctx, sources)
	return p.Build(results)
}

// Build turns source results into a catalog: concatenate, dedupe, filter, assign ids, snapshot
func (p *Pipeline) Build(results []source.Result) *Catalog {
	var candidates []event.Event
	names := make([]string, 0, len(results))
	stats := make(map[string]SourceStat, len(results))

	for _, res := range results {
		names = append(names, res.Name)
		stat := SourceStat{OK: res.OK, Count: len(res.Events)}
		if !res.OK {
			msg := res.Err
			stat.Error = &msg
		}
		stats[res.Name] = stat
		candidates = append(candidates, res.Events...)
	}

	deduped := Dedupe(candidates, p.classifier)
	dropped := len(candidates) - len(deduped)

	final, rejected := p.policy.Apply(deduped)
	AssignIDs(final)

	q := quality.Snapshot(final)

	p.metrics.AddCounter("dedupe.dropped", int64(dropped))
	for reason, n := range rejected {
		p.metrics.AddCounter("filter.rejected."+string(reason), int64(n))
	}
	p.metrics.SetGauge("catalog.events", float64(len(final)))
	p.metrics.SetGauge("catalog.fallback_ratio", q.FallbackRatio)

	p.log.Info("catalog built", logger.Fields{
		"candidates": len(candidates),
		"deduped":    len(deduped),
		"events":     len(final),
		"rejected":   filter.Summary(rejected),
	})

	return &Catalog{
		LastUpdated: p.now().UTC().Format(time.RFC3339),
		TotalEvents: len(final),
		PublicURL:   p.PublicURL,
		Sources:     names,
		SourceStats: stats,
		Quality:     q,
		Events:      final,
		Stats: RunStats{
			Candidates: len(candidates),
			Dropped:    dropped,
			Rejected:   rejected,
			Results:    results,
		},
	}
}
