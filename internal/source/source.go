package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/logger"
	"github.com/pfrederiksen/wikirace-events/internal/normalize"
)

// Source is one upstream race listing
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]event.Event, error)
}

// Result is the outcome of running one source. Err is empty when OK is true.
type Result struct {
	Name   string
	Events []event.Event
	OK     bool
	Err    string
}

// Deps are the collaborators shared by all adapters
type Deps struct {
	Fetcher    *Fetcher
	Normalizer *normalize.Normalizer
	Now        func() time.Time
	Log        *logger.Logger
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

func (d Deps) log() *logger.Logger {
	if d.Log == nil {
		return logger.Default()
	}
	return d.Log
}

// Names lists the built-in sources in run order
var Names = []string{"RunSignup", "ITRA", "UltraSignup", "Ahotu", "Triathlon"}

// New builds the named source. Names are matched case-insensitively.
func New(name string, deps Deps) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "runsignup":
		return NewRunSignup(deps), nil
	case "itra":
		return NewITRA(deps), nil
	case "ultrasignup":
		return NewUltraSignup(deps), nil
	case "ahotu":
		return NewAhotu(deps), nil
	case "triathlon":
		return NewTriathlon(deps), nil
	default:
		return nil, fmt.Errorf("unknown source: %s", name)
	}
}

// All builds every built-in source in run order
func All(deps Deps) []Source {
	sources := make([]Source, 0, len(Names))
	for _, name := range Names {
		src, _ := New(name, deps)
		sources = append(sources, src)
	}
	return sources
}

// Runner executes sources one at a time and turns every failure, including a panic, into a
// Result so the remaining sources still run.
type Runner struct {
	log     *logger.Logger
	metrics *logger.Metrics
}

// NewRunner creates a Runner. Nil arguments fall back to the package defaults.
func NewRunner(log *logger.Logger, metrics *logger.Metrics) *Runner {
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}
	return &Runner{log: log, metrics: metrics}
}

// Run fetches src and reports the outcome. It never returns an error and never panics.
func (r *Runner) Run(ctx context.Context, src Source) (res Result) {
	name := src.Name()
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			res = Result{Name: name, Err: fmt.Sprintf("panic: %v", p)}
		}

		elapsed := time.Since(start)
		r.metrics.RecordTiming("source."+name, elapsed)

		fields := logger.Fields{
			"source":      name,
			"ok":          res.OK,
			"events":      len(res.Events),
			"duration_ms": elapsed.Milliseconds(),
		}
		if res.OK {
			r.log.Info("source finished", fields)
			return
		}
		fields["error"] = res.Err
		r.log.Warn("source failed", fields)
	}()

	events, err := src.Fetch(ctx)
	if err != nil {
		return Result{Name: name, Err: err.Error()}
	}
	return Result{Name: name, Events: events, OK: true}
}

// RunAll runs sources sequentially in the given order
func (r *Runner) RunAll(ctx context.Context, sources []Source) []Result {
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		results = append(results, r.Run(ctx, src))
	}
	return results
}
