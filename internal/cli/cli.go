package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/wikirace-events/internal/calendar"
	"github.com/pfrederiksen/wikirace-events/internal/config"
	"github.com/pfrederiksen/wikirace-events/internal/logger"
	"github.com/pfrederiksen/wikirace-events/internal/metrics"
	"github.com/pfrederiksen/wikirace-events/internal/normalize"
	"github.com/pfrederiksen/wikirace-events/internal/pipeline"
	"github.com/pfrederiksen/wikirace-events/internal/quality"
	"github.com/pfrederiksen/wikirace-events/internal/source"
	"github.com/pfrederiksen/wikirace-events/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	// ErrEmptyCatalog is returned by scrape when no event survives the pipeline
	ErrEmptyCatalog = errors.New("catalog is empty")
	// ErrValidationFailed is returned by validate when at least one check fails
	ErrValidationFailed = errors.New("quality validation failed")
)

// Version is set by main
var Version = "dev"

var (
	flagFormat   string
	flagLogLevel string
	flagVerbose  bool

	// scrape
	flagOutDir          string
	flagTables          string
	flagICS             string
	flagMetricsFile     string
	flagSources         []string
	flagRequestInterval time.Duration
	flagSort            string
	flagSample          int

	// validate
	flagEventsFile string
	flagReportFile string
	flagThresholds quality.Thresholds
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikirace-events",
		Short: "Aggregate upcoming running, trail and triathlon races into one catalog",
		Long: `A CLI tool that collects upcoming races from public listings, merges duplicates,
drops unusable records and publishes a JSON catalog with a quality snapshot.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR (default from LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newScrapeCmd(), newValidateCmd())
	return cmd
}

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch every source and write the catalog artifacts",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}

	cmd.Flags().StringVar(&flagOutDir, "out-dir", ".", "Directory for events.json and events_summary.json")
	cmd.Flags().StringVar(&flagTables, "tables", "", "YAML file overriding the built-in normalization tables")
	cmd.Flags().StringVar(&flagICS, "ics", "", "Also write the catalog as an iCalendar file")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write run metrics in Prometheus textfile format")
	cmd.Flags().StringSliceVar(&flagSources, "sources", nil, "Comma-separated sources to run (default all: "+strings.Join(source.Names, ",")+")")
	cmd.Flags().DurationVar(&flagRequestInterval, "request-interval", source.DefaultRequestInterval, "Minimum delay between HTTP requests")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortByDate), "Sort order of the printed sample: date, name or country")
	cmd.Flags().IntVar(&flagSample, "sample", 10, "Number of events to print")

	return cmd
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the quality gate against a written catalog",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}

	th := quality.DefaultThresholds()
	cmd.Flags().StringVar(&flagEventsFile, "events", storage.CatalogFile, "Catalog file to validate")
	cmd.Flags().StringVar(&flagReportFile, "report", storage.ReportFile, "Where to write the validation report")
	cmd.Flags().StringVar(&flagTables, "tables", "", "YAML file overriding the built-in normalization tables")
	cmd.Flags().IntVar(&flagThresholds.MinEvents, "min-events", th.MinEvents, "Minimum number of events")
	cmd.Flags().IntVar(&flagThresholds.MinDisciplines, "min-disciplines", th.MinDisciplines, "Minimum number of distinct disciplines")
	cmd.Flags().IntVar(&flagThresholds.MinTriathlonEvents, "min-triathlon-events", th.MinTriathlonEvents, "Minimum number of triathlon events")
	cmd.Flags().Float64Var(&flagThresholds.MaxFallbackRatio, "max-fallback-ratio", th.MaxFallbackRatio, "Maximum share of curated fallback events")
	cmd.Flags().Float64Var(&flagThresholds.MaxGenericURLRatio, "max-generic-url-ratio", th.MaxGenericURLRatio, "Maximum share of generic registration links")
	cmd.Flags().IntVar(&flagThresholds.MinFutureHorizonDays, "min-future-horizon-days", th.MinFutureHorizonDays, "The latest event must be at least this many days ahead")
	cmd.Flags().IntVar(&flagThresholds.MinContributingSources, "min-contributing-sources", th.MinContributingSources, "Minimum number of sources with at least one event")

	return cmd
}

func parseFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

// newLogger builds the run logger. Logs go to stderr so stdout only carries command output.
func newLogger(cmd *cobra.Command, env config.Env, runID string) *logger.Logger {
	levelName := flagLogLevel
	if levelName == "" {
		levelName = env.LogLevel
	}
	level := logger.ParseLevel(levelName)
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, cmd.ErrOrStderr()).With(logger.Fields{"run_id": runID})
	logger.SetDefault(log)
	return log
}

// selectSources builds the requested sources, or all of them when names is empty
func selectSources(names []string, deps source.Deps) ([]source.Source, error) {
	if len(names) == 0 {
		return source.All(deps), nil
	}
	sources := make([]source.Source, 0, len(names))
	for _, name := range names {
		src, err := source.New(name, deps)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	format, err := parseFormat()
	if err != nil {
		return err
	}
	sortOrder, err := parseSortOrder(flagSort)
	if err != nil {
		return err
	}

	env := config.LoadEnv()
	runID := uuid.NewString()
	log := newLogger(cmd, env, runID)

	tables, err := config.LoadTables(flagTables)
	if err != nil {
		return fmt.Errorf("loading tables: %w", err)
	}
	normalizer := normalize.New(tables)

	store, err := storage.New(flagOutDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	deps := source.Deps{
		Fetcher:    source.NewFetcher(flagRequestInterval),
		Normalizer: normalizer,
		Log:        log,
	}
	sources, err := selectSources(flagSources, deps)
	if err != nil {
		return err
	}

	log.Debug("starting scrape", logger.Fields{
		"sources":          len(sources),
		"out_dir":          flagOutDir,
		"request_interval": flagRequestInterval.String(),
	})

	runMetrics := logger.NewMetrics()
	p := pipeline.New(normalizer,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(runMetrics),
		pipeline.WithPublicURL(env.PublicURL()),
	)
	catalog := p.Run(cmd.Context(), sources)

	if flagMetricsFile != "" {
		exporter := metrics.NewExporter()
		exporter.Observe(catalog, time.Now().Unix())
		if err := exporter.WriteTextfile(flagMetricsFile); err != nil {
			return err
		}
	}

	if catalog.TotalEvents == 0 {
		// keep the previously published artifacts
		log.Error("no events survived the pipeline", logger.Fields{"rejected": catalog.Stats.Rejected}, nil)
		return ErrEmptyCatalog
	}

	if err := store.SaveCatalog(catalog, runID); err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}
	log.Info("catalog saved", logger.Fields{
		"path":   store.Path(storage.CatalogFile),
		"events": catalog.TotalEvents,
	})

	if flagICS != "" {
		if err := calendar.WriteFile(flagICS, catalog.Events, time.Now()); err != nil {
			return err
		}
		log.Info("calendar saved", logger.Fields{"path": flagICS})
	}

	log.Debug("run metrics", logger.Fields{"metrics": runMetrics.GetSnapshot()})

	result := NewScrapeResult(catalog, runID, store.Path(storage.CatalogFile), sortOrder, flagSample)
	if err := WriteScrapeOutput(cmd.OutOrStdout(), result, format, time.Now()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := parseFormat()
	if err != nil {
		return err
	}

	env := config.LoadEnv()
	log := newLogger(cmd, env, uuid.NewString())

	catalog, err := storage.LoadCatalog(flagEventsFile)
	if err != nil {
		return err
	}

	tables, err := config.LoadTables(flagTables)
	if err != nil {
		return fmt.Errorf("loading tables: %w", err)
	}

	report := quality.Validate(catalog.Events, flagThresholds, normalize.New(tables), time.Now())
	if err := storage.SaveReport(flagReportFile, report); err != nil {
		return err
	}

	if err := WriteValidateOutput(cmd.OutOrStdout(), report, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if !report.Passed() {
		log.Warn("quality gate failed", logger.Fields{"failed": report.Failed()})
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(report.Failed(), ", "))
	}
	log.Info("quality gate passed", logger.Fields{"events": report.Metrics.TotalEvents})
	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
