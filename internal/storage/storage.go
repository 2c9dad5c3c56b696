package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/wikirace-events/internal/event"
	"github.com/pfrederiksen/wikirace-events/internal/pipeline"
	"github.com/pfrederiksen/wikirace-events/internal/quality"
)

// Artifact file names inside the output directory
const (
	CatalogFile = "events.json"
	SummaryFile = "events_summary.json"
	ReportFile  = "quality_report.json"
)

// ErrCatalogNotFound is returned by LoadCatalog when the artifact does not exist
var ErrCatalogNotFound = errors.New("catalog not found")

// Summary is the small companion artifact written next to the catalog
type Summary struct {
	GeneratedAt string                         `json:"generatedAt"`
	TotalEvents int                            `json:"totalEvents"`
	SourceStats map[string]pipeline.SourceStat `json:"sourceStats"`
	Quality     quality.Quality                `json:"quality"`
	RunID       string                         `json:"runId,omitempty"`
}

// Storage writes catalog artifacts into a directory
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Path returns the location of an artifact inside the output directory
func (s *Storage) Path(name string) string {
	return filepath.Join(s.dataDir, name)
}

// SaveCatalog writes events.json and events_summary.json. runID is recorded in the summary only.
func (s *Storage) SaveCatalog(catalog *pipeline.Catalog, runID string) error {
	if catalog.Events == nil {
		catalog.Events = []event.Event{}
	}
	if err := writeJSON(s.Path(CatalogFile), catalog); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}

	summary := Summary{
		GeneratedAt: catalog.LastUpdated,
		TotalEvents: catalog.TotalEvents,
		SourceStats: catalog.SourceStats,
		Quality:     catalog.Quality,
		RunID:       runID,
	}
	if err := writeJSON(s.Path(SummaryFile), summary); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// SaveReport writes a validation report to path
func SaveReport(path string, report quality.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := writeJSON(path, report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// LoadCatalog reads a catalog artifact. A missing file yields ErrCatalogNotFound.
func LoadCatalog(path string) (*pipeline.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var catalog pipeline.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	if catalog.Events == nil {
		catalog.Events = []event.Event{}
	}

	return &catalog, nil
}

// LoadSummary reads a summary artifact
func LoadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("parsing summary: %w", err)
	}
	return &summary, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
