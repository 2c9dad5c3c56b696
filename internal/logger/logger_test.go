package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "source finished",
			fields:  Fields{"source": "ITRA"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "writing catalog failed",
			err:     errors.New("disk full"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := buf.Len()
			logger.log(tt.level, tt.message, tt.fields, tt.err)
			logged := buf.Len() > before

			if logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
		})
	}
}

func TestLogger_WithAddsBaseFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelDebug, &buf).With(Fields{"run_id": "abc"})

	logger.Warn("source failed", Fields{"source": "Ahotu"})

	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if entry.Level != "WARN" {
		t.Errorf("Level = %q, want WARN", entry.Level)
	}
	if entry.Fields["run_id"] != "abc" || entry.Fields["source"] != "Ahotu" {
		t.Errorf("Fields = %v, want run_id and source", entry.Fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{" WARN ", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"warn doesn't log at error", LevelError, LevelWarn, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.minLevel, &buf)

			logger.log(tt.logLevel, "test", nil, nil)

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("shouldLog = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("filter.rejected.date")
	m.IncrCounter("filter.rejected.date")
	m.AddCounter("filter.rejected.noise", 3)
	m.IncrCounter("dedupe.dropped")

	if got := m.Counter("filter.rejected.date"); got != 2 {
		t.Errorf("Counter = %v, want 2", got)
	}

	rejected := m.CountersWithPrefix("filter.rejected.")
	if len(rejected) != 2 || rejected["noise"] != 3 {
		t.Errorf("CountersWithPrefix = %v, want date and noise", rejected)
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("catalog.events", 10)
	m.SetGauge("catalog.events", 12)

	gauges := m.GetSnapshot()["gauges"].(map[string]float64)
	if gauges["catalog.events"] != 12 {
		t.Errorf("Gauge = %v, want 12", gauges["catalog.events"])
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("source.ITRA", 100*time.Millisecond)
	m.RecordTiming("source.ITRA", 200*time.Millisecond)
	m.RecordTiming("source.ITRA", 150*time.Millisecond)

	timings := m.GetSnapshot()["timings"].(map[string]map[string]interface{})

	itra := timings["source.ITRA"]
	if itra["count"].(int) != 3 {
		t.Errorf("Timing count = %v, want 3", itra["count"])
	}
	if itra["min"].(string) != "100ms" {
		t.Errorf("Min timing = %v, want 100ms", itra["min"])
	}
	if itra["max"].(string) != "200ms" {
		t.Errorf("Max timing = %v, want 200ms", itra["max"])
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	previous := Default()
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(previous)

	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Errorf("wrote %d lines, want 3", lines)
	}

	IncrCounter("test")
	SetGauge("test", 42.0)
	RecordTiming("test", time.Second)

	if GetMetricsSnapshot() == nil {
		t.Error("GetMetricsSnapshot() returned nil")
	}
}
