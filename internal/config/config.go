package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/cognit/pkg/safeconv"
)

// Config is the top-level configuration struct for cognit.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Scan          ScanConfig          `mapstructure:"scan"`
	Report        ReportConfig        `mapstructure:"report"`
	History       HistoryConfig       `mapstructure:"history"`
	LSP           LSPConfig           `mapstructure:"lsp"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ScanConfig holds scanner resource knobs.
type ScanConfig struct {
	// Workers is the scoring pool size. Zero uses NumCPU.
	Workers int `mapstructure:"workers"`

	// MaxFileSize skips files larger than this humanize size string
	// (e.g. "1MB"). Empty uses the scanner default.
	MaxFileSize string `mapstructure:"max_file_size"`
}

// ReportConfig holds output rendering defaults.
type ReportConfig struct {
	// Format selects the output renderer: text, json, yaml or compact.
	Format string `mapstructure:"format"`

	// Threshold highlights functions at or above this score. Zero
	// disables highlighting.
	Threshold int `mapstructure:"threshold"`

	// Top caps the number of function rows shown. Zero shows all.
	Top int `mapstructure:"top"`

	// FailOver exits non-zero when any function scores above this
	// value. Zero disables the gate.
	FailOver int `mapstructure:"fail_over"`
}

// HistoryConfig holds commit-walk knobs.
type HistoryConfig struct {
	// MaxCommits caps the number of scored commits, sampled evenly
	// across the range. Zero scores every commit.
	MaxCommits int `mapstructure:"max_commits"`

	// CacheSize bounds the cross-commit score cache as a humanize size
	// string (e.g. "64MB"). Empty uses the built-in capacity.
	CacheSize string `mapstructure:"cache_size"`

	// Since restricts the walk to commits after this time, either a
	// duration (72h) or a date (2026-01-02).
	Since string `mapstructure:"since"`
}

// LSPConfig holds language-server settings.
type LSPConfig struct {
	// Threshold is the minimum complexity that produces a diagnostic.
	Threshold int `mapstructure:"threshold"`

	// MetricsAddr serves Prometheus metrics when non-empty
	// (e.g. "localhost:9090").
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// ObservabilityConfig holds telemetry export settings.
type ObservabilityConfig struct {
	// Environment labels exported telemetry (e.g. "production").
	Environment string `mapstructure:"environment"`

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables
	// export.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// OTLPInsecure disables TLS for the OTLP connection.
	OTLPInsecure bool `mapstructure:"otlp_insecure"`

	// SampleRatio is the trace sampling ratio between 0 and 1. Zero
	// uses the SDK default.
	SampleRatio float64 `mapstructure:"sample_ratio"`

	// LogJSON switches log output from text to JSON.
	LogJSON bool `mapstructure:"log_json"`

	// TraceVerbose enables per-file hot-path spans.
	TraceVerbose bool `mapstructure:"trace_verbose"`
}

// sampleRatioMax is the upper bound for the trace sampling ratio.
const sampleRatioMax = 1.0

// Sentinel errors for configuration validation.
var (
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("scan.workers must be non-negative")
	// ErrInvalidMaxFileSize indicates the max file size is not a valid size string.
	ErrInvalidMaxFileSize = errors.New("scan.max_file_size is not a valid size")
	// ErrInvalidFormat indicates the report format is unknown.
	ErrInvalidFormat = errors.New("report.format must be one of text, json, yaml, compact")
	// ErrInvalidThreshold indicates the report threshold is negative.
	ErrInvalidThreshold = errors.New("report.threshold must be non-negative")
	// ErrInvalidTop indicates the top value is negative.
	ErrInvalidTop = errors.New("report.top must be non-negative")
	// ErrInvalidFailOver indicates the fail-over gate is negative.
	ErrInvalidFailOver = errors.New("report.fail_over must be non-negative")
	// ErrInvalidMaxCommits indicates the max commits value is negative.
	ErrInvalidMaxCommits = errors.New("history.max_commits must be non-negative")
	// ErrInvalidCacheSize indicates the cache size is not a valid size string.
	ErrInvalidCacheSize = errors.New("history.cache_size is not a valid size")
	// ErrInvalidLSPThreshold indicates the diagnostic threshold is negative.
	ErrInvalidLSPThreshold = errors.New("lsp.threshold must be non-negative")
	// ErrInvalidSampleRatio indicates the sampling ratio is out of range.
	ErrInvalidSampleRatio = errors.New("observability.sample_ratio must be between 0 and 1")
)

// knownFormats lists the accepted report.format values. The empty
// string defers to the default format.
var knownFormats = map[string]bool{
	"":        true,
	"text":    true,
	"json":    true,
	"yaml":    true,
	"compact": true,
}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	scanErr := c.validateScan()
	if scanErr != nil {
		return scanErr
	}

	reportErr := c.validateReport()
	if reportErr != nil {
		return reportErr
	}

	historyErr := c.validateHistory()
	if historyErr != nil {
		return historyErr
	}

	if c.LSP.Threshold < 0 {
		return ErrInvalidLSPThreshold
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > sampleRatioMax {
		return ErrInvalidSampleRatio
	}

	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 0 {
		return ErrInvalidWorkers
	}

	_, err := c.ScanMaxFileSizeBytes()

	return err
}

func (c *Config) validateReport() error {
	if !knownFormats[c.Report.Format] {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Report.Format)
	}

	if c.Report.Threshold < 0 {
		return ErrInvalidThreshold
	}

	if c.Report.Top < 0 {
		return ErrInvalidTop
	}

	if c.Report.FailOver < 0 {
		return ErrInvalidFailOver
	}

	return nil
}

func (c *Config) validateHistory() error {
	if c.History.MaxCommits < 0 {
		return ErrInvalidMaxCommits
	}

	_, err := c.HistoryCacheSizeBytes()

	return err
}

// ScanMaxFileSizeBytes parses scan.max_file_size to bytes. Zero means
// the scanner default applies.
func (c *Config) ScanMaxFileSizeBytes() (int64, error) {
	size, ok := parseOptionalSize(c.Scan.MaxFileSize)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidMaxFileSize, c.Scan.MaxFileSize)
	}

	return size, nil
}

// HistoryCacheSizeBytes parses history.cache_size to bytes. Zero means
// the built-in cache capacity applies.
func (c *Config) HistoryCacheSizeBytes() (int64, error) {
	size, ok := parseOptionalSize(c.History.CacheSize)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCacheSize, c.History.CacheSize)
	}

	return size, nil
}

// parseOptionalSize parses a human-readable size string. Empty and "0"
// are valid and mean "unset".
func parseOptionalSize(sizeValue string) (int64, bool) {
	trimmed := strings.TrimSpace(sizeValue)
	if trimmed == "" || trimmed == "0" {
		return 0, true
	}

	parsed, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, false
	}

	return safeconv.SafeInt64(parsed), true
}
