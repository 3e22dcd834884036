// Package config provides YAML-based project configuration for cognit.
package config

// Scan defaults. Zero and empty values defer to the scanner's own
// built-in defaults.
const (
	DefaultScanWorkers     = 0
	DefaultScanMaxFileSize = ""
)

// Report defaults.
const (
	DefaultReportFormat    = "text"
	DefaultReportThreshold = 0
	DefaultReportTop       = 0
	DefaultReportFailOver  = 0
)

// History defaults. Zero max commits walks the full range; an empty
// cache size uses the built-in score cache capacity.
const (
	DefaultHistoryMaxCommits = 0
	DefaultHistoryCacheSize  = ""
	DefaultHistorySince      = ""
)

// LSP defaults.
const (
	DefaultLSPThreshold   = 15
	DefaultLSPMetricsAddr = ""
)

// Observability defaults. An empty OTLP endpoint keeps telemetry
// export disabled.
const (
	DefaultObservabilityEnvironment  = ""
	DefaultObservabilityOTLPEndpoint = ""
	DefaultObservabilityOTLPInsecure = false
	DefaultObservabilitySampleRatio  = 0.0
	DefaultObservabilityLogJSON      = false
	DefaultObservabilityTraceVerbose = false
)
