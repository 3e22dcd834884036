// Package commands implements CLI command handlers for cognit.
package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/cognit/internal/config"
	"github.com/Sumatoshi-tech/cognit/internal/observability"
	"github.com/Sumatoshi-tech/cognit/pkg/version"
)

// observabilityInit initializes telemetry providers from a config.
// Commands take it as a constructor dependency so tests can substitute
// a stub.
type observabilityInit func(observability.Config) (observability.Providers, error)

// buildObservabilityConfig merges the file config, the OTLP environment
// variables and the persistent verbosity flags into an observability
// config for the given mode. Environment variables win over the file.
func buildObservabilityConfig(cmd *cobra.Command, cfg *config.Config, mode observability.AppMode) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode

	obsCfg.Environment = cfg.Observability.Environment
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.LogJSON = cfg.Observability.LogJSON
	obsCfg.TraceVerbose = cfg.Observability.TraceVerbose

	if cfg.Observability.SampleRatio > 0 {
		obsCfg.SampleRatio = cfg.Observability.SampleRatio
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		obsCfg.OTLPEndpoint = endpoint
	}

	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))

	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		obsCfg.OTLPInsecure = true
	}

	if isVerbose(cmd) {
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.DebugTrace = true
	}

	if isQuiet(cmd) {
		obsCfg.LogLevel = slog.LevelError
	}

	return obsCfg
}

// normalizeProviders fills the gaps a stubbed initializer leaves so
// command bodies never branch on nil telemetry.
func normalizeProviders(p observability.Providers) observability.Providers {
	if p.Tracer == nil {
		p.Tracer = nooptrace.NewTracerProvider().Tracer("cognit")
	}

	if p.Logger == nil {
		p.Logger = slog.Default()
	}

	if p.Shutdown == nil {
		p.Shutdown = func(_ context.Context) error { return nil }
	}

	return p
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}

	return verbose
}

func isQuiet(cmd *cobra.Command) bool {
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return false
	}

	return quiet
}

// Duration classes bucket a run's elapsed time for span attributes, so
// traces can be filtered by rough cost without histogram queries.
const (
	durationClassFastLimit   = 10 * time.Second
	durationClassNormalLimit = time.Minute

	durationClassFast   = "fast"
	durationClassNormal = "normal"
	durationClassSlow   = "slow"
)

func durationClass(d time.Duration) string {
	switch {
	case d < durationClassFastLimit:
		return durationClassFast
	case d < durationClassNormalLimit:
		return durationClassNormal
	default:
		return durationClassSlow
	}
}
