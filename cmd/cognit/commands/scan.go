package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/cognit/internal/cache"
	"github.com/Sumatoshi-tech/cognit/internal/config"
	"github.com/Sumatoshi-tech/cognit/internal/observability"
	"github.com/Sumatoshi-tech/cognit/internal/scan"
	"github.com/Sumatoshi-tech/cognit/pkg/report"
	"github.com/Sumatoshi-tech/cognit/pkg/report/plotpage"
)

// Format names accepted by --format.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatCompact = "compact"
)

var (
	// ErrUnknownFormat is returned for a --format value no renderer claims.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrUnknownTheme is returned for a --plot-theme value that is neither
	// light nor dark.
	ErrUnknownTheme = errors.New("unknown plot theme")

	// ErrComplexityOver is returned when functions score above the
	// --fail-over threshold.
	ErrComplexityOver = errors.New("functions exceed complexity threshold")

	// ErrRatchetRegression is returned when a function scores above its
	// baseline entry.
	ErrRatchetRegression = errors.New("complexity regressions against baseline")

	// ErrRatchetNeedsBaseline is returned when --ratchet is set without
	// --baseline.
	ErrRatchetNeedsBaseline = errors.New("ratchet requires a baseline file")
)

// scanSettings are the effective knobs after merging config and flags.
type scanSettings struct {
	format      string
	threshold   int
	top         int
	failOver    int
	workers     int
	maxFileSize int64
}

// ScanCommand holds configuration and dependencies for the scan command.
type ScanCommand struct {
	configPath string
	format     string
	threshold  int
	top        int
	failOver   int
	plotPath   string
	plotTheme  string
	baseline   string
	ratchet    bool
	parallel   int

	obsInit observabilityInit
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	return newScanCommandWithDeps(observability.Init)
}

func newScanCommandWithDeps(obsInit observabilityInit) *cobra.Command {
	sc := &ScanCommand{obsInit: obsInit}

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Score cognitive complexity of files and directories",
		Long: `Score the cognitive complexity of every supported source file under
the given paths (default: the current directory) and render a report.

Vendored, binary, unsupported and oversized files are skipped. With a
baseline file, unchanged files resolve from the baseline without being
parsed, and --ratchet fails the run when any function scores above its
recorded entry.`,
		RunE: sc.run,
	}

	cmd.Flags().StringVar(&sc.configPath, "config", "", "Config file path (default: .cognit.yaml in . or $HOME)")
	cmd.Flags().StringVarP(&sc.format, "format", "f", FormatText, "Output format: text, json, yaml, compact")
	cmd.Flags().IntVar(&sc.threshold, "threshold", 0, "List only functions scoring at or above this (0 = all)")
	cmd.Flags().IntVar(&sc.top, "top", 0, "Cap the text listing at the N worst functions (0 = all)")
	cmd.Flags().IntVar(&sc.failOver, "fail-over", 0, "Exit non-zero when any function scores above this (0 = disabled)")
	cmd.Flags().StringVar(&sc.plotPath, "plot", "", "Write an HTML chart report to this file")
	cmd.Flags().StringVar(&sc.plotTheme, "plot-theme", string(plotpage.ThemeLight), "Chart theme: light, dark")
	cmd.Flags().StringVar(&sc.baseline, "baseline", "", "Baseline file for score caching and ratchet checks")
	cmd.Flags().BoolVar(&sc.ratchet, "ratchet", false, "Fail on functions above their baseline score, update the baseline otherwise")
	cmd.Flags().IntVar(&sc.parallel, "parallel", 0, "Scoring workers (0 = CPU count)")

	return cmd
}

func (sc *ScanCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(sc.configPath)
	if err != nil {
		return err
	}

	providers, err := sc.obsInit(buildObservabilityConfig(cmd, cfg, observability.ModeCLI))
	if err != nil {
		return err
	}

	providers = normalizeProviders(providers)

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	settings, err := sc.resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, span := providers.Tracer.Start(cmd.Context(), "cognit.scan")
	defer span.End()

	err = sc.scan(ctx, cmd, args, settings, providers, span)
	span.SetAttributes(attribute.Bool("error", err != nil))

	return err
}

// resolveSettings merges config values and explicit flag overrides.
// Flags win only when set on the command line.
func (sc *ScanCommand) resolveSettings(cmd *cobra.Command, cfg *config.Config) (scanSettings, error) {
	settings := scanSettings{
		format:    cfg.Report.Format,
		threshold: cfg.Report.Threshold,
		top:       cfg.Report.Top,
		failOver:  cfg.Report.FailOver,
		workers:   cfg.Scan.Workers,
	}

	if settings.format == "" {
		settings.format = FormatText
	}

	maxFileSize, err := cfg.ScanMaxFileSizeBytes()
	if err != nil {
		return scanSettings{}, err
	}

	settings.maxFileSize = maxFileSize

	if cmd.Flags().Changed("format") {
		settings.format = sc.format
	}

	if cmd.Flags().Changed("threshold") {
		settings.threshold = sc.threshold
	}

	if cmd.Flags().Changed("top") {
		settings.top = sc.top
	}

	if cmd.Flags().Changed("fail-over") {
		settings.failOver = sc.failOver
	}

	if cmd.Flags().Changed("parallel") {
		settings.workers = sc.parallel
	}

	switch settings.format {
	case FormatText, FormatJSON, FormatYAML, FormatCompact:
	default:
		return scanSettings{}, fmt.Errorf("%w: %q", ErrUnknownFormat, settings.format)
	}

	if sc.ratchet && sc.baseline == "" {
		return scanSettings{}, ErrRatchetNeedsBaseline
	}

	return settings, nil
}

func (sc *ScanCommand) scan(
	ctx context.Context,
	cmd *cobra.Command,
	args []string,
	settings scanSettings,
	providers observability.Providers,
	span trace.Span,
) error {
	baseline, err := sc.loadBaseline()
	if err != nil {
		return err
	}

	var scanMetrics *observability.ScanMetrics

	if providers.Meter != nil {
		scanMetrics, err = observability.NewScanMetrics(providers.Meter)
		if err != nil {
			return err
		}
	}

	var fileCache scan.FileCache
	if baseline != nil {
		fileCache = baseline
	}

	scanner := scan.New(scan.Options{
		Workers:     settings.workers,
		MaxFileSize: settings.maxFileSize,
		Logger:      providers.Logger,
		Tracer:      providers.Tracer,
		Metrics:     scanMetrics,
		Cache:       fileCache,
	})

	rep, stats, err := scanner.Run(ctx, args)
	if err != nil {
		return err
	}

	span.SetAttributes(
		attribute.String("cognit.duration_class", durationClass(stats.Elapsed)),
		attribute.Int64("cognit.files", stats.Files),
		attribute.Int64("cognit.functions", stats.Functions),
	)

	providers.Logger.Debug("scan complete",
		"files", stats.Files,
		"functions", stats.Functions,
		"parse_failures", stats.ParseFailures,
		"cache_hits", stats.CacheHits,
		"cache_misses", stats.CacheMisses,
		"elapsed", stats.Elapsed,
	)

	err = renderReport(displayedReport(rep, settings.threshold), settings.format, settings.top, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if sc.plotPath != "" {
		err = sc.writePlot(rep)
		if err != nil {
			return err
		}
	}

	err = sc.applyBaseline(baseline, rep, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if settings.failOver > 0 {
		over := rep.Exceeds(settings.failOver)
		if len(over) > 0 {
			return fmt.Errorf("%w: %d function(s) above %d", ErrComplexityOver, len(over), settings.failOver)
		}
	}

	return nil
}

// loadBaseline reads the baseline file when one is configured. A
// missing file is a cold start, not an error.
func (sc *ScanCommand) loadBaseline() (*cache.Baseline, error) {
	if sc.baseline == "" {
		return nil, nil
	}

	baseline, err := cache.Load(sc.baseline)
	if errors.Is(err, fs.ErrNotExist) {
		return cache.New(), nil
	}

	if err != nil {
		return nil, err
	}

	return baseline, nil
}

// applyBaseline runs the ratchet check and persists the refreshed
// baseline. A regression leaves the file untouched so the recorded bars
// keep holding.
func (sc *ScanCommand) applyBaseline(baseline *cache.Baseline, rep *report.Report, errOut io.Writer) error {
	if baseline == nil {
		return nil
	}

	if sc.ratchet {
		regressions := baseline.Ratchet(rep)
		if len(regressions) > 0 {
			writeRegressions(errOut, regressions)

			return fmt.Errorf("%w: %d function(s)", ErrRatchetRegression, len(regressions))
		}
	}

	return baseline.Save(sc.baseline)
}

func (sc *ScanCommand) writePlot(rep *report.Report) error {
	theme, err := resolvePlotTheme(sc.plotTheme)
	if err != nil {
		return err
	}

	file, err := os.Create(sc.plotPath)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}

	err = rep.WritePlot(file, theme)
	if err != nil {
		file.Close()

		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close plot file: %w", err)
	}

	return nil
}

// displayedReport narrows the listed functions to those scoring at or
// above threshold. The summary keeps the full-scan numbers; only the
// listing shrinks.
func displayedReport(rep *report.Report, threshold int) *report.Report {
	if threshold <= 0 {
		return rep
	}

	filtered := *rep
	filtered.Files = nil

	for _, file := range rep.Files {
		kept := file
		kept.Functions = nil

		for _, fn := range file.Functions {
			if fn.Complexity >= threshold {
				kept.Functions = append(kept.Functions, fn)
			}
		}

		if len(kept.Functions) > 0 {
			filtered.Files = append(filtered.Files, kept)
		}
	}

	return &filtered
}

func renderReport(rep *report.Report, format string, top int, w io.Writer) error {
	switch format {
	case FormatText:
		return rep.WriteText(w, top)
	case FormatJSON:
		return rep.WriteJSON(w)
	case FormatYAML:
		return rep.WriteYAML(w)
	case FormatCompact:
		return rep.WriteCompact(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func resolvePlotTheme(name string) (plotpage.Theme, error) {
	theme := plotpage.Theme(name)

	switch theme {
	case plotpage.ThemeLight, plotpage.ThemeDark:
		return theme, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
}

func writeRegressions(w io.Writer, regressions []cache.Regression) {
	for _, r := range regressions {
		fmt.Fprintf(w, "ratchet: %s %s scored %d, baseline %d\n",
			r.Function.Location(), r.Function.Name, r.Function.Complexity, r.Baseline)
	}
}
