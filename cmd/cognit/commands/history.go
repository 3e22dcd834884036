package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/cognit/internal/config"
	"github.com/Sumatoshi-tech/cognit/internal/history"
	"github.com/Sumatoshi-tech/cognit/internal/observability"
	"github.com/Sumatoshi-tech/cognit/pkg/report/plotpage"
	"github.com/Sumatoshi-tech/cognit/pkg/safeconv"
)

// ErrInvalidSizeFormat is returned for a size flag humanize cannot
// parse.
var ErrInvalidSizeFormat = errors.New("invalid size format")

// shortHashLen truncates commit hashes for table display.
const shortHashLen = 8

// trendRunner produces the per-commit trend. Tests substitute a stub.
type trendRunner func(ctx context.Context, repoPath string, opts history.TrendOptions) ([]history.TrendPoint, error)

// historySettings are the effective knobs after merging config and
// flags.
type historySettings struct {
	since      string
	maxCommits int
	cacheSize  int64
	format     string
}

// HistoryCommand holds configuration and dependencies for the history
// command.
type HistoryCommand struct {
	configPath string
	repo       string
	since      string
	maxCommits int
	cacheSize  string
	format     string
	plotPath   string
	plotTheme  string

	trendFn trendRunner
	obsInit observabilityInit
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	return newHistoryCommandWithDeps(history.Trend, observability.Init)
}

func newHistoryCommandWithDeps(trendFn trendRunner, obsInit observabilityInit) *cobra.Command {
	hc := &HistoryCommand{trendFn: trendFn, obsInit: obsInit}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Score complexity across commit history",
		Long: `Walk the repository's first-parent history oldest to newest, score
every supported file in each sampled commit and print one trend row per
commit. Unchanged blobs between commits resolve from a score cache
without being parsed again.`,
		RunE: hc.run,
	}

	cmd.Flags().StringVar(&hc.configPath, "config", "", "Config file path (default: .cognit.yaml in . or $HOME)")
	cmd.Flags().StringVar(&hc.repo, "repo", ".", "Repository path")
	cmd.Flags().StringVar(&hc.since, "since", "", "Bound the walk: a duration ('720h'), a date ('2024-01-02') or RFC3339")
	cmd.Flags().IntVar(&hc.maxCommits, "max-commits", 0, "Sample down to at most N evenly spaced commits (0 = all)")
	cmd.Flags().StringVar(&hc.cacheSize, "cache-size", "", "Blob score cache budget (e.g. '64MiB'; empty = default)")
	cmd.Flags().StringVarP(&hc.format, "format", "f", FormatText, "Output format: text, json, yaml")
	cmd.Flags().StringVar(&hc.plotPath, "plot", "", "Write an HTML trend chart to this file")
	cmd.Flags().StringVar(&hc.plotTheme, "plot-theme", string(plotpage.ThemeLight), "Chart theme: light, dark")

	return cmd
}

func (hc *HistoryCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(hc.configPath)
	if err != nil {
		return err
	}

	providers, err := hc.obsInit(buildObservabilityConfig(cmd, cfg, observability.ModeCLI))
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

	settings, err := hc.resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, span := providers.Tracer.Start(cmd.Context(), "cognit.history")
	defer span.End()

	points, err := hc.trendFn(ctx, hc.repo, history.TrendOptions{
		Since:      settings.since,
		MaxCommits: settings.maxCommits,
		CacheSize:  settings.cacheSize,
		Logger:     providers.Logger,
		Tracer:     providers.Tracer,
	})

	span.SetAttributes(
		attribute.Bool("error", err != nil),
		attribute.Int("cognit.commits", len(points)),
	)

	if err != nil {
		return err
	}

	err = renderTrend(points, settings.format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if hc.plotPath != "" {
		return hc.writeTrendPlot(points)
	}

	return nil
}

func (hc *HistoryCommand) resolveSettings(cmd *cobra.Command, cfg *config.Config) (historySettings, error) {
	settings := historySettings{
		since:      cfg.History.Since,
		maxCommits: cfg.History.MaxCommits,
		format:     hc.format,
	}

	cacheSize, err := cfg.HistoryCacheSizeBytes()
	if err != nil {
		return historySettings{}, err
	}

	settings.cacheSize = cacheSize

	if cmd.Flags().Changed("since") {
		settings.since = hc.since
	}

	if cmd.Flags().Changed("max-commits") {
		settings.maxCommits = hc.maxCommits
	}

	if cmd.Flags().Changed("cache-size") {
		settings.cacheSize, err = parseSizeFlag(hc.cacheSize)
		if err != nil {
			return historySettings{}, err
		}
	}

	switch settings.format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return historySettings{}, fmt.Errorf("%w: %q", ErrUnknownFormat, settings.format)
	}

	return settings, nil
}

func (hc *HistoryCommand) writeTrendPlot(points []history.TrendPoint) error {
	theme, err := resolvePlotTheme(hc.plotTheme)
	if err != nil {
		return err
	}

	file, err := os.Create(hc.plotPath)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}

	err = renderTrendPlot(points, theme, file)
	if err != nil {
		file.Close()

		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close plot file: %w", err)
	}

	return nil
}

func renderTrend(points []history.TrendPoint, format string, w io.Writer) error {
	switch format {
	case FormatText:
		return writeTrendTable(points, w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(points); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(points); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("close yaml encoder: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeTrendTable(points []history.TrendPoint, w io.Writer) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	tbl.AppendHeader(table.Row{"COMMIT", "DATE", "FILES", "FUNCTIONS", "TOTAL", "MEAN"})

	for _, p := range points {
		tbl.AppendRow(table.Row{
			p.Commit.String()[:shortHashLen],
			p.When.Format("2006-01-02"),
			p.Files,
			p.Functions,
			p.Total,
			fmt.Sprintf("%.1f", p.Mean),
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d commits", len(points))})

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return fmt.Errorf("write trend: %w", err)
	}

	return nil
}

func renderTrendPlot(points []history.TrendPoint, theme plotpage.Theme, w io.Writer) error {
	labels := make([]string, 0, len(points))
	totals := make([]float64, 0, len(points))
	means := make([]float64, 0, len(points))

	for _, p := range points {
		labels = append(labels, p.When.Format("2006-01-02"))
		totals = append(totals, float64(p.Total))
		means = append(means, p.Mean)
	}

	line := plotpage.BuildLineChart(plotpage.NewChartOpts(theme), labels, map[string][]float64{
		"Total": totals,
		"Mean":  means,
	}, "Cognitive complexity")

	page := plotpage.NewPage(
		"Complexity Trend",
		fmt.Sprintf("Cognitive complexity across %d commits.", len(points)),
	).WithTheme(theme)

	page.Add(plotpage.Section{
		Title:    "Trend",
		Subtitle: "Total and mean complexity per sampled commit, oldest first.",
		Chart:    line,
		Hint: &plotpage.Hint{
			Title: "Reading",
			Items: []string{
				"A rising total with a flat mean usually means growth, not decay.",
				"A rising mean means the existing functions are getting harder to read.",
			},
		},
	})

	return page.Render(w)
}

// parseSizeFlag converts a humanize size string ('64MiB', '2GB') into
// bytes. Empty means unset.
func parseSizeFlag(value string) (int64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSizeFormat, value)
	}

	return safeconv.SafeInt64(n), nil
}
