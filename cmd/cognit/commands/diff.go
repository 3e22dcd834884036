package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/cognit/internal/config"
	"github.com/Sumatoshi-tech/cognit/internal/history"
	"github.com/Sumatoshi-tech/cognit/internal/observability"
)

// diffRunner scores two revisions and reports function-level movement.
// Tests substitute a stub.
type diffRunner func(ctx context.Context, repoPath string, opts history.DiffOptions) (history.DeltaReport, error)

// DiffCommand holds configuration and dependencies for the diff
// command.
type DiffCommand struct {
	configPath string
	repo       string
	from       string
	to         string
	format     string

	diffFn  diffRunner
	obsInit observabilityInit
}

// NewDiffCommand creates the diff command.
func NewDiffCommand() *cobra.Command {
	return newDiffCommandWithDeps(history.Diff, observability.Init)
}

func newDiffCommandWithDeps(diffFn diffRunner, obsInit observabilityInit) *cobra.Command {
	dc := &DiffCommand{diffFn: diffFn, obsInit: obsInit}

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare function complexity between two revisions",
		Long: `Score both revisions and report every function whose complexity
moved, was added or was removed, largest increase first. Only files the
tree diff touched are compared.`,
		RunE: dc.run,
	}

	cmd.Flags().StringVar(&dc.configPath, "config", "", "Config file path (default: .cognit.yaml in . or $HOME)")
	cmd.Flags().StringVar(&dc.repo, "repo", ".", "Repository path")
	cmd.Flags().StringVar(&dc.from, "from", "", "Starting revision (required)")
	cmd.Flags().StringVar(&dc.to, "to", "", "Ending revision (default: HEAD)")
	cmd.Flags().StringVarP(&dc.format, "format", "f", FormatText, "Output format: text, json, yaml")

	return cmd
}

func (dc *DiffCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(dc.configPath)
	if err != nil {
		return err
	}

	providers, err := dc.obsInit(buildObservabilityConfig(cmd, cfg, observability.ModeCLI))
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

	switch dc.format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, dc.format)
	}

	ctx, span := providers.Tracer.Start(cmd.Context(), "cognit.diff")
	defer span.End()

	delta, err := dc.diffFn(ctx, dc.repo, history.DiffOptions{
		From:   dc.from,
		To:     dc.to,
		Logger: providers.Logger,
		Tracer: providers.Tracer,
	})

	span.SetAttributes(
		attribute.Bool("error", err != nil),
		attribute.Int("cognit.deltas", len(delta.Deltas)),
	)

	if err != nil {
		return err
	}

	return renderDelta(delta, dc.format, cmd.OutOrStdout())
}

func renderDelta(delta history.DeltaReport, format string, w io.Writer) error {
	switch format {
	case FormatText:
		return writeDeltaTable(delta, w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(delta); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(delta); err != nil {
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

func writeDeltaTable(delta history.DeltaReport, w io.Writer) error {
	header := fmt.Sprintf("Complexity delta %s..%s\n",
		delta.From.String()[:shortHashLen], delta.To.String()[:shortHashLen])

	if len(delta.Deltas) == 0 {
		_, err := fmt.Fprintf(w, "%s\nNo complexity changes.\n", header)
		if err != nil {
			return fmt.Errorf("write delta: %w", err)
		}

		return nil
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	tbl.AppendHeader(table.Row{"SHIFT", "CHANGE", "OLD", "NEW", "FUNCTION", "FILE"})

	for _, d := range delta.Deltas {
		tbl.AppendRow(table.Row{
			shiftLabel(d),
			string(d.Kind),
			d.OldComplexity,
			d.NewComplexity,
			d.Name,
			d.Path,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("%d function(s) across %d file(s)", len(delta.Deltas), delta.Files)})

	_, err := fmt.Fprintf(w, "%s\n%s\n", header, tbl.Render())
	if err != nil {
		return fmt.Errorf("write delta: %w", err)
	}

	return nil
}

// shiftLabel colors the signed movement: increases red, decreases
// green.
func shiftLabel(d history.FunctionDelta) string {
	shift := d.Shift()

	switch {
	case shift > 0:
		return color.New(color.FgRed).Sprintf("+%d", shift)
	case shift < 0:
		return color.New(color.FgGreen).Sprintf("%d", shift)
	default:
		return "0"
	}
}
