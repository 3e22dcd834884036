package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cognit/internal/config"
	"github.com/Sumatoshi-tech/cognit/internal/lsp"
	"github.com/Sumatoshi-tech/cognit/internal/observability"
)

// lspRunner starts the language server and blocks until the client
// disconnects. Tests substitute a stub.
type lspRunner func(opts lsp.Options) error

// LSPCommand holds configuration and dependencies for the lsp command.
type LSPCommand struct {
	configPath  string
	threshold   int
	metricsAddr string

	runFn   lspRunner
	obsInit observabilityInit
}

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	return newLSPCommandWithDeps(runLSPServer, observability.Init)
}

func newLSPCommandWithDeps(runFn lspRunner, obsInit observabilityInit) *cobra.Command {
	lc := &LSPCommand{runFn: runFn, obsInit: obsInit}

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server on stdio",
		Long: `Serve cognitive complexity diagnostics over the Language Server
Protocol on stdio. Open documents are scored on open, change and save;
functions at or over the threshold get a warning diagnostic.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          lc.run,
	}

	cmd.Flags().StringVar(&lc.configPath, "config", "", "Config file path (default: .cognit.yaml in . or $HOME)")
	cmd.Flags().IntVar(&lc.threshold, "threshold", 0, "Diagnostic threshold (0 = default)")
	cmd.Flags().StringVar(&lc.metricsAddr, "metrics-addr", "", "Serve /healthz, /readyz and /metrics on this address (empty = disabled)")

	return cmd
}

func (lc *LSPCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(lc.configPath)
	if err != nil {
		return err
	}

	providers, err := lc.obsInit(buildObservabilityConfig(cmd, cfg, observability.ModeLSP))
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

	threshold := cfg.LSP.Threshold
	if cmd.Flags().Changed("threshold") {
		threshold = lc.threshold
	}

	metricsAddr := cfg.LSP.MetricsAddr
	if cmd.Flags().Changed("metrics-addr") {
		metricsAddr = lc.metricsAddr
	}

	if metricsAddr != "" {
		diag, diagErr := observability.NewDiagnosticsServer(metricsAddr, providers.Meter, providers.Tracer)
		if diagErr != nil {
			return diagErr
		}

		defer func() {
			closeErr := diag.Close()
			if closeErr != nil {
				providers.Logger.Warn("diagnostics server close failed", "error", closeErr)
			}
		}()

		providers.Logger.Info("diagnostics server listening", "addr", diag.Addr())
	}

	return lc.runFn(lsp.Options{
		Threshold: threshold,
		Logger:    providers.Logger,
	})
}

func runLSPServer(opts lsp.Options) error {
	return lsp.NewServer(opts).Run()
}
