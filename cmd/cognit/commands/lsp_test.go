package commands

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cognit/internal/lsp"
	"github.com/Sumatoshi-tech/cognit/internal/observability"
)

func TestLSPCommand_ForwardsThreshold(t *testing.T) {
	t.Parallel()

	var seenOpts lsp.Options

	command := newLSPCommandWithDeps(
		func(opts lsp.Options) error {
			seenOpts = opts

			return nil
		},
		noopObservabilityInit,
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{"--threshold", "20"})

	err := command.Execute()
	require.NoError(t, err)
	assert.Equal(t, 20, seenOpts.Threshold)
	assert.NotNil(t, seenOpts.Logger)
}

func TestLSPCommand_DefaultThreshold(t *testing.T) {
	t.Parallel()

	var seenOpts lsp.Options

	command := newLSPCommandWithDeps(
		func(opts lsp.Options) error {
			seenOpts = opts

			return nil
		},
		noopObservabilityInit,
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{})

	err := command.Execute()
	require.NoError(t, err)
	assert.Equal(t, lsp.DefaultThreshold, seenOpts.Threshold)
}

func TestLSPCommand_UsesLSPMode(t *testing.T) {
	t.Parallel()

	var seenCfg observability.Config

	command := newLSPCommandWithDeps(
		func(_ lsp.Options) error { return nil },
		func(cfg observability.Config) (observability.Providers, error) {
			seenCfg = cfg

			return observability.Providers{
				Shutdown: func(_ context.Context) error { return nil },
			}, nil
		},
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{})

	err := command.Execute()
	require.NoError(t, err)
	assert.Equal(t, observability.ModeLSP, seenCfg.Mode)
}

func TestLSPCommand_PropagatesRunError(t *testing.T) {
	t.Parallel()

	errStop := errors.New("client disconnected")

	command := newLSPCommandWithDeps(
		func(_ lsp.Options) error { return errStop },
		noopObservabilityInit,
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{})

	err := command.Execute()
	require.ErrorIs(t, err, errStop)
}

func TestLSPCommand_MetricsAddr(t *testing.T) {
	t.Parallel()

	var runCalled bool

	command := newLSPCommandWithDeps(
		func(_ lsp.Options) error {
			runCalled = true

			return nil
		},
		noopObservabilityInit,
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{"--metrics-addr", "127.0.0.1:0"})

	err := command.Execute()
	require.NoError(t, err)
	require.True(t, runCalled, "server should run with the diagnostics endpoint up")
}
