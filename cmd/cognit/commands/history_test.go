package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/cognit/internal/gitx"
	"github.com/Sumatoshi-tech/cognit/internal/history"
	"github.com/Sumatoshi-tech/cognit/internal/observability"
)

func trendFixture() []history.TrendPoint {
	return []history.TrendPoint{
		{
			Commit:    gitx.NewHash("abad1dea00000000000000000000000000000000"),
			Summary:   "add parser",
			When:      time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
			Files:     3,
			Functions: 14,
			Total:     42,
			Mean:      3.0,
		},
		{
			Commit:    gitx.NewHash("beefcafe00000000000000000000000000000000"),
			Summary:   "refactor parser",
			When:      time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC),
			Files:     3,
			Functions: 15,
			Total:     39,
			Mean:      2.6,
		},
	}
}

func TestHistoryCommand_ForwardsOptions(t *testing.T) {
	t.Parallel()

	var (
		seenRepo string
		seenOpts history.TrendOptions
	)

	command := newHistoryCommandWithDeps(
		func(_ context.Context, repoPath string, opts history.TrendOptions) ([]history.TrendPoint, error) {
			seenRepo = repoPath
			seenOpts = opts

			return nil, nil
		},
		noopObservabilityInit,
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{
		"--repo", "/tmp/repo",
		"--since", "720h",
		"--max-commits", "10",
		"--cache-size", "64MiB",
	})

	err := command.Execute()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/repo", seenRepo)
	assert.Equal(t, "720h", seenOpts.Since)
	assert.Equal(t, 10, seenOpts.MaxCommits)
	assert.Equal(t, int64(64*1024*1024), seenOpts.CacheSize)
	assert.NotNil(t, seenOpts.Logger)
	assert.NotNil(t, seenOpts.Tracer)
}

func TestHistoryCommand_TableOutput(t *testing.T) {
	t.Parallel()

	command := newHistoryCommandWithDeps(
		func(_ context.Context, _ string, _ history.TrendOptions) ([]history.TrendPoint, error) {
			return trendFixture(), nil
		},
		noopObservabilityInit,
	)

	var out bytes.Buffer
	command.SetOut(&out)
	command.SetErr(io.Discard)
	command.SetArgs([]string{"--repo", "."})

	err := command.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "abad1dea")
	assert.Contains(t, out.String(), "beefcafe")
	assert.Contains(t, out.String(), "2026-01-02")
	assert.Contains(t, out.String(), "3.0")
	assert.Contains(t, out.String(), "Total: 2 commits")
}

func TestHistoryCommand_JSONOutput(t *testing.T) {
	t.Parallel()

	command := newHistoryCommandWithDeps(
		func(_ context.Context, _ string, _ history.TrendOptions) ([]history.TrendPoint, error) {
			return trendFixture(), nil
		},
		noopObservabilityInit,
	)

	var out bytes.Buffer
	command.SetOut(&out)
	command.SetErr(io.Discard)
	command.SetArgs([]string{"-f", "json"})

	err := command.Execute()
	require.NoError(t, err)

	var points []history.TrendPoint
	require.NoError(t, json.Unmarshal(out.Bytes(), &points))
	require.Len(t, points, 2)
	assert.Equal(t, 42, points[0].Total)
	assert.Equal(t, "abad1dea00000000000000000000000000000000", points[0].Commit.String())
}

func TestHistoryCommand_YAMLOutput(t *testing.T) {
	t.Parallel()

	command := newHistoryCommandWithDeps(
		func(_ context.Context, _ string, _ history.TrendOptions) ([]history.TrendPoint, error) {
			return trendFixture(), nil
		},
		noopObservabilityInit,
	)

	var out bytes.Buffer
	command.SetOut(&out)
	command.SetErr(io.Discard)
	command.SetArgs([]string{"-f", "yaml"})

	err := command.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "total: 42")
	assert.Contains(t, out.String(), "commit: abad1dea00000000000000000000000000000000")
}

func TestHistoryCommand_InvalidCacheSize(t *testing.T) {
	t.Parallel()

	var trendCalled bool

	command := newHistoryCommandWithDeps(
		func(_ context.Context, _ string, _ history.TrendOptions) ([]history.TrendPoint, error) {
			trendCalled = true

			return nil, nil
		},
		noopObservabilityInit,
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{"--cache-size", "banana"})

	err := command.Execute()
	require.ErrorIs(t, err, ErrInvalidSizeFormat)
	assert.False(t, trendCalled, "trend should not run with invalid settings")
}

func TestHistoryCommand_UnknownFormat(t *testing.T) {
	t.Parallel()

	command := newHistoryCommandWithDeps(
		func(_ context.Context, _ string, _ history.TrendOptions) ([]history.TrendPoint, error) {
			return nil, nil
		},
		noopObservabilityInit,
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{"-f", "xml"})

	err := command.Execute()
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestHistoryCommand_PropagatesTrendError(t *testing.T) {
	t.Parallel()

	command := newHistoryCommandWithDeps(
		func(_ context.Context, _ string, _ history.TrendOptions) ([]history.TrendPoint, error) {
			return nil, history.ErrNoCommits
		},
		noopObservabilityInit,
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{})

	err := command.Execute()
	require.ErrorIs(t, err, history.ErrNoCommits)
}

func TestHistoryCommand_CreatesRootSpan(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	command := newHistoryCommandWithDeps(
		func(_ context.Context, _ string, _ history.TrendOptions) ([]history.TrendPoint, error) {
			return trendFixture(), nil
		},
		func(_ observability.Config) (observability.Providers, error) {
			return observability.Providers{
				Tracer:   tp.Tracer("cognit"),
				Shutdown: func(_ context.Context) error { return nil },
			}, nil
		},
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{})

	err := command.Execute()
	require.NoError(t, err)

	var rootAttrs map[string]any

	for _, span := range exporter.GetSpans() {
		if span.Name != "cognit.history" {
			continue
		}

		rootAttrs = make(map[string]any, len(span.Attributes))
		for _, attr := range span.Attributes {
			rootAttrs[string(attr.Key)] = attr.Value.AsInterface()
		}
	}

	require.NotNil(t, rootAttrs, "root span 'cognit.history' should exist")
	assert.Equal(t, false, rootAttrs["error"])
	assert.Equal(t, int64(2), rootAttrs["cognit.commits"])
}

func TestHistoryCommand_WritesTrendPlot(t *testing.T) {
	t.Parallel()

	plotPath := filepath.Join(t.TempDir(), "trend.html")

	command := newHistoryCommandWithDeps(
		func(_ context.Context, _ string, _ history.TrendOptions) ([]history.TrendPoint, error) {
			return trendFixture(), nil
		},
		noopObservabilityInit,
	)

	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	command.SetArgs([]string{"--plot", plotPath})

	err := command.Execute()
	require.NoError(t, err)

	content, err := os.ReadFile(plotPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<!DOCTYPE")
	assert.Contains(t, string(content), "Complexity Trend")
}

func TestParseSizeFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "empty means unset", input: "", want: 0},
		{name: "binary units", input: "64MiB", want: 64 * 1024 * 1024},
		{name: "decimal units", input: "1KB", want: 1000},
		{name: "gibberish", input: "banana", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseSizeFlag(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSizeFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
