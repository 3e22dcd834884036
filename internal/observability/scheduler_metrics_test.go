package observability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/cognit/internal/observability"
)

func TestNewSchedulerMetrics_NoopMeter(t *testing.T) {
	t.Parallel()

	sm, err := observability.NewSchedulerMetrics(noopmetric.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	assert.NotNil(t, sm)
}

func TestSchedulerMetrics_ObservesRuntime(t *testing.T) {
	t.Parallel()

	reader, provider := newManualMeter()

	_, err := observability.NewSchedulerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	// Collect triggers the registered callback.
	metrics := collectMetrics(t, reader)
	require.Contains(t, metrics, "cognit.runtime.goroutines")
	require.Contains(t, metrics, "cognit.runtime.threads")
	require.Contains(t, metrics, "cognit.runtime.goroutines.created")

	goroutines, ok := metrics["cognit.runtime.goroutines"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, goroutines.DataPoints, 1)

	// The test process always has at least one live goroutine.
	assert.Positive(t, goroutines.DataPoints[0].Value)
}
