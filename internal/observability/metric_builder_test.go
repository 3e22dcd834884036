package observability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
)

func testMeter() metric.Meter {
	return noopmetric.NewMeterProvider().Meter("test")
}

func TestMetricBuilder_CreatesInstruments(t *testing.T) {
	t.Parallel()

	b := newMetricBuilder(testMeter())

	c := b.counter("test.counter", "a counter", "{item}")
	h := b.histogram("test.histogram", "a histogram", "s", 0.1, 1, 10)
	u := b.upDownCounter("test.updown", "an up-down counter", "{item}")
	g := b.gauge("test.gauge", "a gauge", "{item}")
	o := b.observableCounter("test.observable", "an observable counter", "{item}")

	require.NoError(t, b.err)
	assert.NotNil(t, c)
	assert.NotNil(t, h)
	assert.NotNil(t, u)
	assert.NotNil(t, g)
	assert.NotNil(t, o)
}

func TestMetricBuilder_HistogramWithoutBounds(t *testing.T) {
	t.Parallel()

	b := newMetricBuilder(testMeter())
	h := b.histogram("test.histogram", "a histogram", "s")

	require.NoError(t, b.err)
	assert.NotNil(t, h)
}

func TestMetricBuilder_KeepsFirstError(t *testing.T) {
	t.Parallel()

	b := newMetricBuilder(testMeter())

	first := errors.New("first")
	second := errors.New("second")

	b.setErr("alpha", first)
	b.setErr("beta", second)

	require.Error(t, b.err)
	assert.ErrorIs(t, b.err, first)
	assert.NotErrorIs(t, b.err, second)
	assert.Contains(t, b.err.Error(), "alpha")
}

func TestMetricBuilder_IgnoresNilError(t *testing.T) {
	t.Parallel()

	b := newMetricBuilder(testMeter())
	b.setErr("alpha", nil)

	assert.NoError(t, b.err)
}
