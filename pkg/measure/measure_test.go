package measure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cognit/pkg/measure"
	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

func TestContextAddTargetsActiveUnit(t *testing.T) {
	t.Parallel()

	ctx := measure.NewContext("main.go")
	ctx.Add(measure.MetricCognitive, 2)

	fn := ctx.PushFunction("run", syntax.Position{StartLine: 10})
	ctx.Add(measure.MetricCognitive, 3)
	ctx.Pop()

	ctx.Add(measure.MetricCognitive, 1)

	root := ctx.Root()
	assert.Equal(t, 3, root.Total(measure.MetricCognitive))
	assert.Equal(t, 3, fn.Total(measure.MetricCognitive))

	require.Len(t, root.Children, 1)
	assert.Same(t, fn, root.Children[0])
	assert.Equal(t, measure.UnitFunction, fn.Kind)
	assert.Equal(t, uint32(10), fn.Pos.StartLine)
}

func TestContextNestedFunctions(t *testing.T) {
	t.Parallel()

	ctx := measure.NewContext("nested.py")

	outer := ctx.PushFunction("outer", syntax.Position{})
	inner := ctx.PushFunction("inner", syntax.Position{})
	assert.Equal(t, 3, ctx.Depth())

	ctx.Add(measure.MetricCognitive, 5)
	ctx.Pop()
	ctx.Add(measure.MetricCognitive, 1)
	ctx.Pop()

	assert.Equal(t, 5, inner.Total(measure.MetricCognitive))
	assert.Equal(t, 1, outer.Total(measure.MetricCognitive))

	require.Len(t, outer.Children, 1)
	assert.Same(t, inner, outer.Children[0])
}

func TestContextPopNeverRemovesRoot(t *testing.T) {
	t.Parallel()

	ctx := measure.NewContext("a.c")
	ctx.Pop()
	ctx.Pop()

	assert.Equal(t, 1, ctx.Depth())
	assert.Same(t, ctx.Root(), ctx.Peek())
}

func TestUnitTotalZeroWhenEmpty(t *testing.T) {
	t.Parallel()

	ctx := measure.NewContext("a.c")

	assert.Equal(t, 0, ctx.Root().Total(measure.MetricCognitive))
}

func TestUnitWalkDocumentOrder(t *testing.T) {
	t.Parallel()

	ctx := measure.NewContext("w.go")
	ctx.PushFunction("first", syntax.Position{})
	ctx.Pop()
	ctx.PushFunction("second", syntax.Position{})
	ctx.PushFunction("second.inner", syntax.Position{})
	ctx.Pop()
	ctx.Pop()

	var names []string

	ctx.Root().Walk(func(u *measure.Unit) {
		names = append(names, u.Name)
	})

	assert.Equal(t, []string{"w.go", "first", "second", "second.inner"}, names)
}
