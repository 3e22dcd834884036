package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cognit/pkg/cognitive"
	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

func TestParseCElseIfChainShape(t *testing.T) {
	t.Parallel()

	src := `int classify(int x) {
  if (x == 1) {
    return 1;
  } else if (x == 2) {
    return 2;
  } else {
    return 3;
  }
}
`
	tree := parse(t, "c", src)

	fns := find(tree.Root, syntax.KindFunction)
	require.Len(t, fns, 1)
	assert.Equal(t, "classify", cognitive.FunctionNameOf(fns[0]))

	sels := find(tree.Root, syntax.KindSelection)
	require.Len(t, sels, 2)

	chained := sels[1]
	require.NotNil(t, chained.Parent)
	assert.Equal(t, syntax.KindBlock, chained.Parent.Kind)

	prev := chained.Parent.PrevSibling()
	require.NotNil(t, prev)
	assert.Equal(t, syntax.KindElse, prev.Kind)

	wrapper := chained.Children[len(chained.Children)-1]
	assert.Equal(t, syntax.KindBlock, wrapper.Kind)
	require.Len(t, wrapper.Children, 1)
	assert.Equal(t, syntax.KindBlock, wrapper.Children[0].Kind)
}

func TestParseCGotoAndTernary(t *testing.T) {
	t.Parallel()

	src := `int clamp(int x) {
  if (x < 0) {
    goto done;
  }
  x = x > 10 ? 10 : x;
done:
  return x;
}
`
	tree := parse(t, "c", src)

	assert.Len(t, find(tree.Root, syntax.KindGoto), 1)
	assert.Len(t, find(tree.Root, syntax.KindTernary), 1)
}
