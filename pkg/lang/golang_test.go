package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

func TestParseGoFunction(t *testing.T) {
	t.Parallel()

	src := "package p\n\nfunc run(x int) int {\n\tif x > 0 {\n\t\treturn x\n\t}\n\treturn 0\n}\n"
	tree := parse(t, "go", src)

	require.Equal(t, syntax.KindFile, tree.Root.Kind)

	fns := find(tree.Root, syntax.KindFunction)
	require.Len(t, fns, 1)
	assert.Equal(t, uint32(3), fns[0].Pos.StartLine)

	ids := find(fns[0], syntax.KindIdentifier)
	require.NotEmpty(t, ids)
	assert.Equal(t, "run", ids[0].Token)

	sels := find(tree.Root, syntax.KindSelection)
	require.Len(t, sels, 1)
	assert.Equal(t, "if", sels[0].Token)
}

func TestParseGoElseIfChainShape(t *testing.T) {
	t.Parallel()

	src := `package p

func classify(x int) int {
	if x == 1 {
		return 1
	} else if x == 2 {
		return 2
	} else {
		return 3
	}
}
`
	tree := parse(t, "go", src)

	sels := find(tree.Root, syntax.KindSelection)
	require.Len(t, sels, 2)

	// The chained if sits alone in a wrapper block whose preceding
	// sibling is the else keyword node.
	chained := sels[1]
	require.NotNil(t, chained.Parent)
	assert.Equal(t, syntax.KindBlock, chained.Parent.Kind)

	prev := chained.Parent.PrevSibling()
	require.NotNil(t, prev)
	assert.Equal(t, syntax.KindElse, prev.Kind)

	// The trailing braced else keeps its own block inside the wrapper.
	wrapper := chained.Children[len(chained.Children)-1]
	assert.Equal(t, syntax.KindBlock, wrapper.Kind)
	require.Len(t, wrapper.Children, 1)
	assert.Equal(t, syntax.KindBlock, wrapper.Children[0].Kind)

	assert.Len(t, find(tree.Root, syntax.KindElse), 2)
}

func TestParseGoBracedElseBreaksChain(t *testing.T) {
	t.Parallel()

	src := `package p

func pick(x int) int {
	if x == 1 {
		return 1
	} else {
		if x == 2 {
			return 2
		}
	}
	return 0
}
`
	tree := parse(t, "go", src)

	sels := find(tree.Root, syntax.KindSelection)
	require.Len(t, sels, 2)

	inner := sels[1]
	require.NotNil(t, inner.Parent)
	assert.Equal(t, syntax.KindBlock, inner.Parent.Kind)
	assert.Nil(t, inner.Parent.PrevSibling())
}

func TestParseGoLogicalChains(t *testing.T) {
	t.Parallel()

	tree := parse(t, "go", "package p\n\nfunc ok(a, b, c bool) bool {\n\treturn a && b && c\n}\n")

	ands := find(tree.Root, syntax.KindLogicalAnd)
	require.Len(t, ands, 1)
	assert.Len(t, ands[0].Children, 3)
}

func TestParseGoMixedOperatorsStaySeparate(t *testing.T) {
	t.Parallel()

	tree := parse(t, "go", "package p\n\nfunc ok(a, b, c bool) bool {\n\treturn a && b || c\n}\n")

	ors := find(tree.Root, syntax.KindLogicalOr)
	require.Len(t, ors, 1)
	require.Len(t, ors[0].Children, 2)
	assert.Equal(t, syntax.KindLogicalAnd, ors[0].Children[0].Kind)
}

func TestParseGoParenthesesSplitChains(t *testing.T) {
	t.Parallel()

	tree := parse(t, "go", "package p\n\nfunc ok(a, b, c bool) bool {\n\treturn (a && b) && c\n}\n")

	assert.Len(t, find(tree.Root, syntax.KindLogicalAnd), 2)
}

func TestParseGoFuncLiteral(t *testing.T) {
	t.Parallel()

	src := "package p\n\nfunc outer(work func()) {\n\tgo func() {\n\t\twork()\n\t}()\n}\n"
	tree := parse(t, "go", src)

	assert.Len(t, find(tree.Root, syntax.KindLambda), 1)
	assert.Len(t, find(tree.Root, syntax.KindFunction), 1)
}
