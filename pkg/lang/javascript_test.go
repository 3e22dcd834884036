package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cognit/pkg/cognitive"
	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

// The alternative of a JavaScript if sits inside an else_clause node;
// the chain shape after normalization matches the other languages.
func TestParseJavaScriptElseIfChainShape(t *testing.T) {
	t.Parallel()

	src := `function classify(x) {
  if (x === 1) {
    return 1;
  } else if (x === 2) {
    return 2;
  } else {
    return 3;
  }
}
`
	tree := parse(t, "javascript", src)

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

func TestParseJavaScriptLambdas(t *testing.T) {
	t.Parallel()

	src := `const square = (x) => x * x;
const twice = function (f) { return f + f; };
`
	tree := parse(t, "javascript", src)

	assert.Len(t, find(tree.Root, syntax.KindLambda), 2)
	assert.Empty(t, find(tree.Root, syntax.KindFunction))
}

func TestParseJavaScriptMethodDefinition(t *testing.T) {
	t.Parallel()

	src := `class Stack {
  push(v) {
    this.items.push(v);
  }
}
`
	tree := parse(t, "javascript", src)

	fns := find(tree.Root, syntax.KindFunction)
	require.Len(t, fns, 1)
	assert.Equal(t, "push", cognitive.FunctionNameOf(fns[0]))
}

func TestParseJavaScriptSwitchAndForIn(t *testing.T) {
	t.Parallel()

	src := `function route(cmd, bag) {
  for (const k in bag) {
    switch (cmd) {
      case "get":
        return bag[k];
      default:
        break;
    }
  }
  return null;
}
`
	tree := parse(t, "javascript", src)

	loops := find(tree.Root, syntax.KindLoop)
	require.Len(t, loops, 1)
	assert.Equal(t, "for", loops[0].Token)

	sels := find(tree.Root, syntax.KindSelection)
	require.Len(t, sels, 1)
	assert.Equal(t, "switch", sels[0].Token)
}

func TestParseJavaScriptMixedLogicalOperators(t *testing.T) {
	t.Parallel()

	tree := parse(t, "javascript", "function ok(a, b, c) {\n  return a && b || c;\n}\n")

	ors := find(tree.Root, syntax.KindLogicalOr)
	require.Len(t, ors, 1)
	require.Len(t, ors[0].Children, 2)
	assert.Equal(t, syntax.KindLogicalAnd, ors[0].Children[0].Kind)
}
