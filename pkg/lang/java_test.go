package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cognit/pkg/cognitive"
	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

func TestParseJavaElseIfChainShape(t *testing.T) {
	t.Parallel()

	src := `class Box {
  String label(int x) {
    if (x == 1) {
      return "one";
    } else if (x == 2) {
      return "two";
    } else {
      return "many";
    }
  }
}
`
	tree := parse(t, "java", src)

	fns := find(tree.Root, syntax.KindFunction)
	require.Len(t, fns, 1)
	assert.Equal(t, "label", cognitive.FunctionNameOf(fns[0]))

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

func TestParseJavaConstructor(t *testing.T) {
	t.Parallel()

	src := `class Queue {
  int cap;

  Queue(int cap) {
    this.cap = cap;
  }
}
`
	tree := parse(t, "java", src)

	fns := find(tree.Root, syntax.KindFunction)
	require.Len(t, fns, 1)
	assert.Equal(t, "Queue", cognitive.FunctionNameOf(fns[0]))
}

func TestParseJavaLoopTernaryHandler(t *testing.T) {
	t.Parallel()

	src := `class Util {
  static int total(int[] xs) {
    int sum = 0;
    try {
      for (int x : xs) {
        sum += x > 0 ? x : 0;
      }
    } catch (Exception e) {
      return -1;
    }
    return sum;
  }
}
`
	tree := parse(t, "java", src)

	loops := find(tree.Root, syntax.KindLoop)
	require.Len(t, loops, 1)
	assert.Equal(t, "for", loops[0].Token)

	assert.Len(t, find(tree.Root, syntax.KindTernary), 1)

	handlers := find(tree.Root, syntax.KindHandler)
	require.Len(t, handlers, 1)
	assert.Equal(t, "catch", handlers[0].Token)
}

func TestParseJavaLambdaAndLogicalChain(t *testing.T) {
	t.Parallel()

	src := `class Gate {
  boolean open(boolean a, boolean b, boolean c) {
    Runnable r = () -> log();
    return a && b && c;
  }
}
`
	tree := parse(t, "java", src)

	assert.Len(t, find(tree.Root, syntax.KindLambda), 1)

	ands := find(tree.Root, syntax.KindLogicalAnd)
	require.Len(t, ands, 1)
	assert.Len(t, ands[0].Children, 3)
}
