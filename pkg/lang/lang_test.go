package lang_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cognit/pkg/lang"
	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

// parse runs a snippet through the named built-in language.
func parse(t *testing.T, name, src string) *syntax.Tree {
	t.Helper()

	l, ok := lang.DefaultRegistry().ByName(name)
	require.True(t, ok, "language %q not registered", name)

	tree, err := l.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	return tree
}

// find returns all descendants of root with the given kind, in document
// order.
func find(root *syntax.Node, kind syntax.Kind) []*syntax.Node {
	return root.DescendantsInSet(syntax.NewKindSet(kind))
}

// kindsOf lists the kinds of nodes in order.
func kindsOf(nodes []*syntax.Node) []syntax.Kind {
	kinds := make([]syntax.Kind, 0, len(nodes))
	for _, n := range nodes {
		kinds = append(kinds, n.Kind)
	}

	return kinds
}
