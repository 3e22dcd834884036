package walk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cognit/pkg/measure"
	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
	"github.com/Sumatoshi-tech/cognit/pkg/walk"
)

// recordingVisitor captures dispatch order for assertions.
type recordingVisitor struct {
	subs   syntax.KindSet
	enters []*syntax.Node
	exits  []*syntax.Node
	units  []string
}

func (v *recordingVisitor) Subscriptions() syntax.KindSet { return v.subs }

func (v *recordingVisitor) Enter(mc *measure.Context, n *syntax.Node) {
	v.enters = append(v.enters, n)
	v.units = append(v.units, mc.Peek().Name)
}

func (v *recordingVisitor) Exit(_ *measure.Context, n *syntax.Node) {
	v.exits = append(v.exits, n)
}

func buildTree() (*syntax.Tree, *syntax.Node, *syntax.Node) {
	root := &syntax.Node{Kind: syntax.KindFile}
	fn := &syntax.Node{Kind: syntax.KindFunction, Pos: syntax.Position{StartLine: 3}}
	name := &syntax.Node{Kind: syntax.KindIdentifier, Token: "run"}
	body := &syntax.Node{Kind: syntax.KindBlock}
	sel := &syntax.Node{Kind: syntax.KindSelection, Token: "if"}

	root.AddChild(fn)
	fn.AddChild(name)
	fn.AddChild(body)
	body.AddChild(sel)

	return syntax.NewTree(root), fn, sel
}

func TestDriverDispatchesSubscribedKindsOnly(t *testing.T) {
	t.Parallel()

	tree, fn, sel := buildTree()

	v := &recordingVisitor{subs: syntax.NewKindSet(syntax.KindSelection)}

	d := walk.NewDriver(nil)
	d.Register(v)
	d.Run(tree, measure.NewContext("t.go"))

	require.Len(t, v.enters, 1)
	assert.Same(t, sel, v.enters[0])
	require.Len(t, v.exits, 1)
	assert.Same(t, sel, v.exits[0])
	assert.NotContains(t, v.enters, fn)
}

func TestDriverPushesFunctionUnitBeforeDispatch(t *testing.T) {
	t.Parallel()

	tree, fn, _ := buildTree()

	v := &recordingVisitor{subs: syntax.NewKindSet(syntax.KindFunction, syntax.KindSelection)}

	d := walk.NewDriver(func(n *syntax.Node) string {
		if n == fn {
			return "run"
		}

		return ""
	})
	d.Register(v)

	mc := measure.NewContext("t.go")
	d.Run(tree, mc)

	// Both the function node and the nested selection were seen with the
	// function unit active.
	assert.Equal(t, []string{"run", "run"}, v.units)

	// The stack unwound back to the file unit.
	assert.Equal(t, 1, mc.Depth())

	root := mc.Root()
	require.Len(t, root.Children, 1)
	assert.Equal(t, "run", root.Children[0].Name)
	assert.Equal(t, uint32(3), root.Children[0].Pos.StartLine)
}

func TestDriverFallbackFunctionName(t *testing.T) {
	t.Parallel()

	tree, _, _ := buildTree()

	d := walk.NewDriver(nil)

	mc := measure.NewContext("t.go")
	d.Run(tree, mc)

	require.Len(t, mc.Root().Children, 1)
	assert.Equal(t, "func@3", mc.Root().Children[0].Name)
}

func TestDriverMergesSubscriptions(t *testing.T) {
	t.Parallel()

	tree, fn, sel := buildTree()

	a := &recordingVisitor{subs: syntax.NewKindSet(syntax.KindFunction)}
	b := &recordingVisitor{subs: syntax.NewKindSet(syntax.KindSelection)}

	d := walk.NewDriver(nil)
	d.Register(a)
	d.Register(b)
	d.Run(tree, measure.NewContext("t.go"))

	require.Len(t, a.enters, 1)
	assert.Same(t, fn, a.enters[0])
	require.Len(t, b.enters, 1)
	assert.Same(t, sel, b.enters[0])
}

func TestDriverExitAfterSubtree(t *testing.T) {
	t.Parallel()

	root := &syntax.Node{Kind: syntax.KindFile}
	outer := &syntax.Node{Kind: syntax.KindSelection, Token: "if"}
	inner := &syntax.Node{Kind: syntax.KindSelection, Token: "if"}
	root.AddChild(outer)
	outer.AddChild(inner)
	tree := syntax.NewTree(root)

	v := &recordingVisitor{subs: syntax.NewKindSet(syntax.KindSelection)}

	d := walk.NewDriver(nil)
	d.Register(v)
	d.Run(tree, measure.NewContext("t.go"))

	require.Len(t, v.enters, 2)
	require.Len(t, v.exits, 2)
	assert.Same(t, outer, v.enters[0])
	assert.Same(t, inner, v.enters[1])
	assert.Same(t, inner, v.exits[0])
	assert.Same(t, outer, v.exits[1])
}
