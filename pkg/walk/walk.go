// Package walk drives scoring passes over a normalized syntax tree.
//
// The driver walks the tree depth-first in document order and dispatches
// each node to the visitors subscribed to its kind. It also owns the
// active-unit stack: a function unit is pushed before visitors see the
// function node, so every increment a visitor emits while processing that
// node or its subtree lands on the function's unit.
package walk

import (
	"fmt"

	"github.com/Sumatoshi-tech/cognit/pkg/measure"
	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

// Visitor is a scoring pass. The driver guarantees delivery for the kinds
// in Subscriptions but may deliver other kinds as well; visitors must
// category-check rather than rely on the registration set being exact.
type Visitor interface {
	// Subscriptions returns the node kinds the driver must deliver.
	Subscriptions() syntax.KindSet
	// Enter is called when the driver reaches a subscribed node.
	Enter(mc *measure.Context, n *syntax.Node)
	// Exit is called after the node's subtree has been walked.
	Exit(mc *measure.Context, n *syntax.Node)
}

// NameResolver resolves the declared name of a function-definition node
// for unit bookkeeping. Returning an empty string falls back to a
// positional name.
type NameResolver func(fn *syntax.Node) string

// Driver dispatches registered visitors over one tree per Run call.
type Driver struct {
	visitors []Visitor
	union    syntax.KindSet
	resolve  NameResolver
}

// NewDriver creates a driver. The resolver may be nil; function units are
// then named by position only.
func NewDriver(resolve NameResolver) *Driver {
	return &Driver{resolve: resolve}
}

// Register adds a visitor and merges its subscriptions into the dispatch
// set.
func (d *Driver) Register(v Visitor) {
	d.visitors = append(d.visitors, v)
	d.union = d.union.Union(v.Subscriptions())
}

// Run walks the tree once, dispatching visitors and maintaining the unit
// stack on the given context. Visitors must have been constructed for this
// tree; reusing a visitor across trees is a caller error.
func (d *Driver) Run(tree *syntax.Tree, mc *measure.Context) {
	d.walkNode(tree.Root, mc)
}

func (d *Driver) walkNode(n *syntax.Node, mc *measure.Context) {
	isFunction := n.Kind == syntax.KindFunction
	if isFunction {
		mc.PushFunction(d.functionName(n), n.Pos)
	}

	dispatch := d.union.Contains(n.Kind)
	if dispatch {
		for _, v := range d.visitors {
			if v.Subscriptions().Contains(n.Kind) {
				v.Enter(mc, n)
			}
		}
	}

	for _, c := range n.Children {
		d.walkNode(c, mc)
	}

	if dispatch {
		for _, v := range d.visitors {
			if v.Subscriptions().Contains(n.Kind) {
				v.Exit(mc, n)
			}
		}
	}

	if isFunction {
		mc.Pop()
	}
}

func (d *Driver) functionName(fn *syntax.Node) string {
	if d.resolve != nil {
		if name := d.resolve(fn); name != "" {
			return name
		}
	}

	return fmt.Sprintf("func@%d", fn.Pos.StartLine)
}
