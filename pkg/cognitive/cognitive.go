// Package cognitive implements the Cognitive Complexity metric.
//
// Cognitive Complexity penalizes constructs that break the linear reading
// flow of a function, and penalizes them harder the deeper they nest.
// Unlike cyclomatic complexity it charges a boolean operator sequence once
// instead of per operator, exempts else-if chains from nesting penalties
// and adds a penalty for lexical recursion.
package cognitive

import (
	"github.com/Sumatoshi-tech/cognit/pkg/measure"
	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

const tokenIf = "if"

// The category sets below drive the whole computation. They are built once;
// every per-node decision is a single bitset test.
var (
	// descendantScanSet holds the kinds a node's internal descendant scan
	// collects. It is also the set the scorer registers with the driver.
	descendantScanSet = syntax.NewKindSet(
		syntax.KindHandler,
		syntax.KindLoop,
		syntax.KindLambda,
		syntax.KindLogicalAnd,
		syntax.KindLogicalOr,
		syntax.KindSelection,
		syntax.KindElse,
		syntax.KindGoto,
		syntax.KindTernary,
		syntax.KindIdentifier,
	)

	// flatIncrementSet holds the kinds that add a fixed +1. Lambdas nest
	// without charging; identifiers only participate in recursion
	// detection.
	flatIncrementSet = descendantScanSet.Without(syntax.KindLambda, syntax.KindIdentifier)

	// nestingLevelSet holds the kinds that deepen nesting while their
	// subtree is scored.
	nestingLevelSet = syntax.NewKindSet(
		syntax.KindHandler,
		syntax.KindLoop,
		syntax.KindLambda,
		syntax.KindSelection,
		syntax.KindTernary,
	)

	// nestingIncrementSet holds the kinds that pay the nesting penalty on
	// top of the flat increment.
	nestingIncrementSet = syntax.NewKindSet(
		syntax.KindHandler,
		syntax.KindLoop,
		syntax.KindSelection,
		syntax.KindTernary,
	)

	// functionNameExclusions are the subtrees skipped when resolving a
	// function's declared name: parameter lists, type specifiers, scope
	// qualifiers and the body.
	functionNameExclusions = syntax.NewKindSet(
		syntax.KindTypeSpec,
		syntax.KindScopeSpec,
		syntax.KindParams,
		syntax.KindBlock,
	)

	identifierOnly = syntax.NewKindSet(syntax.KindIdentifier)
	functionOnly   = syntax.NewKindSet(syntax.KindFunction)
)

// Scorer computes cognitive complexity for one syntax tree.
//
// A scorer carries three pieces of per-pass state: the visited bookkeeping
// (keyed by node index, sized for the tree at construction), the nesting
// counter and the current function identifier. None of it is shared;
// parallel analysis across files uses an independent scorer per tree.
type Scorer struct {
	visited []bool
	nesting int

	// currentFunction is the declared-name identifier of the function
	// definition seen most recently, nil until the first one.
	currentFunction *syntax.Node

	orphanIdentifiers int
}

// NewScorer creates a scorer for one tree. The scorer must only be fed
// nodes from that tree.
func NewScorer(tree *syntax.Tree) *Scorer {
	return &Scorer{visited: make([]bool, tree.NodeCount)}
}

// Subscriptions returns the kinds the driver must deliver: the descendant
// scan set plus function definitions, which carry the name needed for
// recursion detection.
func (s *Scorer) Subscriptions() syntax.KindSet {
	return descendantScanSet.Union(functionOnly)
}

// Enter scores a node and, through its internal descendant scan, every
// qualifying node below it that has not been scored yet. Scoring the same
// node again has no effect, so duplicate delivery by the driver is
// harmless.
func (s *Scorer) Enter(mc *measure.Context, n *syntax.Node) {
	s.score(mc, n)
}

// Exit is a no-op; all scoring happens on entry.
func (s *Scorer) Exit(_ *measure.Context, _ *syntax.Node) {}

// OrphanIdentifiers reports how many identifiers were scored before any
// function definition had been seen. Recursion detection was skipped for
// them.
func (s *Scorer) OrphanIdentifiers() int {
	return s.orphanIdentifiers
}

func (s *Scorer) score(mc *measure.Context, n *syntax.Node) {
	if s.visited[n.Index] {
		return
	}

	s.visited[n.Index] = true

	if n.Kind == syntax.KindFunction {
		s.currentFunction = s.resolveFunctionName(n)
	}

	watched := n.DescendantsInSet(descendantScanSet)

	chained := isElseIf(n)

	nests := nestingLevelSet.Contains(n.Kind) && !chained
	if nests {
		s.nesting++
	}

	for _, d := range watched {
		s.score(mc, d)
	}

	if nests {
		s.nesting--
	}

	// The recursive calls just marked every watched node, but marking the
	// whole scan result keeps the pass idempotent even if a descendant is
	// ever filtered out of the recursion.
	for _, d := range watched {
		s.visited[d.Index] = true
	}

	if n.Kind == syntax.KindIdentifier {
		s.scoreRecursion(mc, n)
	}

	if flatIncrementSet.Contains(n.Kind) && !chained {
		mc.Add(measure.MetricCognitive, 1)
	}

	// The nesting counter is back to the level outside this node, which
	// is exactly the penalty a nesting construct pays.
	if nestingIncrementSet.Contains(n.Kind) && !chained {
		mc.Add(measure.MetricCognitive, s.nesting)
	}
}

// scoreRecursion charges one increment when an identifier matches the
// enclosing function's declared name. The match is lexical: a shadowed or
// otherwise unrelated use of the name counts too, there is no call-graph
// analysis behind this.
func (s *Scorer) scoreRecursion(mc *measure.Context, n *syntax.Node) {
	if s.currentFunction == nil {
		// File-scope identifier before the first function definition.
		// Routine in scripting languages; there is no reference name to
		// compare against yet.
		s.orphanIdentifiers++

		return
	}

	if n.Index == s.currentFunction.Index {
		return
	}

	if n.Token == s.currentFunction.Token {
		mc.Add(measure.MetricCognitive, 1)
		mc.Add(measure.MetricRecursion, 1)
	}
}

// resolveFunctionName locates the declared-name identifier of a function
// definition. When nothing qualifies (malformed or anonymous definitions)
// the previously resolved identifier is kept, so recursion detection
// degrades instead of failing.
func (s *Scorer) resolveFunctionName(fn *syntax.Node) *syntax.Node {
	if id := findFunctionName(fn); id != nil {
		return id
	}

	return s.currentFunction
}

// findFunctionName returns the first identifier descendant of a function
// definition that sits outside the name-exclusion subtrees, nil when there
// is none. The ancestor walk stops at the definition itself, so nested
// definitions resolve against their own header.
func findFunctionName(fn *syntax.Node) *syntax.Node {
	for _, id := range fn.DescendantsInSet(identifierOnly) {
		if id.HasAncestorInSet(fn, functionNameExclusions) {
			continue
		}

		return id
	}

	return nil
}

// FunctionNameOf resolves the declared name of a function-definition node,
// or "" for anonymous and malformed definitions.
func FunctionNameOf(fn *syntax.Node) string {
	if id := findFunctionName(fn); id != nil {
		return id.Token
	}

	return ""
}

// isElseIf reports whether a selection is the continuation of an enclosing
// conditional chain: an if whose wrapper's preceding sibling is the else
// keyword. Chained selections neither deepen nesting nor pay increments;
// the else keyword itself carries the chain's +1, so a chain costs the
// same as a flat switch. A braced alternative gets its own block level and
// therefore never qualifies.
func isElseIf(n *syntax.Node) bool {
	if n.Kind != syntax.KindSelection || n.Token != tokenIf {
		return false
	}

	if n.Parent == nil {
		return false
	}

	prev := n.Parent.PrevSibling()

	return prev != nil && prev.Kind == syntax.KindElse
}
