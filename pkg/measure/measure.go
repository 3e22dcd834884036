// Package measure provides the metric sink the scoring passes write into.
//
// Measurements accumulate against source-code units (one file unit at the
// root, one unit per function definition below it). The tree-walking driver
// maintains the active-unit stack; scoring passes only ever append to
// whichever unit is active when an increment fires.
package measure

import "github.com/Sumatoshi-tech/cognit/pkg/syntax"

// Metric identifies an accumulated measurement.
type Metric string

const (
	// MetricCognitive is the cognitive complexity score.
	MetricCognitive Metric = "cognitive_complexity"
	// MetricRecursion counts lexical recursion sites. Each one also
	// contributes to MetricCognitive; this metric only breaks them out.
	MetricRecursion Metric = "recursive_calls"
)

// UnitKind distinguishes the scopes measurements accumulate against.
type UnitKind uint8

const (
	// UnitFile is the translation-unit scope.
	UnitFile UnitKind = iota
	// UnitFunction is a function-definition scope.
	UnitFunction
)

// Unit is one source-code scope accumulating metric values.
type Unit struct {
	// Kind is the scope kind.
	Kind UnitKind
	// Name is the file path or resolved function name.
	Name string
	// Pos is the scope's source location. Zero for file units.
	Pos syntax.Position
	// Children are nested units in document order.
	Children []*Unit

	totals map[Metric]int
}

// Total returns the accumulated value for a metric, zero when nothing has
// been added.
func (u *Unit) Total(m Metric) int {
	return u.totals[m]
}

func (u *Unit) add(m Metric, amount int) {
	if u.totals == nil {
		u.totals = make(map[Metric]int)
	}

	u.totals[m] += amount
}

// Walk visits u and every nested unit in document order.
func (u *Unit) Walk(visit func(*Unit)) {
	visit(u)

	for _, c := range u.Children {
		c.Walk(visit)
	}
}

// Context is the active-unit stack for one analysis pass over one
// translation unit. It is not safe for concurrent use; parallel passes use
// independent contexts.
type Context struct {
	root  *Unit
	stack []*Unit
}

// NewContext creates a pass context rooted at a file unit.
func NewContext(fileName string) *Context {
	root := &Unit{Kind: UnitFile, Name: fileName}

	return &Context{root: root, stack: []*Unit{root}}
}

// PushFunction enters a function scope: a new unit is created under the
// active unit and becomes the target of subsequent Add calls.
func (c *Context) PushFunction(name string, pos syntax.Position) *Unit {
	unit := &Unit{Kind: UnitFunction, Name: name, Pos: pos}

	top := c.Peek()
	top.Children = append(top.Children, unit)
	c.stack = append(c.stack, unit)

	return unit
}

// Pop leaves the current scope. The root file unit is never popped.
func (c *Context) Pop() {
	if len(c.stack) > 1 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

// Peek returns the active unit.
func (c *Context) Peek() *Unit {
	return c.stack[len(c.stack)-1]
}

// Add appends an amount to a metric on the active unit. Append-only: there
// is no way to retract a recorded increment.
func (c *Context) Add(m Metric, amount int) {
	c.Peek().add(m, amount)
}

// Root returns the file unit with all nested function units.
func (c *Context) Root() *Unit {
	return c.root
}

// Depth returns the current stack depth, 1 when only the file unit is
// active.
func (c *Context) Depth() int {
	return len(c.stack)
}
