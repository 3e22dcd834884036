package lang

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/cognit/pkg/safeconv"
	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

// Keyword tokens attached to normalized nodes.
const (
	tokenIf   = "if"
	tokenElse = "else"
)

// builder converts one parsed tree-sitter tree into normalized nodes.
type builder struct {
	lang   *Language
	source []byte
}

func (b *builder) buildFile(root sitter.Node) *syntax.Node {
	file := b.node(syntax.KindFile, "", root)
	b.appendChildren(file, root)

	return file
}

// build normalizes a single tree-sitter node. Types with a registered
// structural builder go through it; the rest map through the kind table
// and default to KindOther with children preserved, so unmapped grammar
// nodes never hide what sits beneath them.
func (b *builder) build(ts sitter.Node) *syntax.Node {
	typ := ts.Type()

	if fn, ok := b.lang.builders[typ]; ok {
		return fn(b, ts)
	}

	m := b.lang.table[typ]
	out := b.node(m.kind, m.token, ts)

	if m.kind == syntax.KindIdentifier {
		out.Token = b.text(ts)

		return out
	}

	b.appendChildren(out, ts)

	return out
}

// appendChildren builds every named child of ts under parent.
func (b *builder) appendChildren(parent *syntax.Node, ts sitter.Node) {
	for idx := range ts.NamedChildCount() {
		parent.AddChild(b.build(ts.NamedChild(idx)))
	}
}

// appendChildrenExcept builds every named child of ts under parent,
// skipping the child that occupies skip's byte range. Siblings never
// share a start byte, so the range identifies the child.
func (b *builder) appendChildrenExcept(parent *syntax.Node, ts, skip sitter.Node) {
	for idx := range ts.NamedChildCount() {
		child := ts.NamedChild(idx)
		if child.StartByte() == skip.StartByte() && child.EndByte() == skip.EndByte() {
			continue
		}

		parent.AddChild(b.build(child))
	}
}

func (b *builder) node(kind syntax.Kind, token string, ts sitter.Node) *syntax.Node {
	start := ts.StartPoint()
	end := ts.EndPoint()

	return &syntax.Node{
		Kind:  kind,
		Token: token,
		Pos: syntax.Position{
			StartLine:   start.Row + 1,
			StartCol:    start.Column + 1,
			StartOffset: safeconv.MustUintToUint32(ts.StartByte()),
			EndLine:     end.Row + 1,
			EndCol:      end.Column + 1,
			EndOffset:   safeconv.MustUintToUint32(ts.EndByte()),
		},
	}
}

// text returns the source text covered by ts.
func (b *builder) text(ts sitter.Node) string {
	start := ts.StartByte()
	end := ts.EndByte()

	if safeconv.MustUintToInt(end) > len(b.source) {
		return ""
	}

	return string(b.source[start:end])
}

// ifStatement returns a builder for grammar if statements. The
// alternative branch is rewritten into the normalized chain shape: an
// else keyword node followed by a wrapper block holding the branch. A
// chained if sits directly inside the wrapper; a braced branch keeps its
// own block inside it, which is what breaks the chain for scoring.
//
// Grammars differ in what the alternative field holds. Some wrap the
// branch in an else clause node (clause true); others point straight at
// the branch statement.
func ifStatement(clause bool) buildFunc {
	return func(b *builder, ts sitter.Node) *syntax.Node {
		sel := b.node(syntax.KindSelection, tokenIf, ts)

		alt := ts.ChildByFieldName("alternative")
		if alt.IsNull() {
			b.appendChildren(sel, ts)

			return sel
		}

		b.appendChildrenExcept(sel, ts, alt)
		sel.AddChild(b.node(syntax.KindElse, tokenElse, alt))

		wrapper := b.node(syntax.KindBlock, "", alt)
		if clause {
			b.appendChildren(wrapper, alt)
		} else {
			wrapper.AddChild(b.build(alt))
		}

		sel.AddChild(wrapper)

		return sel
	}
}

// logicalBinary returns a builder for binary expressions. The operator
// token decides the kind, and runs of the same logical operator collapse
// into one node, so a chain like a && b && c charges once. Operands keep
// their source order; a parenthesized subexpression stays a separate
// node and charges separately.
func logicalBinary(ops map[string]syntax.Kind) buildFunc {
	return func(b *builder, ts sitter.Node) *syntax.Node {
		kind := syntax.KindOther
		token := ""

		if op := ts.ChildByFieldName("operator"); !op.IsNull() {
			if mapped, ok := ops[op.Type()]; ok {
				kind = mapped
				token = op.Type()
			}
		}

		out := b.node(kind, token, ts)

		for idx := range ts.NamedChildCount() {
			child := b.build(ts.NamedChild(idx))

			if kind != syntax.KindOther && child.Kind == kind {
				for _, operand := range child.Children {
					out.AddChild(operand)
				}

				continue
			}

			out.AddChild(child)
		}

		return out
	}
}

// definition returns a builder for function definitions whose declared
// type precedes the name in source order. The type fields are wrapped so
// their identifiers never win name resolution; parameters and bodies
// already map to skipped kinds.
func definition(typeFields ...string) buildFunc {
	return func(b *builder, ts sitter.Node) *syntax.Node {
		fn := b.node(syntax.KindFunction, "", ts)

		typed := make(map[uint]bool, len(typeFields))

		for _, field := range typeFields {
			if c := ts.ChildByFieldName(field); !c.IsNull() {
				typed[c.StartByte()] = true
			}
		}

		for idx := range ts.NamedChildCount() {
			child := ts.NamedChild(idx)
			built := b.build(child)

			if typed[child.StartByte()] && built.Kind != syntax.KindTypeSpec {
				spec := b.node(syntax.KindTypeSpec, "", child)
				spec.AddChild(built)
				built = spec
			}

			fn.AddChild(built)
		}

		return fn
	}
}

// labeledJump returns a builder for break and continue statements. Only
// the labeled form jumps like a goto; the plain form stays neutral.
func labeledJump(token string) buildFunc {
	return func(b *builder, ts sitter.Node) *syntax.Node {
		if ts.NamedChildCount() == 0 {
			return b.node(syntax.KindOther, token, ts)
		}

		out := b.node(syntax.KindGoto, token, ts)
		b.appendChildren(out, ts)

		return out
	}
}
