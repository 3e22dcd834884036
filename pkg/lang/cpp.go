package lang

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/cpp"

	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

// cppLogicalOps includes the ISO alternative spellings, which parse as
// the same operators.
var cppLogicalOps = map[string]syntax.Kind{
	"&&":  syntax.KindLogicalAnd,
	"and": syntax.KindLogicalAnd,
	"||":  syntax.KindLogicalOr,
	"or":  syntax.KindLogicalOr,
}

func newCPP() *Language {
	return &Language{
		Name:       "C++",
		Aliases:    []string{"cpp", "cxx"},
		Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx", ".h"},
		grammar:    cpp.GetLanguage,
		table: map[string]mapping{
			"for_statement":          {kind: syntax.KindLoop, token: "for"},
			"for_range_loop":         {kind: syntax.KindLoop, token: "for"},
			"while_statement":        {kind: syntax.KindLoop, token: "while"},
			"do_statement":           {kind: syntax.KindLoop, token: "do"},
			"switch_statement":       {kind: syntax.KindSelection, token: "switch"},
			"conditional_expression": {kind: syntax.KindTernary, token: "?"},
			"goto_statement":         {kind: syntax.KindGoto, token: "goto"},
			"catch_clause":           {kind: syntax.KindHandler, token: "catch"},
			"lambda_expression":      {kind: syntax.KindLambda},
			"compound_statement":     {kind: syntax.KindBlock},
			"parameter_list":         {kind: syntax.KindParams},
			"identifier":             {kind: syntax.KindIdentifier},
			"field_identifier":       {kind: syntax.KindIdentifier},
			"type_identifier":        {kind: syntax.KindIdentifier},
			"namespace_identifier":   {kind: syntax.KindIdentifier},
			"statement_identifier":   {kind: syntax.KindIdentifier},
		},
		builders: map[string]buildFunc{
			"if_statement":        ifStatement(true),
			"binary_expression":   logicalBinary(cppLogicalOps),
			"function_definition": cFamilyFunction,
		},
	}
}

// cFamilyFunction builds a function definition from the C grammar
// family. The declarator chain is unwound down to the function
// declarator, the declared name lands directly under the function node,
// and scope qualifiers, return types, and parameters end up in the kinds
// name resolution skips.
func cFamilyFunction(b *builder, ts sitter.Node) *syntax.Node {
	fn := b.node(syntax.KindFunction, "", ts)

	if typ := ts.ChildByFieldName("type"); !typ.IsNull() {
		spec := b.node(syntax.KindTypeSpec, "", typ)
		spec.AddChild(b.build(typ))
		fn.AddChild(spec)
	}

	if decl := ts.ChildByFieldName("declarator"); !decl.IsNull() {
		b.appendDeclarator(fn, decl)
	}

	if body := ts.ChildByFieldName("body"); !body.IsNull() {
		fn.AddChild(b.build(body))
	}

	return fn
}

// appendDeclarator unwinds pointer and reference declarators down to
// the function declarator.
func (b *builder) appendDeclarator(fn *syntax.Node, decl sitter.Node) {
	for {
		switch decl.Type() {
		case "pointer_declarator", "reference_declarator":
			inner := decl.ChildByFieldName("declarator")
			if inner.IsNull() {
				fn.AddChild(b.build(decl))

				return
			}

			decl = inner
		case "function_declarator":
			b.appendFunctionDeclarator(fn, decl)

			return
		default:
			fn.AddChild(b.build(decl))

			return
		}
	}
}

// appendFunctionDeclarator splits a function declarator into the
// declared name and the rest, qualifiers first.
func (b *builder) appendFunctionDeclarator(fn *syntax.Node, decl sitter.Node) {
	inner := decl.ChildByFieldName("declarator")

	switch {
	case inner.IsNull():
	case inner.Type() == "qualified_identifier":
		b.appendQualifiedName(fn, inner)
	default:
		fn.AddChild(b.build(inner))
	}

	for idx := range decl.NamedChildCount() {
		child := decl.NamedChild(idx)
		if !inner.IsNull() && child.StartByte() == inner.StartByte() {
			continue
		}

		fn.AddChild(b.build(child))
	}
}

// appendQualifiedName splits Class::method into scope wrappers and the
// trailing name, descending nested qualifiers left to right.
func (b *builder) appendQualifiedName(fn *syntax.Node, qid sitter.Node) {
	for qid.Type() == "qualified_identifier" {
		if scope := qid.ChildByFieldName("scope"); !scope.IsNull() {
			spec := b.node(syntax.KindScopeSpec, "", scope)
			spec.AddChild(b.build(scope))
			fn.AddChild(spec)
		}

		name := qid.ChildByFieldName("name")
		if name.IsNull() {
			return
		}

		qid = name
	}

	fn.AddChild(b.build(qid))
}
