package lang

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/python"

	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

var pythonLogicalOps = map[string]syntax.Kind{
	"and": syntax.KindLogicalAnd,
	"or":  syntax.KindLogicalOr,
}

func newPython() *Language {
	return &Language{
		Name:       "Python",
		Aliases:    []string{"py"},
		Extensions: []string{".py", ".pyi"},
		grammar:    python.GetLanguage,
		table: map[string]mapping{
			"function_definition":    {kind: syntax.KindFunction, token: "def"},
			"lambda":                 {kind: syntax.KindLambda, token: "lambda"},
			"for_statement":          {kind: syntax.KindLoop, token: "for"},
			"while_statement":        {kind: syntax.KindLoop, token: "while"},
			"match_statement":        {kind: syntax.KindSelection, token: "match"},
			"conditional_expression": {kind: syntax.KindTernary, token: "?"},
			"except_clause":          {kind: syntax.KindHandler, token: "except"},
			"except_group_clause":    {kind: syntax.KindHandler, token: "except"},
			"else_clause":            {kind: syntax.KindElse, token: "else"},
			"block":                  {kind: syntax.KindBlock},
			"parameters":             {kind: syntax.KindParams},
			"lambda_parameters":      {kind: syntax.KindParams},
			"identifier":             {kind: syntax.KindIdentifier},
		},
		builders: map[string]buildFunc{
			"if_statement":     pythonIf,
			"boolean_operator": logicalBinary(pythonLogicalOps),
		},
	}
}

// pythonIf builds an if statement from python's clause-based grammar.
// Each elif becomes an else keyword node plus a wrapper holding a fresh
// selection, keeping the chain flat for scoring. A final else keeps its
// block nested inside the wrapper. The else clauses of loops and try
// statements are not part of a chain and map through the kind table
// instead.
func pythonIf(b *builder, ts sitter.Node) *syntax.Node {
	sel := b.node(syntax.KindSelection, tokenIf, ts)
	current := sel

	for idx := range ts.NamedChildCount() {
		child := ts.NamedChild(idx)

		switch child.Type() {
		case "elif_clause":
			chained := b.node(syntax.KindSelection, tokenIf, child)
			b.appendChildren(chained, child)

			wrapper := b.node(syntax.KindBlock, "", child)
			wrapper.AddChild(chained)

			current.AddChild(b.node(syntax.KindElse, tokenElse, child))
			current.AddChild(wrapper)
			current = chained
		case "else_clause":
			wrapper := b.node(syntax.KindBlock, "", child)
			b.appendChildren(wrapper, child)

			current.AddChild(b.node(syntax.KindElse, tokenElse, child))
			current.AddChild(wrapper)
		default:
			current.AddChild(b.build(child))
		}
	}

	return sel
}
