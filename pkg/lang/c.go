package lang

import (
	"github.com/alexaandru/go-sitter-forest/c"

	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

var cLogicalOps = map[string]syntax.Kind{
	"&&": syntax.KindLogicalAnd,
	"||": syntax.KindLogicalOr,
}

func newC() *Language {
	return &Language{
		Name:       "C",
		Extensions: []string{".c", ".h"},
		grammar:    c.GetLanguage,
		table: map[string]mapping{
			"for_statement":          {kind: syntax.KindLoop, token: "for"},
			"while_statement":        {kind: syntax.KindLoop, token: "while"},
			"do_statement":           {kind: syntax.KindLoop, token: "do"},
			"switch_statement":       {kind: syntax.KindSelection, token: "switch"},
			"conditional_expression": {kind: syntax.KindTernary, token: "?"},
			"goto_statement":         {kind: syntax.KindGoto, token: "goto"},
			"compound_statement":     {kind: syntax.KindBlock},
			"parameter_list":         {kind: syntax.KindParams},
			"identifier":             {kind: syntax.KindIdentifier},
			"field_identifier":       {kind: syntax.KindIdentifier},
			"type_identifier":        {kind: syntax.KindIdentifier},
			"statement_identifier":   {kind: syntax.KindIdentifier},
		},
		builders: map[string]buildFunc{
			"if_statement":        ifStatement(true),
			"binary_expression":   logicalBinary(cLogicalOps),
			"function_definition": cFamilyFunction,
		},
	}
}
