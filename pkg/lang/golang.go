package lang

import (
	golang "github.com/alexaandru/go-sitter-forest/go"

	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

var goLogicalOps = map[string]syntax.Kind{
	"&&": syntax.KindLogicalAnd,
	"||": syntax.KindLogicalOr,
}

func newGo() *Language {
	return &Language{
		Name:       "Go",
		Aliases:    []string{"golang"},
		Extensions: []string{".go"},
		grammar:    golang.GetLanguage,
		table: map[string]mapping{
			"function_declaration":        {kind: syntax.KindFunction, token: "func"},
			"method_declaration":          {kind: syntax.KindFunction, token: "func"},
			"func_literal":                {kind: syntax.KindLambda, token: "func"},
			"for_statement":               {kind: syntax.KindLoop, token: "for"},
			"expression_switch_statement": {kind: syntax.KindSelection, token: "switch"},
			"type_switch_statement":       {kind: syntax.KindSelection, token: "switch"},
			"select_statement":            {kind: syntax.KindSelection, token: "select"},
			"goto_statement":              {kind: syntax.KindGoto, token: "goto"},
			"block":                       {kind: syntax.KindBlock},
			"parameter_list":              {kind: syntax.KindParams},
			"identifier":                  {kind: syntax.KindIdentifier},
			"field_identifier":            {kind: syntax.KindIdentifier},
			"type_identifier":             {kind: syntax.KindIdentifier},
			"package_identifier":          {kind: syntax.KindIdentifier},
			"label_name":                  {kind: syntax.KindIdentifier},
		},
		builders: map[string]buildFunc{
			"if_statement":      ifStatement(false),
			"binary_expression": logicalBinary(goLogicalOps),
		},
	}
}
