package lang

import (
	"github.com/alexaandru/go-sitter-forest/javascript"

	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

var jsLogicalOps = map[string]syntax.Kind{
	"&&": syntax.KindLogicalAnd,
	"||": syntax.KindLogicalOr,
}

func newJavaScript() *Language {
	return &Language{
		Name:       "JavaScript",
		Aliases:    []string{"js", "node"},
		Extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
		grammar:    javascript.GetLanguage,
		table: map[string]mapping{
			"function_declaration":           {kind: syntax.KindFunction, token: "function"},
			"generator_function_declaration": {kind: syntax.KindFunction, token: "function"},
			"method_definition":              {kind: syntax.KindFunction},
			"function_expression":            {kind: syntax.KindLambda, token: "function"},
			"generator_function":             {kind: syntax.KindLambda, token: "function"},
			"arrow_function":                 {kind: syntax.KindLambda},
			"for_statement":                  {kind: syntax.KindLoop, token: "for"},
			"for_in_statement":               {kind: syntax.KindLoop, token: "for"},
			"while_statement":                {kind: syntax.KindLoop, token: "while"},
			"do_statement":                   {kind: syntax.KindLoop, token: "do"},
			"switch_statement":               {kind: syntax.KindSelection, token: "switch"},
			"ternary_expression":             {kind: syntax.KindTernary, token: "?"},
			"catch_clause":                   {kind: syntax.KindHandler, token: "catch"},
			"statement_block":                {kind: syntax.KindBlock},
			"formal_parameters":              {kind: syntax.KindParams},
			"identifier":                     {kind: syntax.KindIdentifier},
			"property_identifier":            {kind: syntax.KindIdentifier},
			"shorthand_property_identifier":  {kind: syntax.KindIdentifier},
			"statement_identifier":           {kind: syntax.KindIdentifier},
		},
		builders: map[string]buildFunc{
			"if_statement":       ifStatement(true),
			"binary_expression":  logicalBinary(jsLogicalOps),
			"break_statement":    labeledJump("break"),
			"continue_statement": labeledJump("continue"),
		},
	}
}
