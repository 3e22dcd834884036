package lang

import (
	"github.com/alexaandru/go-sitter-forest/java"

	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

var javaLogicalOps = map[string]syntax.Kind{
	"&&": syntax.KindLogicalAnd,
	"||": syntax.KindLogicalOr,
}

func newJava() *Language {
	return &Language{
		Name:       "Java",
		Extensions: []string{".java"},
		grammar:    java.GetLanguage,
		table: map[string]mapping{
			"constructor_declaration": {kind: syntax.KindFunction},
			"lambda_expression":       {kind: syntax.KindLambda},
			"for_statement":           {kind: syntax.KindLoop, token: "for"},
			"enhanced_for_statement":  {kind: syntax.KindLoop, token: "for"},
			"while_statement":         {kind: syntax.KindLoop, token: "while"},
			"do_statement":            {kind: syntax.KindLoop, token: "do"},
			"switch_expression":       {kind: syntax.KindSelection, token: "switch"},
			"ternary_expression":      {kind: syntax.KindTernary, token: "?"},
			"catch_clause":            {kind: syntax.KindHandler, token: "catch"},
			"block":                   {kind: syntax.KindBlock},
			"constructor_body":        {kind: syntax.KindBlock},
			"switch_block":            {kind: syntax.KindBlock},
			"formal_parameters":       {kind: syntax.KindParams},
			"inferred_parameters":     {kind: syntax.KindParams},
			"modifiers":               {kind: syntax.KindTypeSpec},
			"type_parameters":         {kind: syntax.KindTypeSpec},
			"identifier":              {kind: syntax.KindIdentifier},
			"type_identifier":         {kind: syntax.KindIdentifier},
		},
		builders: map[string]buildFunc{
			"if_statement":       ifStatement(false),
			"binary_expression":  logicalBinary(javaLogicalOps),
			"method_declaration": definition("type"),
			"break_statement":    labeledJump("break"),
			"continue_statement": labeledJump("continue"),
		},
	}
}
