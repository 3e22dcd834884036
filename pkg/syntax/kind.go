// Package syntax defines the normalized syntax tree the scoring passes
// operate on. Language frontends translate concrete parser output into this
// form; everything downstream sees only node kinds, token text and structure.
package syntax

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a mapping names a kind outside the
// vocabulary.
var ErrUnknownKind = errors.New("unknown node kind")

// Kind classifies a node into the closed vocabulary the scoring passes
// understand. Frontends map concrete grammar node types onto these values.
type Kind uint8

const (
	// KindOther is a structural node with no scoring significance of its own.
	KindOther Kind = iota
	// KindFile is the root node of one translation unit.
	KindFile
	// KindFunction is a named function or method definition.
	KindFunction
	// KindLambda is an anonymous function, closure or lambda expression.
	KindLambda
	// KindSelection is a branching statement. Token holds the leading
	// keyword, "if" or "switch".
	KindSelection
	// KindLoop is an iteration statement (for, while, do, range).
	KindLoop
	// KindHandler is an exception handler clause (catch, except).
	KindHandler
	// KindTernary is a conditional expression.
	KindTernary
	// KindLogicalAnd is a sequence of logical-AND operands. Frontends
	// flatten chains of the same operator into one node.
	KindLogicalAnd
	// KindLogicalOr is a sequence of logical-OR operands, flattened the
	// same way as KindLogicalAnd.
	KindLogicalOr
	// KindElse is the else keyword introducing an alternative branch.
	KindElse
	// KindGoto is an unconditional jump statement.
	KindGoto
	// KindIdentifier is a name reference. Token holds the identifier text.
	KindIdentifier
	// KindParams is a parameter list, including method receivers.
	KindParams
	// KindTypeSpec is a return type or declaration specifier sequence.
	KindTypeSpec
	// KindScopeSpec is a qualified-name prefix (namespace or class scope).
	KindScopeSpec
	// KindBlock is a statement container such as a function body or a
	// branch body.
	KindBlock

	kindCount
)

// kindNames maps each Kind to its canonical lowercase name. The names are
// the vocabulary used by custom mapping files and report output.
var kindNames = [kindCount]string{
	KindOther:      "other",
	KindFile:       "file",
	KindFunction:   "function",
	KindLambda:     "lambda",
	KindSelection:  "selection",
	KindLoop:       "loop",
	KindHandler:    "handler",
	KindTernary:    "ternary",
	KindLogicalAnd: "logical_and",
	KindLogicalOr:  "logical_or",
	KindElse:       "else",
	KindGoto:       "goto",
	KindIdentifier: "identifier",
	KindParams:     "params",
	KindTypeSpec:   "type_spec",
	KindScopeSpec:  "scope_spec",
	KindBlock:      "block",
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}

	return kindNames[k]
}

// ParseKind resolves a canonical kind name as used in mapping files.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil //nolint:gosec // k is bounded by kindCount.
		}
	}

	return KindOther, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
