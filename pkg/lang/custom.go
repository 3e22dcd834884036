package lang

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

var errInvalidMapping = fmt.Errorf("invalid language mapping")

// CustomSpec describes a language added from a mapping file. The
// grammar is resolved by name through the bundled grammar registry.
// Custom languages normalize through the kind table alone, without the
// structural chain rewriting the built-in languages get, so an else-if
// chain scores by its raw grammar shape.
type CustomSpec struct {
	Name       string            `json:"name"`
	Grammar    string            `json:"grammar"`
	Aliases    []string          `json:"aliases,omitempty"`
	Extensions []string          `json:"extensions,omitempty"`
	Kinds      map[string]string `json:"kinds"`
	Tokens     map[string]string `json:"tokens,omitempty"`
}

// LoadCustom reads a mapping file and returns the language it declares.
func LoadCustom(path string) (*Language, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}

	l, err := ParseCustom(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return l, nil
}

// ParseCustom validates mapping content against the embedded schema and
// builds the language it declares.
func ParseCustom(content []byte) (*Language, error) {
	if err := validateMapping(content); err != nil {
		return nil, err
	}

	var spec CustomSpec
	if err := json.Unmarshal(content, &spec); err != nil {
		return nil, fmt.Errorf("decoding mapping: %w", err)
	}

	table := make(map[string]mapping, len(spec.Kinds))

	for nodeType, kindName := range spec.Kinds {
		kind, err := syntax.ParseKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("node type %s: %w", nodeType, err)
		}

		table[nodeType] = mapping{kind: kind, token: spec.Tokens[nodeType]}
	}

	return &Language{
		Name:       spec.Name,
		Aliases:    spec.Aliases,
		Extensions: spec.Extensions,
		dynamic:    spec.Grammar,
		table:      table,
	}, nil
}

func validateMapping(content []byte) error {
	schemaBytes, err := mappingSchemaFS.ReadFile("mapping-schema.json")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	inputLoader := gojsonschema.NewBytesLoader(content)

	result, err := gojsonschema.Validate(schemaLoader, inputLoader)
	if err != nil {
		return fmt.Errorf("validating mapping: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))

	for _, verr := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return fmt.Errorf("%w: %s", errInvalidMapping, strings.Join(msgs, "; "))
}
