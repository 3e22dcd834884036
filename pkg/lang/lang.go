// Package lang turns source files into normalized syntax trees.
//
// Each supported language pairs a tree-sitter grammar with a mapping from
// concrete node types to the small kind vocabulary the scorers consume.
// Chain constructs are rewritten during normalization so that downstream
// passes see one canonical shape per language: an else branch always
// appears as an else keyword node followed by a wrapper block, and a
// sequence of identical logical operators collapses into a single node.
package lang

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	forest "github.com/alexaandru/go-sitter-forest"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

var (
	errGrammarNotAvailable = fmt.Errorf("grammar not available")
	errNoRootNode          = fmt.Errorf("no root node found in parse tree")
	errPoolType            = fmt.Errorf("unexpected type from parser pool")
)

// mapping binds a tree-sitter node type to its normalized kind. Token is
// the fixed keyword text for that kind; identifier tokens come from the
// source instead.
type mapping struct {
	kind  syntax.Kind
	token string
}

// buildFunc builds a normalized node for a tree-sitter node type that
// needs structural rewriting beyond a plain kind mapping.
type buildFunc func(b *builder, ts sitter.Node) *syntax.Node

// Language describes one supported source language: how to detect it,
// how to parse it, and how to normalize its concrete tree.
type Language struct {
	// Name is the canonical language name, matching enry naming.
	Name string
	// Aliases are alternate names accepted in configuration.
	Aliases []string
	// Extensions are recognized file extensions including the dot.
	Extensions []string

	grammar  func() unsafe.Pointer
	dynamic  string
	table    map[string]mapping
	builders map[string]buildFunc

	initOnce   sync.Once
	initErr    error
	sitterLang *sitter.Language
	parserPool sync.Pool
}

// init resolves the tree-sitter grammar and prepares the parser pool.
// Languages registered from mapping files resolve their grammar by name
// through the forest registry; the lookup panics for unknown grammars,
// so it runs behind a recover.
func (l *Language) init() error {
	l.initOnce.Do(func() {
		var grammarLang *sitter.Language

		if l.grammar != nil {
			grammarLang = sitter.NewLanguage(l.grammar())
		} else {
			func() {
				defer func() {
					_ = recover() //nolint:errcheck // recover() returns any, not error
				}()

				grammarLang = forest.GetLanguage(l.dynamic)
			}()
		}

		if grammarLang == nil {
			l.initErr = fmt.Errorf("%w: %s", errGrammarNotAvailable, l.Name)

			return
		}

		l.sitterLang = grammarLang
		l.parserPool = sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(grammarLang)

				return tsParser
			},
		}
	})

	return l.initErr
}

// Parse parses content and returns the normalized tree.
func (l *Language) Parse(ctx context.Context, content []byte) (*syntax.Tree, error) {
	if err := l.init(); err != nil {
		return nil, err
	}

	tsParser, ok := l.parserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer l.parserPool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", l.Name, err)
	}

	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	b := &builder{lang: l, source: content}

	return syntax.NewTree(b.buildFile(root)), nil
}
