package lang

import (
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"
)

// Registry resolves file paths and language names to registered
// languages.
type Registry struct {
	languages []*Language
	byName    map[string]*Language
	byExt     map[string]*Language
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Language),
		byExt:  make(map[string]*Language),
	}
}

// DefaultRegistry returns a registry holding every built-in language.
func DefaultRegistry() *Registry {
	reg := NewRegistry()

	for _, l := range []*Language{
		newC(),
		newCPP(),
		newGo(),
		newJava(),
		newJavaScript(),
		newPython(),
	} {
		reg.Register(l)
	}

	return reg
}

// Register adds a language. Later registrations win name collisions; an
// extension claimed by two languages becomes ambiguous and is resolved
// by content classification instead.
func (r *Registry) Register(l *Language) {
	r.languages = append(r.languages, l)
	r.byName[strings.ToLower(l.Name)] = l

	for _, alias := range l.Aliases {
		r.byName[strings.ToLower(alias)] = l
	}

	for _, ext := range l.Extensions {
		ext = strings.ToLower(ext)

		if _, seen := r.byExt[ext]; seen {
			r.byExt[ext] = nil

			continue
		}

		r.byExt[ext] = l
	}
}

// Languages returns the registered languages in registration order.
func (r *Registry) Languages() []*Language {
	return r.languages
}

// ByName looks a language up by canonical name or alias.
func (r *Registry) ByName(name string) (*Language, bool) {
	l, ok := r.byName[strings.ToLower(name)]

	return l, ok
}

// Detect resolves the language of a file. Unambiguous extensions answer
// directly; everything else goes through enry's classifier, which may
// consult the content.
func (r *Registry) Detect(path string, content []byte) (*Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if l, ok := r.byExt[ext]; ok && l != nil {
		return l, true
	}

	name := enry.GetLanguage(filepath.Base(path), content)
	if name == "" {
		return nil, false
	}

	l, ok := r.byName[strings.ToLower(name)]

	return l, ok
}
