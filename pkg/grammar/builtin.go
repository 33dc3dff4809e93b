// Package grammar provides the compiled-in tree-sitter grammar registry for
// the six languages this indexer understands. All grammars are linked via
// CGO at build time; there is no runtime download or dynamic loading path —
// the Language registry is a closed set and every member is always available.
package grammar

import (
	"fmt"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/kampus-dev/kampus/pkg/model"
)

// BuiltinProvider is the signature exposed by tree-sitter grammar Go
// bindings: a function returning an unsafe.Pointer to a TSLanguage.
type BuiltinProvider func() unsafe.Pointer

// ErrGrammarNotFound is returned when a language has no registered grammar.
type ErrGrammarNotFound struct {
	Language model.Language
}

func (e *ErrGrammarNotFound) Error() string {
	return fmt.Sprintf("grammar: no compiled-in grammar for language %q", e.Language)
}

// Registry is the static, compiled-in grammar registry for the six
// supported languages. It lazily constructs and caches each
// *tree_sitter.Language on first use; construction is cheap but not free,
// so results are memoized behind a mutex (the registry itself is shared;
// the parsers built from its languages are not, see pkg/parser).
type Registry struct {
	mu        sync.RWMutex
	providers map[model.Language]BuiltinProvider
	loaded    map[model.Language]*tree_sitter.Language
}

// NewRegistry builds a Registry preloaded with all six providers.
func NewRegistry() *Registry {
	r := &Registry{
		providers: make(map[model.Language]BuiltinProvider),
		loaded:    make(map[model.Language]*tree_sitter.Language),
	}
	r.providers[model.LangGo] = tree_sitter_go.Language
	r.providers[model.LangTypeScript] = func() unsafe.Pointer {
		return tree_sitter_typescript.LanguageTypescript()
	}
	r.providers[model.LangJavaScript] = tree_sitter_javascript.Language
	r.providers[model.LangPython] = tree_sitter_python.Language
	r.providers[model.LangRust] = tree_sitter_rust.Language
	r.providers[model.LangCPP] = tree_sitter_cpp.Language
	return r
}

// Load returns the tree-sitter Language for l, constructing and caching it
// on first use.
func (r *Registry) Load(l model.Language) (*tree_sitter.Language, error) {
	r.mu.RLock()
	if lang, ok := r.loaded[l]; ok {
		r.mu.RUnlock()
		return lang, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if lang, ok := r.loaded[l]; ok {
		return lang, nil
	}

	provider, ok := r.providers[l]
	if !ok {
		return nil, &ErrGrammarNotFound{Language: l}
	}

	lang := tree_sitter.NewLanguage(provider())
	if lang == nil {
		return nil, &ErrGrammarNotFound{Language: l}
	}
	r.loaded[l] = lang
	return lang, nil
}

// Languages returns the closed set of languages this registry serves.
func (r *Registry) Languages() []model.Language {
	return []model.Language{
		model.LangGo,
		model.LangTypeScript,
		model.LangJavaScript,
		model.LangPython,
		model.LangRust,
		model.LangCPP,
	}
}
