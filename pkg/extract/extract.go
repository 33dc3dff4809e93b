// Package extract maps a parsed AST to the uniform model.FileSymbols
// record, one implementation per supported language.
package extract

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kampus-dev/kampus/pkg/model"
)

// Extractor is the uniform contract every language implements. All four
// operations are pure functions of their inputs.
type Extractor interface {
	// ExtractSymbols returns symbols in source order (by start line).
	ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol
	// ExtractImports returns imports grouped by import form (e.g. ES import
	// statements before require() calls), each group in source order.
	ExtractImports(tree *tree_sitter.Tree, source []byte, filePath string) []model.Import
	// ExtractCalls returns calls in source order of the call node, given
	// the symbols already extracted for this file.
	ExtractCalls(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Call
	// ExtractInheritance returns inheritance edges in source order of the
	// base/impl node, given the symbols already extracted for this file.
	ExtractInheritance(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Inheritance
}

// registry is the dispatch table keyed by language. The orchestrator never
// switches on language directly; it always goes through For/Extract.
var registry = map[model.Language]Extractor{
	model.LangPython:     pythonExtractor{},
	model.LangRust:       rustExtractor{},
	model.LangJavaScript: javascriptExtractor{},
	model.LangTypeScript: typescriptExtractor{},
	model.LangGo:         goExtractor{},
	model.LangCPP:        cppExtractor{},
}

// For returns the Extractor registered for l.
func For(l model.Language) (Extractor, bool) {
	e, ok := registry[l]
	return e, ok
}

// ErrUnsupportedLanguage is fatal: the language registry (pkg/lang) and the
// extractor dispatch table (this package) must agree on the supported set;
// divergence indicates a build problem, not a per-file condition.
type ErrUnsupportedLanguage struct {
	Language model.Language
}

func (e *ErrUnsupportedLanguage) Error() string {
	return fmt.Sprintf("extract: no extractor registered for language %q", e.Language)
}

// Extract runs the full four-stage pipeline for one file and assembles a
// FileSymbols record.
func Extract(l model.Language, tree *tree_sitter.Tree, source []byte, filePath string) (model.FileSymbols, error) {
	e, ok := For(l)
	if !ok {
		return model.FileSymbols{}, &ErrUnsupportedLanguage{Language: l}
	}

	symbols := e.ExtractSymbols(tree, source, filePath)
	imports := e.ExtractImports(tree, source, filePath)
	calls := e.ExtractCalls(tree, source, filePath, symbols)
	inheritance := e.ExtractInheritance(tree, source, filePath, symbols)

	return model.FileSymbols{
		FilePath:    filePath,
		Language:    l,
		ContentHash: model.HashContent(source),
		LineCount:   model.CountLines(source),
		Symbols:     symbols,
		Imports:     imports,
		Calls:       calls,
		Inheritance: inheritance,
	}, nil
}
