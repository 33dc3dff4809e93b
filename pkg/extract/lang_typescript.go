package extract

import (
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kampus-dev/kampus/pkg/model"
)

// typescriptExtractor reuses the JavaScript contract (tree-sitter-typescript
// is a superset grammar) and additionally recognizes interfaces and type
// aliases, per spec's "JavaScript contract is the detail floor" rule.
type typescriptExtractor struct{}

func tsInterfaceOrAlias(node *tree_sitter.Node, source []byte, filePath string) (model.Symbol, bool) {
	nameNode := firstChildOfKind(node, "type_identifier")
	if nameNode == nil {
		return model.Symbol{}, false
	}
	name := nodeText(nameNode, source)
	start := startLine(node)

	return model.Symbol{
		ID:         model.GenerateSymbolID(filePath, name, start),
		Name:       name,
		Kind:       model.KindInterface,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(node),
		Signature:  signature(node, source),
		Visibility: model.VisibilityPublic,
		Docstring:  jsPrecedingComment(node, source),
		Language:   model.LangTypeScript,
	}, true
}

func (typescriptExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	symbols := jsExtractSymbols(tree, source, filePath, model.LangTypeScript)

	root := tree.RootNode()
	for _, node := range findAll(root, "interface_declaration") {
		if s, ok := tsInterfaceOrAlias(node, source, filePath); ok {
			symbols = append(symbols, s)
		}
	}
	for _, node := range findAll(root, "type_alias_declaration") {
		if s, ok := tsInterfaceOrAlias(node, source, filePath); ok {
			symbols = append(symbols, s)
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool { return symbols[i].StartLine < symbols[j].StartLine })
	return symbols
}

func (typescriptExtractor) ExtractImports(tree *tree_sitter.Tree, source []byte, filePath string) []model.Import {
	return jsExtractImports(tree, source, filePath)
}

func (typescriptExtractor) ExtractCalls(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Call {
	return jsExtractCalls(tree, source, symbols)
}

func (typescriptExtractor) ExtractInheritance(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Inheritance {
	return jsExtractInheritance(tree, source, symbols)
}
