package extract

import (
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kampus-dev/kampus/pkg/model"
)

type rustExtractor struct{}

func rustVisibility(node *tree_sitter.Node, source []byte) model.Visibility {
	if strings.HasPrefix(strings.TrimSpace(nodeText(node, source)), "pub") {
		return model.VisibilityPublic
	}
	return model.VisibilityPrivate
}

func rustDocstring(node *tree_sitter.Node, source []byte) string {
	prev := node.PrevSibling()
	if prev == nil || (prev.Kind() != "line_comment" && prev.Kind() != "block_comment") {
		return ""
	}
	text := nodeText(prev, source)
	text = strings.TrimPrefix(text, "///")
	text = strings.TrimPrefix(text, "//!")
	return strings.TrimSpace(text)
}

func rustFunction(node *tree_sitter.Node, source []byte, filePath, parentID string) (model.Symbol, bool) {
	nameNode := firstChildOfKind(node, "identifier")
	if nameNode == nil {
		return model.Symbol{}, false
	}
	name := nodeText(nameNode, source)
	start := startLine(node)

	kind := model.KindFunction
	if parentID != "" {
		kind = model.KindMethod
	}

	return model.Symbol{
		ID:         model.GenerateSymbolID(filePath, name, start),
		Name:       name,
		Kind:       kind,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(node),
		Signature:  signature(node, source),
		Visibility: rustVisibility(node, source),
		IsAsync:    strings.Contains(nodeText(node, source), "async fn"),
		Docstring:  rustDocstring(node, source),
		Language:   model.LangRust,
		ParentID:   parentID,
	}, true
}

// rustType extracts Struct/Enum/Trait symbols, which share the same shape:
// a type_identifier name, a first-line signature and a pub-prefix visibility
// rule.
func rustType(node *tree_sitter.Node, source []byte, filePath string, kind model.SymbolKind) (model.Symbol, bool) {
	nameNode := firstChildOfKind(node, "type_identifier")
	if nameNode == nil {
		return model.Symbol{}, false
	}
	name := nodeText(nameNode, source)
	start := startLine(node)

	text := nodeText(node, source)
	sig := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		sig = text[:i]
	}

	return model.Symbol{
		ID:         model.GenerateSymbolID(filePath, name, start),
		Name:       name,
		Kind:       kind,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(node),
		Signature:  strings.TrimSpace(sig),
		Visibility: rustVisibility(node, source),
		Docstring:  rustDocstring(node, source),
		Language:   model.LangRust,
	}, true
}

func (rustExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	root := tree.RootNode()
	var symbols []model.Symbol

	for _, node := range findAll(root, "function_item") {
		if s, ok := rustFunction(node, source, filePath, ""); ok {
			symbols = append(symbols, s)
		}
	}
	for _, node := range findAll(root, "struct_item") {
		if s, ok := rustType(node, source, filePath, model.KindStruct); ok {
			symbols = append(symbols, s)
		}
	}
	for _, node := range findAll(root, "enum_item") {
		if s, ok := rustType(node, source, filePath, model.KindEnum); ok {
			symbols = append(symbols, s)
		}
	}
	for _, node := range findAll(root, "trait_item") {
		if s, ok := rustType(node, source, filePath, model.KindTrait); ok {
			symbols = append(symbols, s)
		}
	}

	for _, impl := range findAll(root, "impl_item") {
		// `impl Type` names one type; `impl Trait for Type` names the trait
		// first, so the implemented type is always the last one.
		typeName := ""
		for _, t := range directChildren(impl, "type_identifier", "generic_type") {
			typeName = nodeText(t, source)
		}

		body := firstChildOfKind(impl, "declaration_list")
		if body == nil {
			continue
		}
		var parentID string
		if typeName != "" {
			for _, s := range symbols {
				if (s.Kind == model.KindStruct || s.Kind == model.KindEnum) && s.Name == typeName {
					parentID = s.ID
					break
				}
			}
		}
		for _, fn := range directChildren(body, "function_item") {
			if s, ok := rustFunction(fn, source, filePath, parentID); ok {
				symbols = append(symbols, s)
			}
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool { return symbols[i].StartLine < symbols[j].StartLine })
	return dedupeTopLevelFunctionsCoveredByMethods(symbols)
}

func rustParseUseClause(node *tree_sitter.Node, source []byte) (string, []string) {
	switch node.Kind() {
	case "scoped_identifier", "identifier":
		return nodeText(node, source), nil
	case "use_as_clause":
		if node.ChildCount() == 0 {
			return "", nil
		}
		return nodeText(node.Child(0), source), nil
	case "scoped_use_list":
		path := ""
		if p := firstChildOfKind(node, "scoped_identifier"); p != nil {
			path = nodeText(p, source)
		} else if p := firstChildOfKind(node, "identifier"); p != nil {
			path = nodeText(p, source)
		}
		var items []string
		if list := firstChildOfKind(node, "use_list"); list != nil {
			for _, n := range directChildren(list, "identifier", "scoped_identifier") {
				items = append(items, nodeText(n, source))
			}
		}
		return path, items
	case "use_wildcard":
		path := ""
		if node.ChildCount() > 0 {
			path = nodeText(node.Child(0), source)
		}
		return path + "::*", nil
	default:
		return nodeText(node, source), nil
	}
}

func (rustExtractor) ExtractImports(tree *tree_sitter.Tree, source []byte, filePath string) []model.Import {
	root := tree.RootNode()
	var imports []model.Import

	for _, node := range findAll(root, "use_declaration") {
		if node.ChildCount() < 2 {
			continue
		}
		target, items := rustParseUseClause(node.Child(1), source)
		imports = append(imports, model.Import{
			SourceFile: filePath,
			Target:     target,
			Items:      items,
			Line:       startLine(node),
		})
	}

	for _, node := range findAll(root, "extern_crate_declaration") {
		nameNode := firstChildOfKind(node, "identifier")
		if nameNode == nil {
			continue
		}
		imports = append(imports, model.Import{
			SourceFile: filePath,
			Target:     nodeText(nameNode, source),
			Line:       startLine(node),
		})
	}

	return imports
}

func (rustExtractor) ExtractCalls(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Call {
	root := tree.RootNode()
	callNodes := findAll(root, "call_expression")
	var calls []model.Call

	for _, sym := range symbols {
		if sym.Kind != model.KindFunction && sym.Kind != model.KindMethod {
			continue
		}
		for _, callNode := range callNodes {
			if !inLineRange(callNode, sym.StartLine, sym.EndLine) {
				continue
			}
			if callNode.ChildCount() == 0 {
				continue
			}
			funcNode := callNode.Child(0)
			var callee string
			switch funcNode.Kind() {
			case "identifier":
				callee = nodeText(funcNode, source)
			case "field_expression":
				if f := firstChildOfKind(funcNode, "field_identifier"); f != nil {
					callee = nodeText(f, source)
				}
			case "scoped_identifier":
				callee = nodeText(funcNode, source)
			default:
				continue
			}
			if callee == "" {
				continue
			}
			calls = append(calls, model.Call{
				CallerID:     sym.ID,
				CalleeName:   callee,
				CallSiteLine: startLine(callNode),
			})
		}
	}

	sort.SliceStable(calls, func(i, j int) bool { return calls[i].CallSiteLine < calls[j].CallSiteLine })
	return calls
}

func (rustExtractor) ExtractInheritance(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Inheritance {
	root := tree.RootNode()
	var out []model.Inheritance

	for _, node := range findAll(root, "impl_item") {
		if !strings.Contains(nodeText(node, source), " for ") {
			continue
		}

		var typeName, traitName string
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			child := node.Child(i)
			if child.Kind() != "type_identifier" && child.Kind() != "generic_type" {
				continue
			}
			if traitName == "" {
				traitName = nodeText(child, source)
			} else {
				typeName = nodeText(child, source)
			}
		}

		if typeName == "" || traitName == "" {
			continue
		}
		for _, s := range symbols {
			if s.Name == typeName {
				out = append(out, model.Inheritance{ChildID: s.ID, ParentName: traitName})
				break
			}
		}
	}

	return out
}
