package extract

import (
	"fmt"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kampus-dev/kampus/pkg/model"
)

type javascriptExtractor struct{}

func jsIsAsync(node *tree_sitter.Node, source []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(nodeText(node, source)), "async")
}

func jsPrecedingComment(node *tree_sitter.Node, source []byte) string {
	prev := node.PrevSibling()
	if prev != nil && prev.Kind() == "comment" {
		return nodeText(prev, source)
	}
	return ""
}

func jsFunction(node *tree_sitter.Node, source []byte, filePath string, lang model.Language) (model.Symbol, bool) {
	nameNode := firstChildOfKind(node, "identifier")
	if nameNode == nil {
		return model.Symbol{}, false
	}
	name := nodeText(nameNode, source)
	start := startLine(node)

	return model.Symbol{
		ID:         model.GenerateSymbolID(filePath, name, start),
		Name:       name,
		Kind:       model.KindFunction,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(node),
		Signature:  signature(node, source),
		Visibility: model.VisibilityPublic,
		IsAsync:    jsIsAsync(node, source),
		Docstring:  jsPrecedingComment(node, source),
		Language:   lang,
	}, true
}

func jsArrowFunction(value, nameNode *tree_sitter.Node, source []byte, filePath string, lang model.Language) (model.Symbol, bool) {
	name := nodeText(nameNode, source)
	start := startLine(nameNode)

	text := nodeText(value, source)
	head := text
	if i := strings.Index(text, "=>"); i >= 0 {
		head = strings.TrimSpace(text[:i+2])
	} else if i := strings.IndexByte(text, '\n'); i >= 0 {
		head = text[:i]
	}

	return model.Symbol{
		ID:         model.GenerateSymbolID(filePath, name, start),
		Name:       name,
		Kind:       model.KindFunction,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(value),
		Signature:  fmt.Sprintf("const %s = %s", name, strings.TrimSpace(head)),
		Visibility: model.VisibilityPublic,
		IsAsync:    jsIsAsync(value, source),
		Language:   lang,
	}, true
}

func jsClass(node *tree_sitter.Node, source []byte, filePath string, lang model.Language) (model.Symbol, bool) {
	nameNode := firstChildOfKind(node, "identifier")
	if nameNode == nil {
		// tree-sitter-typescript names classes with a type_identifier.
		nameNode = firstChildOfKind(node, "type_identifier")
	}
	if nameNode == nil {
		return model.Symbol{}, false
	}
	name := nodeText(nameNode, source)
	start := startLine(node)

	return model.Symbol{
		ID:         model.GenerateSymbolID(filePath, name, start),
		Name:       name,
		Kind:       model.KindClass,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(node),
		Signature:  signature(node, source),
		Visibility: model.VisibilityPublic,
		Docstring:  jsPrecedingComment(node, source),
		Language:   lang,
	}, true
}

func jsMethod(node *tree_sitter.Node, source []byte, filePath, parentID string, lang model.Language) (model.Symbol, bool) {
	nameNode := firstChildOfKind(node, "property_identifier")
	if nameNode == nil {
		return model.Symbol{}, false
	}
	name := nodeText(nameNode, source)
	start := startLine(node)

	vis := model.VisibilityPublic
	if strings.HasPrefix(name, "_") {
		vis = model.VisibilityPrivate
	}

	return model.Symbol{
		ID:         model.GenerateSymbolID(filePath, name, start),
		Name:       name,
		Kind:       model.KindMethod,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(node),
		Signature:  signature(node, source),
		Visibility: vis,
		IsAsync:    jsIsAsync(node, source),
		Language:   lang,
		ParentID:   parentID,
	}, true
}

func jsExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string, lang model.Language) []model.Symbol {
	root := tree.RootNode()
	var symbols []model.Symbol

	for _, node := range findAll(root, "function_declaration") {
		if s, ok := jsFunction(node, source, filePath, lang); ok {
			symbols = append(symbols, s)
		}
	}

	var declNodes []*tree_sitter.Node
	declNodes = append(declNodes, findAll(root, "lexical_declaration")...)
	declNodes = append(declNodes, findAll(root, "variable_declaration")...)
	for _, node := range declNodes {
		for _, declarator := range directChildren(node, "variable_declarator") {
			value := firstChildOfKind(declarator, "arrow_function")
			nameNode := firstChildOfKind(declarator, "identifier")
			if value == nil || nameNode == nil {
				continue
			}
			if s, ok := jsArrowFunction(value, nameNode, source, filePath, lang); ok {
				symbols = append(symbols, s)
			}
		}
	}

	for _, node := range findAll(root, "class_declaration") {
		classSym, ok := jsClass(node, source, filePath, lang)
		if !ok {
			continue
		}
		symbols = append(symbols, classSym)

		if body := firstChildOfKind(node, "class_body"); body != nil {
			for _, m := range directChildren(body, "method_definition") {
				if s, ok := jsMethod(m, source, filePath, classSym.ID, lang); ok {
					symbols = append(symbols, s)
				}
			}
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool { return symbols[i].StartLine < symbols[j].StartLine })
	return symbols
}

func jsExtractImports(tree *tree_sitter.Tree, source []byte, filePath string) []model.Import {
	root := tree.RootNode()
	var imports []model.Import

	for _, node := range findAll(root, "import_statement") {
		target := ""
		if str := firstChildOfKind(node, "string"); str != nil {
			target = strings.Trim(strings.Trim(nodeText(str, source), `"`), `'`)
		}

		var items []string
		if clause := firstChildOfKind(node, "import_clause"); clause != nil {
			if named := firstChildOfKind(clause, "named_imports"); named != nil {
				for _, spec := range directChildren(named, "import_specifier") {
					if id := firstChildOfKind(spec, "identifier"); id != nil {
						items = append(items, nodeText(id, source))
					}
				}
			}
			if def := firstChildOfKind(clause, "identifier"); def != nil {
				items = append(items, nodeText(def, source))
			}
		}

		imports = append(imports, model.Import{
			SourceFile: filePath,
			Target:     target,
			Items:      items,
			Line:       startLine(node),
		})
	}

	for _, node := range findAll(root, "call_expression") {
		if node.ChildCount() == 0 {
			continue
		}
		funcNode := node.Child(0)
		if nodeText(funcNode, source) != "require" {
			continue
		}
		args := firstChildOfKind(node, "arguments")
		if args == nil || args.ChildCount() < 2 {
			continue
		}
		arg := args.Child(1)
		target := strings.Trim(strings.Trim(nodeText(arg, source), `"`), `'`)
		imports = append(imports, model.Import{
			SourceFile: filePath,
			Target:     target,
			Line:       startLine(node),
		})
	}

	return imports
}

func jsExtractCalls(tree *tree_sitter.Tree, source []byte, symbols []model.Symbol) []model.Call {
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
			case "member_expression":
				if p := firstChildOfKind(funcNode, "property_identifier"); p != nil {
					callee = nodeText(p, source)
				}
			default:
				continue
			}
			if callee == "" || callee == "require" {
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

func jsExtractInheritance(tree *tree_sitter.Tree, source []byte, symbols []model.Symbol) []model.Inheritance {
	root := tree.RootNode()
	var out []model.Inheritance

	for _, node := range findAll(root, "class_declaration") {
		nameNode := firstChildOfKind(node, "identifier")
		if nameNode == nil {
			continue
		}
		className := nodeText(nameNode, source)

		heritage := firstChildOfKind(node, "class_heritage")
		if heritage == nil {
			continue
		}
		extends := firstChildOfKind(heritage, "identifier")
		if extends == nil {
			continue
		}
		parentName := nodeText(extends, source)

		for _, s := range symbols {
			if s.Kind == model.KindClass && s.Name == className {
				out = append(out, model.Inheritance{ChildID: s.ID, ParentName: parentName})
				break
			}
		}
	}

	return out
}

func (javascriptExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	return jsExtractSymbols(tree, source, filePath, model.LangJavaScript)
}

func (javascriptExtractor) ExtractImports(tree *tree_sitter.Tree, source []byte, filePath string) []model.Import {
	return jsExtractImports(tree, source, filePath)
}

func (javascriptExtractor) ExtractCalls(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Call {
	return jsExtractCalls(tree, source, symbols)
}

func (javascriptExtractor) ExtractInheritance(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Inheritance {
	return jsExtractInheritance(tree, source, symbols)
}
