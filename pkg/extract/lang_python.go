package extract

import (
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kampus-dev/kampus/pkg/model"
)

type pythonExtractor struct{}

func pythonVisibilityFunc(name string) model.Visibility {
	if strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__") {
		return model.VisibilityPrivate
	}
	if strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__") {
		return model.VisibilityProtected
	}
	return model.VisibilityPublic
}

func pythonVisibilityClass(name string) model.Visibility {
	if strings.HasPrefix(name, "_") {
		return model.VisibilityPrivate
	}
	return model.VisibilityPublic
}

func pythonDocstring(node *tree_sitter.Node, source []byte) string {
	body := firstChildOfKind(node, "block")
	if body == nil {
		return ""
	}
	for _, stmt := range directChildren(body, "expression_statement") {
		if str := firstChildOfKind(stmt, "string"); str != nil {
			text := nodeText(str, source)
			text = strings.TrimPrefix(text, `"""`)
			text = strings.TrimPrefix(text, `'''`)
			text = strings.TrimSuffix(text, `"""`)
			text = strings.TrimSuffix(text, `'''`)
			return strings.TrimSpace(text)
		}
		break
	}
	return ""
}

func pythonSignature(node *tree_sitter.Node, source []byte) string {
	text := nodeText(node, source)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSuffix(strings.TrimSpace(text), ":")
}

func pythonFunction(node *tree_sitter.Node, source []byte, filePath, parentID string) (model.Symbol, bool) {
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

	isAsync := false
	if prev := node.PrevSibling(); prev != nil && prev.Kind() == "async" {
		isAsync = true
	}
	if parent := node.Parent(); parent != nil && parent.Kind() == "async_function_definition" {
		isAsync = true
	}

	return model.Symbol{
		ID:         model.GenerateSymbolID(filePath, name, start),
		Name:       name,
		Kind:       kind,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(node),
		Signature:  pythonSignature(node, source),
		Visibility: pythonVisibilityFunc(name),
		IsAsync:    isAsync,
		Docstring:  pythonDocstring(node, source),
		Language:   model.LangPython,
		ParentID:   parentID,
	}, true
}

func pythonClass(node *tree_sitter.Node, source []byte, filePath string) (model.Symbol, bool) {
	nameNode := firstChildOfKind(node, "identifier")
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
		Signature:  pythonSignature(node, source),
		Visibility: pythonVisibilityClass(name),
		Docstring:  pythonDocstring(node, source),
		Language:   model.LangPython,
	}, true
}

func (pythonExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	root := tree.RootNode()
	var symbols []model.Symbol

	for _, node := range findAll(root, "function_definition") {
		// Nested functions (inside another function) are extracted as
		// top-level Functions, not attributed to an enclosing class —
		// only direct class-body members become Methods (handled below).
		if s, ok := pythonFunction(node, source, filePath, ""); ok {
			symbols = append(symbols, s)
		}
	}

	for _, node := range findAll(root, "class_definition") {
		classSym, ok := pythonClass(node, source, filePath)
		if !ok {
			continue
		}
		symbols = append(symbols, classSym)

		if body := firstChildOfKind(node, "block"); body != nil {
			for _, child := range directChildren(body, "function_definition") {
				if s, ok := pythonFunction(child, source, filePath, classSym.ID); ok {
					symbols = append(symbols, s)
				}
			}
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool { return symbols[i].StartLine < symbols[j].StartLine })
	return dedupeTopLevelFunctionsCoveredByMethods(symbols)
}

// dedupeTopLevelFunctionsCoveredByMethods removes a function_definition
// symbol extracted at top level when the same node was also extracted as a
// class method (nested class bodies are walked by findAll, so a method's
// function_definition node appears once in the method pass and once in the
// blanket top-level pass above).
func dedupeTopLevelFunctionsCoveredByMethods(symbols []model.Symbol) []model.Symbol {
	methodKeys := make(map[string]bool)
	for _, s := range symbols {
		if s.Kind == model.KindMethod {
			methodKeys[s.ID] = true
		}
	}
	out := symbols[:0]
	for _, s := range symbols {
		if s.Kind == model.KindFunction && methodKeys[s.ID] {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (pythonExtractor) ExtractImports(tree *tree_sitter.Tree, source []byte, filePath string) []model.Import {
	root := tree.RootNode()
	var imports []model.Import

	for _, node := range findAll(root, "import_statement") {
		for _, nameNode := range directChildren(node, "dotted_name", "aliased_import") {
			target := nodeText(nameNode, source)
			alias := ""
			if nameNode.Kind() == "aliased_import" {
				if dotted := firstChildOfKind(nameNode, "dotted_name"); dotted != nil {
					target = nodeText(dotted, source)
				}
				if id := firstChildOfKind(nameNode, "identifier"); id != nil {
					alias = nodeText(id, source)
				}
			}
			imports = append(imports, model.Import{
				SourceFile: filePath,
				Target:     target,
				Alias:      alias,
				Line:       startLine(node),
			})
		}
	}

	for _, node := range findAll(root, "import_from_statement") {
		target := ""
		if dotted := firstChildOfKind(node, "dotted_name"); dotted != nil {
			target = nodeText(dotted, source)
		} else if rel := firstChildOfKind(node, "relative_import"); rel != nil {
			target = nodeText(rel, source)
		}

		dotted := directChildren(node, "dotted_name")
		var items []string
		if len(dotted) > 1 {
			for _, n := range dotted[1:] {
				items = append(items, nodeText(n, source))
			}
		}

		imports = append(imports, model.Import{
			SourceFile: filePath,
			Target:     target,
			Items:      items,
			Line:       startLine(node),
		})
	}

	return imports
}

func (pythonExtractor) ExtractCalls(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Call {
	root := tree.RootNode()
	callNodes := findAll(root, "call")
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
			case "attribute":
				if id := firstChildOfKind(funcNode, "identifier"); id != nil {
					callee = nodeText(id, source)
				}
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

func (pythonExtractor) ExtractInheritance(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Inheritance {
	root := tree.RootNode()
	var out []model.Inheritance

	for _, node := range findAll(root, "class_definition") {
		nameNode := firstChildOfKind(node, "identifier")
		if nameNode == nil {
			continue
		}
		className := nodeText(nameNode, source)

		var classSym *model.Symbol
		for i := range symbols {
			if symbols[i].Kind == model.KindClass && symbols[i].Name == className {
				classSym = &symbols[i]
				break
			}
		}
		if classSym == nil {
			continue
		}

		bases := firstChildOfKind(node, "argument_list")
		if bases == nil {
			continue
		}
		for _, base := range directChildren(bases, "identifier") {
			out = append(out, model.Inheritance{ChildID: classSym.ID, ParentName: nodeText(base, source)})
		}
		for _, base := range directChildren(bases, "attribute") {
			out = append(out, model.Inheritance{ChildID: classSym.ID, ParentName: nodeText(base, source)})
		}
	}

	return out
}
