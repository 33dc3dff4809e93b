package extract

import (
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kampus-dev/kampus/pkg/model"
)

type cppExtractor struct{}

// cppFunctionName walks declarator layers looking for the name: a plain
// identifier, a field identifier (a member declared inside a class body), a
// qualified identifier (Class::method), a destructor name, or a nested
// function_declarator.
func cppFunctionName(declarator *tree_sitter.Node, source []byte) (string, bool) {
	if id := firstChildOfKind(declarator, "identifier"); id != nil {
		return nodeText(id, source), true
	}
	if id := firstChildOfKind(declarator, "field_identifier"); id != nil {
		return nodeText(id, source), true
	}
	if qid := firstChildOfKind(declarator, "qualified_identifier"); qid != nil {
		return nodeText(qid, source), true
	}
	if dtor := firstChildOfKind(declarator, "destructor_name"); dtor != nil {
		return nodeText(dtor, source), true
	}
	if nested := firstChildOfKind(declarator, "function_declarator"); nested != nil {
		return cppFunctionName(nested, source)
	}
	return "", false
}

func cppDocstring(node *tree_sitter.Node, source []byte) string {
	prev := node.PrevSibling()
	if prev != nil && prev.Kind() == "comment" {
		return nodeText(prev, source)
	}
	return ""
}

func cppFunction(node *tree_sitter.Node, source []byte, filePath, parentID string, visibility model.Visibility) (model.Symbol, bool) {
	declarator := firstChildOfKind(node, "function_declarator")
	if declarator == nil {
		declarator = firstChildOfKind(node, "pointer_declarator")
	}
	if declarator == nil {
		return model.Symbol{}, false
	}
	name, ok := cppFunctionName(declarator, source)
	if !ok {
		return model.Symbol{}, false
	}
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
		Visibility: visibility,
		Docstring:  cppDocstring(node, source),
		Language:   model.LangCPP,
		ParentID:   parentID,
	}, true
}

// cppMethodDeclaration handles a bare method declaration (no body) inside a
// class/struct: `void foo();`.
func cppMethodDeclaration(declarator *tree_sitter.Node, source []byte, filePath, parentID string, visibility model.Visibility) (model.Symbol, bool) {
	name, ok := cppFunctionName(declarator, source)
	if !ok {
		return model.Symbol{}, false
	}
	start := startLine(declarator)

	return model.Symbol{
		ID:         model.GenerateSymbolID(filePath, name, start),
		Name:       name,
		Kind:       model.KindMethod,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(declarator),
		Visibility: visibility,
		Language:   model.LangCPP,
		ParentID:   parentID,
	}, true
}

func cppClass(node *tree_sitter.Node, source []byte, filePath string) (model.Symbol, bool) {
	nameNode := firstChildOfKind(node, "type_identifier")
	if nameNode == nil {
		return model.Symbol{}, false
	}
	name := nodeText(nameNode, source)
	start := startLine(node)

	kind := model.KindClass
	if node.Kind() == "struct_specifier" {
		kind = model.KindStruct
	}

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
		Visibility: model.VisibilityPublic,
		Docstring:  cppDocstring(node, source),
		Language:   model.LangCPP,
	}, true
}

func cppEnum(node *tree_sitter.Node, source []byte, filePath string) (model.Symbol, bool) {
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
		Kind:       model.KindEnum,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(node),
		Signature:  strings.TrimSpace(sig),
		Visibility: model.VisibilityPublic,
		Docstring:  cppDocstring(node, source),
		Language:   model.LangCPP,
	}, true
}

func (cppExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	root := tree.RootNode()
	var symbols []model.Symbol

	for _, node := range findAll(root, "function_definition") {
		if s, ok := cppFunction(node, source, filePath, "", model.VisibilityPublic); ok {
			symbols = append(symbols, s)
		}
	}

	var classNodes []*tree_sitter.Node
	classNodes = append(classNodes, findAll(root, "class_specifier")...)
	classNodes = append(classNodes, findAll(root, "struct_specifier")...)
	for _, node := range classNodes {
		classSym, ok := cppClass(node, source, filePath)
		if !ok {
			continue
		}
		symbols = append(symbols, classSym)

		body := firstChildOfKind(node, "field_declaration_list")
		if body == nil {
			continue
		}
		isStruct := node.Kind() == "struct_specifier"
		visibility := model.VisibilityPrivate
		if isStruct {
			visibility = model.VisibilityPublic
		}

		count := body.ChildCount()
		for i := uint(0); i < count; i++ {
			child := body.Child(i)
			switch child.Kind() {
			case "access_specifier":
				text := strings.ToLower(nodeText(child, source))
				switch {
				case strings.Contains(text, "public"):
					visibility = model.VisibilityPublic
				case strings.Contains(text, "protected"):
					visibility = model.VisibilityProtected
				default:
					visibility = model.VisibilityPrivate
				}
			case "function_definition":
				if s, ok := cppFunction(child, source, filePath, classSym.ID, visibility); ok {
					symbols = append(symbols, s)
				}
			case "declaration", "field_declaration":
				if declarator := firstChildOfKind(child, "function_declarator"); declarator != nil {
					if s, ok := cppMethodDeclaration(declarator, source, filePath, classSym.ID, visibility); ok {
						symbols = append(symbols, s)
					}
				}
			}
		}
	}

	for _, node := range findAll(root, "enum_specifier") {
		if s, ok := cppEnum(node, source, filePath); ok {
			symbols = append(symbols, s)
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool { return symbols[i].StartLine < symbols[j].StartLine })
	return dedupeTopLevelFunctionsCoveredByMethods(symbols)
}

func (cppExtractor) ExtractImports(tree *tree_sitter.Tree, source []byte, filePath string) []model.Import {
	root := tree.RootNode()
	var imports []model.Import

	for _, node := range findAll(root, "preproc_include") {
		target := ""
		if lit := firstChildOfKind(node, "string_literal"); lit != nil {
			target = nodeText(lit, source)
		} else if lit := firstChildOfKind(node, "system_lib_string"); lit != nil {
			target = nodeText(lit, source)
		}
		target = strings.Trim(strings.Trim(strings.Trim(target, `"`), "<"), ">")
		if target == "" {
			continue
		}
		imports = append(imports, model.Import{
			SourceFile: filePath,
			Target:     target,
			Line:       startLine(node),
		})
	}

	for _, node := range findAll(root, "using_declaration") {
		target := strings.TrimSpace(nodeText(node, source))
		target = strings.TrimPrefix(target, "using")
		target = strings.TrimSpace(target)
		target = strings.TrimSuffix(target, ";")
		if target == "" {
			continue
		}
		imports = append(imports, model.Import{
			SourceFile: filePath,
			Target:     target,
			Line:       startLine(node),
		})
	}

	return imports
}

func (cppExtractor) ExtractCalls(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Call {
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
			case "qualified_identifier":
				callee = nodeText(funcNode, source)
			case "template_function":
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

func (cppExtractor) ExtractInheritance(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Inheritance {
	root := tree.RootNode()
	var out []model.Inheritance

	classNodes := findAll(root, "class_specifier", "struct_specifier")

	for _, node := range classNodes {
		nameNode := firstChildOfKind(node, "type_identifier")
		if nameNode == nil {
			continue
		}
		className := nodeText(nameNode, source)

		baseClause := firstChildOfKind(node, "base_class_clause")
		if baseClause == nil {
			continue
		}
		for _, child := range directChildren(baseClause, "type_identifier", "qualified_identifier") {
			parentName := nodeText(child, source)
			for _, s := range symbols {
				if (s.Kind == model.KindClass || s.Kind == model.KindStruct) && s.Name == className {
					out = append(out, model.Inheritance{ChildID: s.ID, ParentName: parentName})
					break
				}
			}
		}
	}

	return out
}
