package extract

import (
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kampus-dev/kampus/pkg/model"
)

type goExtractor struct{}

func (goExtractor) ExtractSymbols(tree *tree_sitter.Tree, source []byte, filePath string) []model.Symbol {
	root := tree.RootNode()
	var symbols []model.Symbol

	for _, node := range findAll(root, "function_declaration") {
		if s, ok := goFunction(node, source, filePath); ok {
			symbols = append(symbols, s)
		}
	}
	for _, typeDecl := range findAll(root, "type_declaration") {
		for _, spec := range directChildren(typeDecl, "type_spec") {
			if s, ok := goTypeSpec(spec, source, filePath); ok {
				symbols = append(symbols, s)
			}
		}
	}
	for _, node := range findAll(root, "method_declaration") {
		if s, ok := goMethod(node, source, filePath, symbols); ok {
			symbols = append(symbols, s)
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool { return symbols[i].StartLine < symbols[j].StartLine })
	return symbols
}

func goVisibility(name string) model.Visibility {
	if firstScalarUpper(name) {
		return model.VisibilityPublic
	}
	return model.VisibilityPrivate
}

func firstChildOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	c := directChildren(node, kind)
	if len(c) == 0 {
		return nil
	}
	return c[0]
}

func goPrecedingComment(node *tree_sitter.Node, source []byte) string {
	prev := node.PrevSibling()
	if prev != nil && prev.Kind() == "comment" {
		return nodeText(prev, source)
	}
	return ""
}

func goFunction(node *tree_sitter.Node, source []byte, filePath string) (model.Symbol, bool) {
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
		Visibility: goVisibility(name),
		IsAsync:    false,
		Docstring:  goPrecedingComment(node, source),
		Language:   model.LangGo,
	}, true
}

func goMethod(node *tree_sitter.Node, source []byte, filePath string, existing []model.Symbol) (model.Symbol, bool) {
	nameNode := firstChildOfKind(node, "field_identifier")
	if nameNode == nil {
		return model.Symbol{}, false
	}
	name := nodeText(nameNode, source)
	start := startLine(node)

	var parentID string
	if params := firstChildOfKind(node, "parameter_list"); params != nil {
		var recvDecl *tree_sitter.Node
		for _, c := range directChildren(params, "parameter_declaration") {
			recvDecl = c
			break
		}
		if recvDecl != nil {
			recvType := firstChildOfKind(recvDecl, "type_identifier")
			if recvType == nil {
				if ptr := firstChildOfKind(recvDecl, "pointer_type"); ptr != nil {
					recvType = ptr
				}
			}
			if recvType != nil {
				rt := strings.TrimPrefix(nodeText(recvType, source), "*")
				for _, s := range existing {
					if s.Kind == model.KindStruct && s.Name == rt {
						parentID = s.ID
						break
					}
				}
			}
		}
	}

	return model.Symbol{
		ID:         model.GenerateSymbolID(filePath, name, start),
		Name:       name,
		Kind:       model.KindMethod,
		FilePath:   filePath,
		StartLine:  start,
		EndLine:    endLine(node),
		Signature:  signature(node, source),
		Visibility: goVisibility(name),
		IsAsync:    false,
		Docstring:  goPrecedingComment(node, source),
		Language:   model.LangGo,
		ParentID:   parentID,
	}, true
}

func goTypeSpec(node *tree_sitter.Node, source []byte, filePath string) (model.Symbol, bool) {
	nameNode := firstChildOfKind(node, "type_identifier")
	if nameNode == nil {
		return model.Symbol{}, false
	}
	name := nodeText(nameNode, source)
	start := startLine(node)

	kind := model.KindInterface
	if firstChildOfKind(node, "struct_type") != nil {
		kind = model.KindStruct
	} else if firstChildOfKind(node, "interface_type") != nil {
		kind = model.KindInterface
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
		Visibility: goVisibility(name),
		IsAsync:    false,
		Docstring:  goPrecedingComment(node, source),
		Language:   model.LangGo,
	}, true
}

func (goExtractor) ExtractImports(tree *tree_sitter.Tree, source []byte, filePath string) []model.Import {
	root := tree.RootNode()
	var imports []model.Import

	for _, node := range findAll(root, "import_declaration") {
		if lit := firstChildOfKind(node, "interpreted_string_literal"); lit != nil {
			imports = append(imports, model.Import{
				SourceFile: filePath,
				Target:     strings.Trim(nodeText(lit, source), `"`),
				Line:       startLine(node),
			})
		}

		if specList := firstChildOfKind(node, "import_spec_list"); specList != nil {
			for _, spec := range directChildren(specList, "import_spec") {
				lit := firstChildOfKind(spec, "interpreted_string_literal")
				if lit == nil {
					continue
				}
				alias := ""
				if a := firstChildOfKind(spec, "package_identifier"); a != nil {
					alias = nodeText(a, source)
				} else if a := firstChildOfKind(spec, "dot"); a != nil {
					alias = nodeText(a, source)
				} else if a := firstChildOfKind(spec, "blank_identifier"); a != nil {
					alias = nodeText(a, source)
				}
				imports = append(imports, model.Import{
					SourceFile: filePath,
					Target:     strings.Trim(nodeText(lit, source), `"`),
					Alias:      alias,
					Line:       startLine(spec),
				})
			}
		}
	}

	return imports
}

func (goExtractor) ExtractCalls(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Call {
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
			case "selector_expression":
				if f := firstChildOfKind(funcNode, "field_identifier"); f != nil {
					callee = nodeText(f, source)
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

func (goExtractor) ExtractInheritance(tree *tree_sitter.Tree, source []byte, filePath string, symbols []model.Symbol) []model.Inheritance {
	root := tree.RootNode()
	var out []model.Inheritance

	for _, node := range findAll(root, "type_spec") {
		nameNode := firstChildOfKind(node, "type_identifier")
		if nameNode == nil {
			continue
		}
		typeName := nodeText(nameNode, source)

		if structType := firstChildOfKind(node, "struct_type"); structType != nil {
			if fieldList := firstChildOfKind(structType, "field_declaration_list"); fieldList != nil {
				for _, field := range directChildren(fieldList, "field_declaration") {
					if firstChildOfKind(field, "field_identifier") != nil {
						continue // named field, not an embed
					}
					embedded := firstChildOfKind(field, "type_identifier")
					if embedded == nil {
						continue
					}
					for _, s := range symbols {
						if s.Kind == model.KindStruct && s.Name == typeName {
							out = append(out, model.Inheritance{ChildID: s.ID, ParentName: nodeText(embedded, source)})
							break
						}
					}
				}
			}
		}

		if ifaceType := firstChildOfKind(node, "interface_type"); ifaceType != nil {
			for _, child := range directChildren(ifaceType, "type_identifier") {
				for _, s := range symbols {
					if s.Kind == model.KindInterface && s.Name == typeName {
						out = append(out, model.Inheritance{ChildID: s.ID, ParentName: nodeText(child, source)})
						break
					}
				}
			}
		}
	}

	return out
}
