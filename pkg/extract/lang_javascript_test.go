package extract

import (
	"testing"

	"github.com/kampus-dev/kampus/pkg/model"
)

const javascriptSample = `
import { readFile } from 'fs';
const path = require('path');

class Animal {
  speak() {
    return describe(this);
  }

  _hidden() {}
}

class Dog extends Animal {
}

const describe = (thing) => {
  return thing;
};

async function fetchAll() {
  return describe(1);
}
`

func TestJavaScriptExtractSymbols(t *testing.T) {
	tree := parseSource(t, model.LangJavaScript, javascriptSample)
	symbols := javascriptExtractor{}.ExtractSymbols(tree, []byte(javascriptSample), "app.js")

	animal, ok := symbolByName(symbols, "Animal")
	if !ok || animal.Kind != model.KindClass {
		t.Fatalf("expected class Animal, got %+v ok=%v", animal, ok)
	}

	speak, ok := symbolByName(symbols, "speak")
	if !ok || speak.Kind != model.KindMethod || speak.ParentID != animal.ID {
		t.Fatalf("expected speak method parented to Animal, got %+v ok=%v", speak, ok)
	}

	hidden, ok := symbolByName(symbols, "_hidden")
	if !ok || hidden.Visibility != model.VisibilityPrivate {
		t.Fatalf("expected _hidden to be private by convention, got %+v ok=%v", hidden, ok)
	}

	describe, ok := symbolByName(symbols, "describe")
	if !ok || describe.Kind != model.KindFunction {
		t.Fatalf("expected arrow function describe to be a Function, got %+v ok=%v", describe, ok)
	}

	fetchAll, ok := symbolByName(symbols, "fetchAll")
	if !ok || !fetchAll.IsAsync {
		t.Fatalf("expected fetchAll to be async, got %+v ok=%v", fetchAll, ok)
	}
}

func TestJavaScriptExtractImports(t *testing.T) {
	tree := parseSource(t, model.LangJavaScript, javascriptSample)
	imports := javascriptExtractor{}.ExtractImports(tree, []byte(javascriptSample), "app.js")

	if len(imports) != 2 {
		t.Fatalf("expected 2 imports (ES import + require), got %d: %+v", len(imports), imports)
	}
	if imports[0].Target != "fs" || len(imports[0].Items) != 1 || imports[0].Items[0] != "readFile" {
		t.Fatalf("expected named import readFile from fs, got %+v", imports[0])
	}
	if imports[1].Target != "path" {
		t.Fatalf("expected require('path'), got %+v", imports[1])
	}
}

func TestJavaScriptExtractInheritance(t *testing.T) {
	tree := parseSource(t, model.LangJavaScript, javascriptSample)
	symbols := javascriptExtractor{}.ExtractSymbols(tree, []byte(javascriptSample), "app.js")
	inheritance := javascriptExtractor{}.ExtractInheritance(tree, []byte(javascriptSample), "app.js", symbols)

	found := false
	for _, edge := range inheritance {
		if edge.ParentName == "Animal" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Dog extends Animal, got %+v", inheritance)
	}
}
