package extract

import (
	"testing"

	"github.com/kampus-dev/kampus/pkg/model"
)

const cppSample = `
#include <vector>
#include "widget.h"
using std::string;

class Base {
};

class Widget : public Base {
public:
    void render() {
        helper();
    }

protected:
    int guarded() { return 1; }

private:
    void hidden();
};

void helper() {
}
`

func TestCppExtractSymbols(t *testing.T) {
	tree := parseSource(t, model.LangCPP, cppSample)
	symbols := cppExtractor{}.ExtractSymbols(tree, []byte(cppSample), "widget.cpp")

	widget, ok := symbolByName(symbols, "Widget")
	if !ok || widget.Kind != model.KindClass {
		t.Fatalf("expected class Widget, got %+v ok=%v", widget, ok)
	}

	render, ok := symbolByName(symbols, "render")
	if !ok || render.Kind != model.KindMethod || render.Visibility != model.VisibilityPublic || render.ParentID != widget.ID {
		t.Fatalf("expected public method render parented to Widget, got %+v ok=%v", render, ok)
	}

	guarded, ok := symbolByName(symbols, "guarded")
	if !ok || guarded.Visibility != model.VisibilityProtected {
		t.Fatalf("expected guarded to be protected, got %+v ok=%v", guarded, ok)
	}

	hidden, ok := symbolByName(symbols, "hidden")
	if !ok || hidden.Visibility != model.VisibilityPrivate {
		t.Fatalf("expected hidden declaration to be private, got %+v ok=%v", hidden, ok)
	}

	helper, ok := symbolByName(symbols, "helper")
	if !ok || helper.Kind != model.KindFunction {
		t.Fatalf("expected free function helper, got %+v ok=%v", helper, ok)
	}
}

func TestCppExtractImports(t *testing.T) {
	tree := parseSource(t, model.LangCPP, cppSample)
	imports := cppExtractor{}.ExtractImports(tree, []byte(cppSample), "widget.cpp")

	if len(imports) != 3 {
		t.Fatalf("expected 2 includes + 1 using, got %d: %+v", len(imports), imports)
	}
	if imports[0].Target != "vector" || imports[1].Target != "widget.h" {
		t.Fatalf("expected stripped include targets, got %+v", imports[:2])
	}
	if imports[2].Target != "std::string" {
		t.Fatalf("expected using declaration target, got %+v", imports[2])
	}
}

func TestCppExtractInheritance(t *testing.T) {
	tree := parseSource(t, model.LangCPP, cppSample)
	symbols := cppExtractor{}.ExtractSymbols(tree, []byte(cppSample), "widget.cpp")
	inheritance := cppExtractor{}.ExtractInheritance(tree, []byte(cppSample), "widget.cpp", symbols)

	found := false
	for _, edge := range inheritance {
		if edge.ParentName == "Base" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Widget : public Base edge, got %+v", inheritance)
	}
}
