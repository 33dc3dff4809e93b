package extract

import (
	"testing"

	"github.com/kampus-dev/kampus/pkg/model"
)

const pythonSample = `
class Greeter:
    """Greets people."""

    def __init__(self, name):
        self.name = name

    def greet(self):
        return helper(self.name)

def helper(name):
    def inner():
        return name
    return inner()
`

func TestPythonExtractSymbols(t *testing.T) {
	tree := parseSource(t, model.LangPython, pythonSample)
	symbols := pythonExtractor{}.ExtractSymbols(tree, []byte(pythonSample), "greeter.py")

	class, ok := symbolByName(symbols, "Greeter")
	if !ok || class.Kind != model.KindClass {
		t.Fatalf("expected class Greeter, got %+v ok=%v", class, ok)
	}
	if class.Docstring != "Greets people." {
		t.Fatalf("unexpected docstring %q", class.Docstring)
	}

	greet, ok := symbolByName(symbols, "greet")
	if !ok || greet.Kind != model.KindMethod || greet.ParentID != class.ID {
		t.Fatalf("expected greet method with parent %s, got %+v ok=%v", class.ID, greet, ok)
	}

	helper, ok := symbolByName(symbols, "helper")
	if !ok || helper.Kind != model.KindFunction {
		t.Fatalf("expected top-level function helper, got %+v ok=%v", helper, ok)
	}

	inner, ok := symbolByName(symbols, "inner")
	if !ok || inner.Kind != model.KindFunction {
		t.Fatalf("nested function inner should surface as a top-level Function, got %+v ok=%v", inner, ok)
	}

	init, ok := symbolByName(symbols, "__init__")
	if !ok || init.Visibility != model.VisibilityPublic {
		t.Fatalf("expected dunder __init__ to be public, got %+v ok=%v", init, ok)
	}
}

func TestPythonExtractCalls(t *testing.T) {
	tree := parseSource(t, model.LangPython, pythonSample)
	symbols := pythonExtractor{}.ExtractSymbols(tree, []byte(pythonSample), "greeter.py")
	calls := pythonExtractor{}.ExtractCalls(tree, []byte(pythonSample), "greeter.py", symbols)

	found := false
	for _, c := range calls {
		if c.CalleeName == "helper" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a call to helper, got %+v", calls)
	}
}

func TestPythonExtractImports(t *testing.T) {
	const src = `
import os
import os.path as osp
from collections import OrderedDict, defaultdict
`
	tree := parseSource(t, model.LangPython, src)
	imports := pythonExtractor{}.ExtractImports(tree, []byte(src), "m.py")

	if len(imports) != 3 {
		t.Fatalf("expected 3 imports, got %d: %+v", len(imports), imports)
	}
	if imports[1].Alias != "osp" {
		t.Fatalf("expected alias osp, got %+v", imports[1])
	}
	if imports[2].Target != "collections" || len(imports[2].Items) != 2 {
		t.Fatalf("expected collections import with 2 items, got %+v", imports[2])
	}
}
