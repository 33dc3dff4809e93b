package cypher

import (
	"strings"
	"testing"

	"github.com/kampus-dev/kampus/pkg/model"
)

func TestEscapeCoversMandatorySet(t *testing.T) {
	in := "a\\b'c\nd\re\tf"
	got := Escape(in)
	want := `a\\b\'c\nd\re\tf`
	if got != want {
		t.Fatalf("Escape(%q) = %q, want %q", in, got, want)
	}
}

func TestUpsertSymbolQueriesWithoutParent(t *testing.T) {
	sym := model.Symbol{
		ID: "f.go:Foo:1", Name: "Foo", Kind: model.KindFunction,
		FilePath: "f.go", StartLine: 1, EndLine: 3,
		Visibility: model.VisibilityPublic, Language: model.LangGo,
	}
	qs := UpsertSymbolQueries(sym, "f.go")
	if len(qs) != 1 {
		t.Fatalf("expected one query for a parentless symbol, got %d", len(qs))
	}
	if !strings.Contains(qs[0], "MERGE (s:Function {id: 'f.go:Foo:1'})") {
		t.Fatalf("unexpected query: %s", qs[0])
	}
}

func TestUpsertSymbolQueriesWithParent(t *testing.T) {
	sym := model.Symbol{
		ID: "f.go:Bar:5", Name: "Bar", Kind: model.KindMethod,
		FilePath: "f.go", StartLine: 5, EndLine: 6, ParentID: "f.go:S:1",
		Visibility: model.VisibilityPublic, Language: model.LangGo,
	}
	qs := UpsertSymbolQueries(sym, "f.go")
	if len(qs) != 2 {
		t.Fatalf("expected two queries when a parent is present, got %d", len(qs))
	}
	if !strings.Contains(qs[1], "MATCH (p {id: 'f.go:S:1'})") {
		t.Fatalf("unexpected parent-link query: %s", qs[1])
	}
}

func TestCallQueryUsesForeachCaseWhen(t *testing.T) {
	q := CallQuery(model.Call{CallerID: "f.go:A:1", CalleeName: "B", CallSiteLine: 2})
	if !strings.Contains(q, "FOREACH (_ IN CASE WHEN callee IS NOT NULL THEN [1] ELSE [] END") {
		t.Fatalf("expected conditional-edge idiom, got: %s", q)
	}
	if !strings.Contains(q, "callee:Function {name: 'B'}") {
		t.Fatalf("expected callee matched by name against Function, got: %s", q)
	}
}

func TestInheritanceQueryMatchesAllInheritableLabels(t *testing.T) {
	q := InheritanceQuery(model.Inheritance{ChildID: "f.go:S:1", ParentName: "T"})
	for _, l := range []string{"parent:Class", "parent:Struct", "parent:Interface", "parent:Trait"} {
		if !strings.Contains(q, l) {
			t.Fatalf("expected %q in inheritance query, got: %s", l, q)
		}
	}
}

func TestUpsertImportQueryEncodesItemsAsJSON(t *testing.T) {
	q, err := UpsertImportQuery(model.Import{SourceFile: "f.js", Target: "x", Items: []string{"a", "b"}, Line: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(q, `r.items = '["a","b"]'`) {
		t.Fatalf("expected JSON-encoded items, got: %s", q)
	}
}
