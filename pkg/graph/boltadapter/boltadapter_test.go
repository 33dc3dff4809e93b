package boltadapter

import (
	"testing"

	"github.com/kampus-dev/kampus/pkg/graph"
	"github.com/kampus-dev/kampus/pkg/graph/cypher"
	"github.com/kampus-dev/kampus/pkg/model"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a := New()
	if err := a.Connect(t.TempDir(), "testgraph"); err != nil {
		t.Fatal(err)
	}
	if err := a.Initialize(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func sampleFile() model.FileSymbols {
	return model.FileSymbols{
		FilePath: "a.py", Language: model.LangPython,
		ContentHash: "deadbeef", LineCount: 2,
		Symbols: []model.Symbol{
			{ID: "a.py:A:1", Name: "A", Kind: model.KindClass, FilePath: "a.py",
				StartLine: 1, EndLine: 2, Visibility: model.VisibilityPublic, Language: model.LangPython},
			{ID: "a.py:m:2", Name: "m", Kind: model.KindMethod, FilePath: "a.py",
				StartLine: 2, EndLine: 2, ParentID: "a.py:A:1",
				Visibility: model.VisibilityPublic, Language: model.LangPython},
		},
	}
}

func TestUpsertFileThenStatsCountsNodes(t *testing.T) {
	a := newTestAdapter(t)
	if err := a.UpsertFile(sampleFile()); err != nil {
		t.Fatal(err)
	}

	stats, err := a.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.NodesByLabel[graph.LabelFile] != 1 {
		t.Fatalf("expected 1 File node, got %d", stats.NodesByLabel[graph.LabelFile])
	}
	if stats.NodesByLabel[graph.LabelClass] != 1 || stats.NodesByLabel[graph.LabelMethod] != 1 {
		t.Fatalf("unexpected symbol node counts: %+v", stats.NodesByLabel)
	}
	if stats.EdgesByType[graph.RelContains] != 3 {
		t.Fatalf("expected 3 CONTAINS edges (file->class, file->method, class->method), got %d", stats.EdgesByType[graph.RelContains])
	}
}

func TestCallsEdgeOnlyCreatedWhenCalleeExists(t *testing.T) {
	a := newTestAdapter(t)

	fs := model.FileSymbols{
		FilePath: "b.go", Language: model.LangGo, ContentHash: "x", LineCount: 3,
		Symbols: []model.Symbol{
			{ID: "b.go:Caller:1", Name: "Caller", Kind: model.KindFunction, FilePath: "b.go",
				StartLine: 1, EndLine: 1, Visibility: model.VisibilityPublic, Language: model.LangGo},
		},
		Calls: []model.Call{
			{CallerID: "b.go:Caller:1", CalleeName: "DoesNotExist", CallSiteLine: 1},
		},
	}
	if err := a.UpsertFile(fs); err != nil {
		t.Fatal(err)
	}

	stats, err := a.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.EdgesByType[graph.RelCalls] != 0 {
		t.Fatalf("expected no CALLS edge for an unresolved callee, got %d", stats.EdgesByType[graph.RelCalls])
	}

	callee := model.FileSymbols{
		FilePath: "c.go", Language: model.LangGo, ContentHash: "y", LineCount: 1,
		Symbols: []model.Symbol{
			{ID: "c.go:DoesNotExist:1", Name: "DoesNotExist", Kind: model.KindFunction, FilePath: "c.go",
				StartLine: 1, EndLine: 1, Visibility: model.VisibilityPublic, Language: model.LangGo},
		},
	}
	if err := a.UpsertFile(callee); err != nil {
		t.Fatal(err)
	}
	if err := a.UpsertFile(fs); err != nil {
		t.Fatal(err)
	}

	stats, err = a.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.EdgesByType[graph.RelCalls] != 1 {
		t.Fatalf("expected exactly 1 CALLS edge once the callee exists, got %d", stats.EdgesByType[graph.RelCalls])
	}
}

func TestDeleteFileRemovesSymbolsAndEdges(t *testing.T) {
	a := newTestAdapter(t)
	if err := a.UpsertFile(sampleFile()); err != nil {
		t.Fatal(err)
	}
	if err := a.DeleteFile("a.py"); err != nil {
		t.Fatal(err)
	}

	stats, err := a.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.NodesByLabel[graph.LabelFile] != 0 {
		t.Fatalf("expected File node gone, got %d", stats.NodesByLabel[graph.LabelFile])
	}
	if stats.NodesByLabel[graph.LabelClass] != 0 || stats.NodesByLabel[graph.LabelMethod] != 0 {
		t.Fatalf("expected symbol nodes gone, got %+v", stats.NodesByLabel)
	}
	if stats.EdgesByType[graph.RelContains] != 0 {
		t.Fatalf("expected CONTAINS edges gone, got %d", stats.EdgesByType[graph.RelContains])
	}
}

func TestDeleteThenUpsertRoundTripsToSameCounts(t *testing.T) {
	a := newTestAdapter(t)
	fs := sampleFile()
	if err := a.UpsertFile(fs); err != nil {
		t.Fatal(err)
	}
	before, err := a.Stats()
	if err != nil {
		t.Fatal(err)
	}

	if err := a.DeleteFile(fs.FilePath); err != nil {
		t.Fatal(err)
	}
	if err := a.UpsertFile(fs); err != nil {
		t.Fatal(err)
	}

	after, err := a.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if before.NodesByLabel[graph.LabelClass] != after.NodesByLabel[graph.LabelClass] ||
		before.NodesByLabel[graph.LabelMethod] != after.NodesByLabel[graph.LabelMethod] ||
		before.EdgesByType[graph.RelContains] != after.EdgesByType[graph.RelContains] {
		t.Fatalf("round trip changed counts: before=%+v after=%+v", before, after)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	a := newTestAdapter(t)
	if err := a.SetMetadata("last_indexed_commit", "abc123"); err != nil {
		t.Fatal(err)
	}
	value, found, err := a.GetMetadata("last_indexed_commit")
	if err != nil {
		t.Fatal(err)
	}
	if !found || value != "abc123" {
		t.Fatalf("expected abc123, got %q (found=%v)", value, found)
	}

	_, found, err = a.GetMetadata("unknown_key")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected unknown_key to be absent")
	}
}

func TestQuerySupportsCountAndMetadataShapes(t *testing.T) {
	a := newTestAdapter(t)
	if err := a.UpsertFile(sampleFile()); err != nil {
		t.Fatal(err)
	}
	if err := a.SetMetadata("k", "v"); err != nil {
		t.Fatal(err)
	}

	rows, err := a.Query(cypher.CountQuery(graph.LabelFile))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0].I64 != 1 {
		t.Fatalf("expected count 1, got %+v", rows)
	}

	rows, err = a.Query(cypher.GetMetadataQuery("k"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0].Str != "v" {
		t.Fatalf("expected metadata value v, got %+v", rows)
	}

	if _, err := a.Query("MATCH (n) RETURN n"); err != graph.ErrUnsupportedQuery {
		t.Fatalf("expected ErrUnsupportedQuery for an unrecognized shape, got %v", err)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	a := newTestAdapter(t)
	if err := a.UpsertFile(sampleFile()); err != nil {
		t.Fatal(err)
	}
	if err := a.Clear(); err != nil {
		t.Fatal(err)
	}
	stats, err := a.Stats()
	if err != nil {
		t.Fatal(err)
	}
	for label, n := range stats.NodesByLabel {
		if n != 0 {
			t.Fatalf("expected 0 nodes for %s after Clear, got %d", label, n)
		}
	}
}
