package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kampus-dev/kampus/pkg/graph"
	"github.com/kampus-dev/kampus/pkg/graph/boltadapter"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFullIndexesCrawledFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n\nfunc A() {}\n")
	writeFile(t, root, "sub/b.go", "package sub\n\nfunc B() { A() }\n")

	adapter := boltadapter.New()
	defer adapter.Close()

	var progressCalls int
	result, err := Full(context.Background(), adapter, FullConfig{
		Root:       root,
		DBURI:      t.TempDir(),
		GraphName:  "test",
		OnProgress: func(Progress) { progressCalls++ },
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Stats.TotalFiles != 2 {
		t.Fatalf("expected 2 files indexed, got %d (failed=%v)", result.Stats.TotalFiles, result.FailedFiles)
	}
	if len(result.FailedFiles) != 0 {
		t.Fatalf("expected no failures, got %v", result.FailedFiles)
	}

	stats, err := adapter.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.NodesByLabel[graph.LabelFile] != 2 {
		t.Fatalf("expected 2 File nodes, got %d", stats.NodesByLabel[graph.LabelFile])
	}
	if stats.EdgesByType[graph.RelCalls] != 1 {
		t.Fatalf("expected 1 CALLS edge (B -> A), got %d", stats.EdgesByType[graph.RelCalls])
	}
}

func TestFullRecordsLastIndexedCommitWhenRootIsGitRepo(t *testing.T) {
	root, repo, wt := initRepo(t)
	writeFile(t, root, "a.go", "package a\n\nfunc A() {}\n")
	head := commitAll(t, repo, wt, "initial")

	adapter := boltadapter.New()
	defer adapter.Close()

	_, err := Full(context.Background(), adapter, FullConfig{
		Root: root, DBURI: t.TempDir(), GraphName: "test",
	})
	if err != nil {
		t.Fatal(err)
	}

	value, found, err := adapter.GetMetadata("last_indexed_commit")
	if err != nil {
		t.Fatal(err)
	}
	if !found || value != head {
		t.Fatalf("expected last_indexed_commit=%s, got %q (found=%v)", head, value, found)
	}
}

func TestFullSkipsLastIndexedCommitWhenNotAGitRepo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n\nfunc A() {}\n")

	adapter := boltadapter.New()
	defer adapter.Close()

	_, err := Full(context.Background(), adapter, FullConfig{
		Root: root, DBURI: t.TempDir(), GraphName: "test",
	})
	if err != nil {
		t.Fatal(err)
	}

	_, found, err := adapter.GetMetadata("last_indexed_commit")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected no last_indexed_commit to be recorded outside a git repo")
	}
}
