package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/kampus-dev/kampus/pkg/graph"
	"github.com/kampus-dev/kampus/pkg/graph/boltadapter"
)

func TestReindexHandlerUpsertsWrittenFileAndDeletesRemoved(t *testing.T) {
	root := t.TempDir()
	aPath := filepath.Join(root, "a.go")
	if err := os.WriteFile(aPath, []byte("package a\n\nfunc A() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	adapter := boltadapter.New()
	if err := adapter.Connect(t.TempDir(), "test"); err != nil {
		t.Fatal(err)
	}
	defer adapter.Close()

	handler := ReindexHandler(adapter, nil, nil)
	handler.OnChanges(map[string]fsnotify.Op{aPath: fsnotify.Write})

	stats, err := adapter.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.NodesByLabel[graph.LabelFile] != 1 || stats.NodesByLabel[graph.LabelFunction] != 1 {
		t.Fatalf("expected file indexed after a write event, got %+v", stats)
	}

	if err := os.Remove(aPath); err != nil {
		t.Fatal(err)
	}
	handler.OnChanges(map[string]fsnotify.Op{aPath: fsnotify.Remove})

	stats, err = adapter.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.NodesByLabel[graph.LabelFile] != 0 {
		t.Fatalf("expected file removed after a remove event, got %+v", stats)
	}
}

func TestReindexHandlerSkipsUnsupportedExtensions(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "README.md")
	if err := os.WriteFile(path, []byte("# hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	adapter := boltadapter.New()
	if err := adapter.Connect(t.TempDir(), "test"); err != nil {
		t.Fatal(err)
	}
	defer adapter.Close()

	handler := ReindexHandler(adapter, nil, nil)
	handler.OnChanges(map[string]fsnotify.Op{path: fsnotify.Write})

	stats, err := adapter.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.NodesByLabel[graph.LabelFile] != 0 {
		t.Fatalf("expected no File node for an unsupported extension, got %+v", stats)
	}
}
