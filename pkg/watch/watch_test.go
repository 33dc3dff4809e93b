package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcherDebouncesBurstIntoOneBatch(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	var batches []map[string]fsnotify.Op
	handler := ChangeHandlerFunc(func(paths map[string]fsnotify.Op) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, paths)
	})

	w, err := New(Config{Paths: []string{root}, DebounceDelay: 50 * time.Millisecond}, handler)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(batches)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a debounced batch")
		case <-time.After(10 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected exactly one debounced batch for a burst of writes, got %d", len(batches))
	}
	if _, ok := batches[0][filepath.Join(root, "a.go")]; !ok {
		t.Fatalf("expected a.go in the batch, got %+v", batches[0])
	}
}

func TestWatcherSkipsDeniedDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(Config{Paths: []string{root}}, ChangeHandlerFunc(func(map[string]fsnotify.Op) {}))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if w.dirsWatched != 1 {
		t.Fatalf("expected only the root directory watched, got %d", w.dirsWatched)
	}
}
