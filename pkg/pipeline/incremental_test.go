package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/kampus-dev/kampus/pkg/graph/boltadapter"
	"github.com/kampus-dev/kampus/pkg/vcsdiff"
)

func initRepo(t *testing.T) (string, *gogit.Repository, *gogit.Worktree) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	return dir, repo, wt
}

func commitAll(t *testing.T, repo *gogit.Repository, wt *gogit.Worktree, msg string) string {
	t.Helper()
	if _, err := wt.Add("."); err != nil {
		t.Fatal(err)
	}
	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Unix(1700000000, 0)}
	hash, err := wt.Commit(msg, &gogit.CommitOptions{Author: sig})
	if err != nil {
		t.Fatal(err)
	}
	return hash.String()
}

func TestIncrementalFailsFastWithNoSinceRef(t *testing.T) {
	root, repo, wt := initRepo(t)
	writeFile(t, root, "a.go", "package a\n\nfunc A() {}\n")
	commitAll(t, repo, wt, "initial")

	adapter := boltadapter.New()
	defer adapter.Close()

	_, err := Incremental(adapter, IncrementalConfig{Root: root, DBURI: t.TempDir(), GraphName: "test"})
	if err != ErrNoSinceRef {
		t.Fatalf("expected ErrNoSinceRef, got %v", err)
	}
}

func TestIncrementalAppliesAddedModifiedAndDeleted(t *testing.T) {
	root, repo, wt := initRepo(t)
	writeFile(t, root, "a.go", "package a\n\nfunc A() {}\n")
	writeFile(t, root, "b.go", "package b\n\nfunc B() {}\n")
	first := commitAll(t, repo, wt, "initial")

	writeFile(t, root, "a.go", "package a\n\nfunc A() { B() }\n") // modified
	writeFile(t, root, "c.go", "package c\n\nfunc C() {}\n")      // added
	if err := os.Remove(filepath.Join(root, "b.go")); err != nil {
		t.Fatal(err)
	}
	second := commitAll(t, repo, wt, "second")

	dbURI := t.TempDir()
	seed := boltadapter.New()
	if err := seed.Connect(dbURI, "test"); err != nil {
		t.Fatal(err)
	}
	if err := seed.SetMetadata("last_indexed_commit", first); err != nil {
		t.Fatal(err)
	}
	if err := seed.Close(); err != nil {
		t.Fatal(err)
	}

	a2 := boltadapter.New()
	defer a2.Close()

	result, err := Incremental(a2, IncrementalConfig{Root: root, DBURI: dbURI, GraphName: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if result.NewHead != second {
		t.Fatalf("expected new head %s, got %s", second, result.NewHead)
	}

	kinds := map[string]vcsdiff.ChangeKind{}
	for _, c := range result.Applied {
		kinds[c.Path] = c.Kind
	}
	if kinds["a.go"] != vcsdiff.Modified || kinds["c.go"] != vcsdiff.Added || kinds["b.go"] != vcsdiff.Deleted {
		t.Fatalf("unexpected applied changes: %+v", result.Applied)
	}

	value, found, err := a2.GetMetadata("last_indexed_commit")
	if err != nil {
		t.Fatal(err)
	}
	if !found || value != second {
		t.Fatalf("expected last_indexed_commit updated to %s, got %q", second, value)
	}
}

func TestIncrementalDryRunDoesNotWrite(t *testing.T) {
	root, repo, wt := initRepo(t)
	writeFile(t, root, "a.go", "package a\n\nfunc A() {}\n")
	first := commitAll(t, repo, wt, "initial")

	writeFile(t, root, "a.go", "package a\n\nfunc A() { /* changed */ }\n")
	commitAll(t, repo, wt, "second")

	dbURI := t.TempDir()
	seed := boltadapter.New()
	if err := seed.Connect(dbURI, "test"); err != nil {
		t.Fatal(err)
	}
	if err := seed.SetMetadata("last_indexed_commit", first); err != nil {
		t.Fatal(err)
	}
	if err := seed.Close(); err != nil {
		t.Fatal(err)
	}

	adapter := boltadapter.New()
	defer adapter.Close()

	result, err := Incremental(adapter, IncrementalConfig{Root: root, DBURI: dbURI, GraphName: "test", DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if !result.DryRun || len(result.Applied) != 1 {
		t.Fatalf("expected one dry-run change, got %+v", result)
	}

	value, _, err := adapter.GetMetadata("last_indexed_commit")
	if err != nil {
		t.Fatal(err)
	}
	if value != first {
		t.Fatal("dry-run must not advance last_indexed_commit")
	}
}
