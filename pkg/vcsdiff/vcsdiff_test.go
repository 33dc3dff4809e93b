package vcsdiff

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
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

func TestChangesBetweenDetectsAddedAndModified(t *testing.T) {
	dir, repo, wt := initRepo(t)

	write(t, dir, "a.go", "package a\n")
	first := commitAll(t, repo, wt, "initial")

	write(t, dir, "a.go", "package a\n\nfunc A() {}\n")
	write(t, dir, "b.go", "package b\n")
	second := commitAll(t, repo, wt, "second")

	p := &Provider{repo: repo}
	changes, err := p.ChangesBetween(first, second)
	if err != nil {
		t.Fatal(err)
	}

	kinds := map[string]ChangeKind{}
	for _, c := range changes {
		kinds[c.Path] = c.Kind
	}
	if kinds["a.go"] != Modified {
		t.Fatalf("expected a.go modified, got %+v", kinds)
	}
	if kinds["b.go"] != Added {
		t.Fatalf("expected b.go added, got %+v", kinds)
	}
}

func TestChangesBetweenDetectsRenameByIdenticalContent(t *testing.T) {
	dir, repo, wt := initRepo(t)

	write(t, dir, "old.go", "package a\n\nfunc A() {}\n")
	first := commitAll(t, repo, wt, "initial")

	if err := os.Rename(filepath.Join(dir, "old.go"), filepath.Join(dir, "new.go")); err != nil {
		t.Fatal(err)
	}
	second := commitAll(t, repo, wt, "rename")

	p := &Provider{repo: repo}
	changes, err := p.ChangesBetween(first, second)
	if err != nil {
		t.Fatal(err)
	}

	if len(changes) != 1 {
		t.Fatalf("expected exactly one change, got %+v", changes)
	}
	c := changes[0]
	if c.Kind != Renamed || c.Path != "new.go" || c.OldPath != "old.go" {
		t.Fatalf("expected new.go renamed from old.go, got %+v", c)
	}
}

func TestChangesBetweenDoesNotPairUnrelatedAddAndDelete(t *testing.T) {
	dir, repo, wt := initRepo(t)

	write(t, dir, "old.go", "package a\n")
	first := commitAll(t, repo, wt, "initial")

	if err := os.Remove(filepath.Join(dir, "old.go")); err != nil {
		t.Fatal(err)
	}
	write(t, dir, "new.go", "package b\n\nfunc B() {}\n")
	second := commitAll(t, repo, wt, "unrelated add and delete")

	p := &Provider{repo: repo}
	changes, err := p.ChangesBetween(first, second)
	if err != nil {
		t.Fatal(err)
	}

	kinds := map[string]ChangeKind{}
	for _, c := range changes {
		kinds[c.Path] = c.Kind
	}
	if kinds["old.go"] != Deleted || kinds["new.go"] != Added {
		t.Fatalf("expected old.go deleted and new.go added (no content match), got %+v", kinds)
	}
}

func TestHeadCommit(t *testing.T) {
	dir, repo, wt := initRepo(t)
	write(t, dir, "a.go", "package a\n")
	want := commitAll(t, repo, wt, "initial")

	p := &Provider{repo: repo}
	got, err := p.HeadCommit()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("expected HEAD %s, got %s", want, got)
	}
}

func TestUncommittedChangesIncludesUntracked(t *testing.T) {
	dir, repo, wt := initRepo(t)
	write(t, dir, "a.go", "package a\n")
	commitAll(t, repo, wt, "initial")

	write(t, dir, "new.go", "package a\n")

	p := &Provider{repo: repo}
	changes, err := p.UncommittedChanges()
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, c := range changes {
		if c.Path == "new.go" && c.Kind == Added {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected new.go to appear as an untracked Added change, got %+v", changes)
	}
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
