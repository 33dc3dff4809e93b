// Package crawler discovers source files under a root directory in
// parallel, honoring VCS-ignore rules and an explicit directory deny-list.
package crawler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kampus-dev/kampus/pkg/ignorematch"
	"github.com/kampus-dev/kampus/pkg/klog"
	"github.com/kampus-dev/kampus/pkg/lang"
	"github.com/kampus-dev/kampus/pkg/model"
)

// SourceFile is one discovered (path, language) pair.
type SourceFile struct {
	Path     string
	Language model.Language
}

// DefaultDenyDirs are directory names never descended into, regardless of
// VCS-ignore state.
func DefaultDenyDirs() []string {
	return []string{
		"node_modules", "target", ".git", "vendor", "dist", "build",
		"__pycache__", ".venv", "venv",
	}
}

// Config controls one Crawl invocation.
type Config struct {
	Root string
	// Languages restricts discovery to this set. Empty means all supported
	// languages.
	Languages []model.Language
	// Parallelism bounds the number of directories processed concurrently.
	// Zero means a single worker.
	Parallelism int
	// RespectVCSIgnore toggles pattern matching against the Matcher given to
	// New (ignorematch.New loads the built-in defaults plus a project
	// .kampusignore; .gitignore files are not read). Explicit DenyDirs are
	// always honored regardless of this flag.
	RespectVCSIgnore bool
	// DenyDirs supplements DefaultDenyDirs with project-specific names.
	DenyDirs []string
}

// ErrRootInaccessible is returned when the root path itself cannot be read;
// this is the one catastrophic crawl failure. Per-entry I/O errors are
// logged and the entry is skipped instead.
type ErrRootInaccessible struct {
	Root string
	Err  error
}

func (e *ErrRootInaccessible) Error() string {
	return fmt.Sprintf("crawler: root %q inaccessible: %v", e.Root, e.Err)
}

func (e *ErrRootInaccessible) Unwrap() error { return e.Err }

// Crawler walks a root path and emits source files.
type Crawler struct {
	cfg      Config
	matcher  *ignorematch.Matcher
	denyDirs map[string]bool
	wantLang map[model.Language]bool
	logger   *klog.Logger
}

// New constructs a Crawler. matcher may be nil, in which case only
// DenyDirs/DefaultDenyDirs gate traversal (no .gitignore-style patterns).
func New(cfg Config, matcher *ignorematch.Matcher, logger *klog.Logger) *Crawler {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	if logger == nil {
		logger = klog.New("crawler")
	}

	deny := make(map[string]bool)
	for _, d := range DefaultDenyDirs() {
		deny[d] = true
	}
	for _, d := range cfg.DenyDirs {
		deny[d] = true
	}

	var want map[model.Language]bool
	if len(cfg.Languages) > 0 {
		want = make(map[model.Language]bool, len(cfg.Languages))
		for _, l := range cfg.Languages {
			want[l] = true
		}
	}

	return &Crawler{cfg: cfg, matcher: matcher, denyDirs: deny, wantLang: want, logger: logger}
}

// Crawl walks cfg.Root and returns every matching file. Order is not
// guaranteed. A catastrophic failure reading the root itself aborts the
// crawl; individual entry errors are logged and skipped.
func (c *Crawler) Crawl(ctx context.Context) ([]SourceFile, error) {
	if _, err := os.Stat(c.cfg.Root); err != nil {
		return nil, &ErrRootInaccessible{Root: c.cfg.Root, Err: err}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Parallelism)

	var mu sync.Mutex
	var results []SourceFile

	var walkDir func(dir string) error
	walkDir = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			c.logger.Printf("skipping unreadable directory %s: %v", dir, err)
			return nil
		}

		for _, entry := range entries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			name := entry.Name()
			full := filepath.Join(dir, name)
			rel, err := filepath.Rel(c.cfg.Root, full)
			if err != nil {
				rel = full
			}

			if entry.IsDir() {
				if c.skipDir(name, rel) {
					continue
				}
				sub := full
				// Every worker slot may be held by a walker waiting here, so
				// when none is free the subdirectory is walked inline.
				if !g.TryGo(func() error { return walkDir(sub) }) {
					if err := walkDir(sub); err != nil {
						return err
					}
				}
				continue
			}

			if c.skipFile(name, rel) {
				continue
			}

			language, ok := lang.DetectPath(name)
			if !ok {
				continue
			}
			if c.wantLang != nil && !c.wantLang[language] {
				continue
			}

			mu.Lock()
			results = append(results, SourceFile{Path: full, Language: language})
			mu.Unlock()
		}
		return nil
	}

	g.Go(func() error { return walkDir(c.cfg.Root) })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CountByLanguage crawls and tallies the result by language, the supplement
// carried over from the original Rust crawler's count_by_language.
func (c *Crawler) CountByLanguage(ctx context.Context) (map[model.Language]int, error) {
	files, err := c.Crawl(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[model.Language]int)
	for _, f := range files {
		counts[f.Language]++
	}
	return counts, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func (c *Crawler) skipDir(name, rel string) bool {
	if isHidden(name) {
		return true
	}
	if c.denyDirs[name] {
		return true
	}
	if c.cfg.RespectVCSIgnore && c.matcher != nil && c.matcher.ShouldIgnore(rel, true) {
		return true
	}
	return false
}

func (c *Crawler) skipFile(name, rel string) bool {
	if isHidden(name) {
		return true
	}
	if c.cfg.RespectVCSIgnore && c.matcher != nil && c.matcher.ShouldIgnore(rel, false) {
		return true
	}
	return false
}
