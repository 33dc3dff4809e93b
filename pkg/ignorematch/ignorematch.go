// Package ignorematch provides gitignore-compatible path matching used by
// the crawler to decide which files and directories to skip.
//
// Patterns load from a project's .kampusignore file (if present) layered
// over a built-in default set covering common build artifacts, caches, and
// vendor directories across the supported languages. Pattern syntax
// mirrors .gitignore:
//
//	# comment
//	*.pb.go          — match files by extension, any depth
//	vendor/          — match a directory by name, any depth
//	**/testdata/     — match at any depth, explicit form
//	!keep.go         — negate a previous pattern
//	/rootonly        — anchored to the crawl root
package ignorematch

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides whether a path should be excluded from a crawl.
type Matcher struct {
	rules []rule
}

// rule holds a pattern already compiled into the single doublestar glob
// that ShouldIgnore tests a candidate path against — see parsePattern.
type rule struct {
	glob    string
	negate  bool
	dirOnly bool
}

// Defaults are applied even when no .kampusignore file is present. They
// cover the build/cache/vendor noise for every language in the closed
// Language enum plus general VCS and editor directories.
var Defaults = []string{
	".git/",
	".svn/",
	".hg/",
	".kampus/",

	// JavaScript / TypeScript
	"node_modules/",
	"dist/",
	".next/",
	".nuxt/",
	"coverage/",
	".cache/",

	// Python
	"__pycache__/",
	".venv/",
	"venv/",
	".tox/",
	".mypy_cache/",
	".pytest_cache/",
	"*.egg-info/",

	// Go
	"vendor/",

	// Rust
	"target/",

	// C++
	"cmake-build-debug/",
	"cmake-build-release/",
	"build/",

	// IDE / editor
	".idea/",
	".vscode/",
	".DS_Store",

	// Large fixture trees that rarely carry indexable source
	"**/testdata/",
	"**/fixtures/",
}

const overrideFileName = ".kampusignore"

// New builds a Matcher from Defaults plus <projectRoot>/.kampusignore, if
// present. A missing override file is not an error.
func New(projectRoot string) (*Matcher, error) {
	m := FromDefaults()
	err := m.loadFile(filepath.Join(projectRoot, overrideFileName))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return m, nil
}

// FromDefaults builds a Matcher using only the built-in pattern set.
func FromDefaults() *Matcher {
	m := &Matcher{}
	for _, p := range Defaults {
		m.rules = append(m.rules, parsePattern(p))
	}
	return m
}

// Empty builds a Matcher with no rules — nothing is ever ignored.
func Empty() *Matcher {
	return &Matcher{}
}

// ShouldIgnore reports whether path, relative to the project root and
// forward-slash separated, should be excluded. isDir must reflect whether
// path names a directory.
func (m *Matcher) ShouldIgnore(path string, isDir bool) bool {
	path = strings.TrimSuffix(filepath.ToSlash(path), "/")
	if path == "" || path == "." {
		return false
	}

	ignored, matched := false, false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if ok, _ := doublestar.Match(r.glob, path); ok {
			ignored = !r.negate
			matched = true
		}
	}
	if ignored {
		return true
	}
	if matched {
		// An explicit negation wins over an ancestor-directory match.
		return false
	}

	if !isDir {
		parts := strings.Split(path, "/")
		for i := 1; i < len(parts); i++ {
			if m.ShouldIgnore(strings.Join(parts[:i], "/"), true) {
				return true
			}
		}
	}
	return false
}

func (m *Matcher) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.rules = append(m.rules, parsePattern(line))
	}
	return scanner.Err()
}

// parsePattern converts one gitignore-style line into a rule, compiling it
// down to a single doublestar glob so ShouldIgnore never needs to reason
// about "**" itself — the pattern either already names its own depth (a
// leading "/" or any interior "/" anchors it to the root, per gitignore's
// own rule) or it gets a "**/" prefix so it matches at any depth, since
// doublestar's "**" already matches zero or more path segments.
func parsePattern(pattern string) rule {
	var r rule

	if strings.HasPrefix(pattern, "!") {
		r.negate = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		r.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	anchored := strings.HasPrefix(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")
	anchored = anchored || strings.Contains(pattern, "/")

	if anchored {
		r.glob = pattern
	} else {
		r.glob = "**/" + pattern
	}
	return r
}
