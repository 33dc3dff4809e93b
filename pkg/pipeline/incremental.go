package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kampus-dev/kampus/pkg/extract"
	"github.com/kampus-dev/kampus/pkg/grammar"
	"github.com/kampus-dev/kampus/pkg/graph"
	"github.com/kampus-dev/kampus/pkg/klog"
	"github.com/kampus-dev/kampus/pkg/lang"
	"github.com/kampus-dev/kampus/pkg/model"
	"github.com/kampus-dev/kampus/pkg/parser"
	"github.com/kampus-dev/kampus/pkg/vcsdiff"
)

// IncrementalConfig controls one Incremental run.
type IncrementalConfig struct {
	Root      string
	DBURI     string
	GraphName string
	Languages []model.Language
	// Since overrides the last_indexed_commit metadata when non-empty.
	Since  string
	DryRun bool
}

// AppliedChange is one change the incremental run acted on (or, in dry-run
// mode, would have acted on).
type AppliedChange struct {
	Path string
	Kind vcsdiff.ChangeKind
}

// IncrementalResult summarizes a completed (or dry-run) Incremental run.
type IncrementalResult struct {
	Applied  []AppliedChange
	DryRun   bool
	SinceRef string
	NewHead  string
}

// ErrNoSinceRef is fatal: neither an explicit --since nor a recorded
// last_indexed_commit metadata value was available.
var ErrNoSinceRef = fmt.Errorf("pipeline: no --since given and no last_indexed_commit recorded; run a full index first")

// Incremental runs open-VCS -> connect -> resolve since-ref -> diff against
// HEAD -> filter by language -> dry-run early return, or else apply each
// change in discovery order (delete-before-upsert on Modified/Renamed) ->
// record the new HEAD as last_indexed_commit. Mirrors
// index::incremental::run in the original implementation.
func Incremental(adapter graph.Adapter, cfg IncrementalConfig) (IncrementalResult, error) {
	logger := klog.New("pipeline:incremental")

	repo, err := vcsdiff.Open(cfg.Root)
	if err != nil {
		return IncrementalResult{}, fmt.Errorf("pipeline: %w", err)
	}

	if err := adapter.Connect(cfg.DBURI, cfg.GraphName); err != nil {
		return IncrementalResult{}, fmt.Errorf("pipeline: connect: %w", err)
	}

	since := cfg.Since
	if since == "" {
		recorded, found, err := adapter.GetMetadata("last_indexed_commit")
		if err != nil {
			return IncrementalResult{}, fmt.Errorf("pipeline: reading last_indexed_commit: %w", err)
		}
		if !found {
			return IncrementalResult{}, ErrNoSinceRef
		}
		since = recorded
	}

	changes, err := repo.ChangesSince(since)
	if err != nil {
		return IncrementalResult{}, fmt.Errorf("pipeline: diffing since %s: %w", since, err)
	}

	wantLang := languageSet(cfg.Languages)
	changes = filterByLanguage(changes, wantLang)

	if cfg.DryRun {
		applied := make([]AppliedChange, 0, len(changes))
		for _, c := range changes {
			logger.Printf("would %s %s", c.Kind, c.Path)
			applied = append(applied, AppliedChange{Path: c.Path, Kind: c.Kind})
		}
		return IncrementalResult{Applied: applied, DryRun: true, SinceRef: since}, nil
	}

	registry := grammar.NewRegistry()
	pool := parser.NewPool(registry)
	defer pool.Close()

	applied := make([]AppliedChange, 0, len(changes))
	for _, c := range changes {
		if err := applyChange(adapter, pool, cfg.Root, c); err != nil {
			return IncrementalResult{}, fmt.Errorf("pipeline: applying %s %s: %w", c.Kind, c.Path, err)
		}
		applied = append(applied, AppliedChange{Path: c.Path, Kind: c.Kind})
	}

	head, err := repo.HeadCommit()
	if err != nil {
		return IncrementalResult{}, fmt.Errorf("pipeline: resolving new HEAD: %w", err)
	}
	if err := adapter.SetMetadata("last_indexed_commit", head); err != nil {
		return IncrementalResult{}, fmt.Errorf("pipeline: recording last_indexed_commit: %w", err)
	}

	return IncrementalResult{Applied: applied, SinceRef: since, NewHead: head}, nil
}

// applyChange dispatches one ChangedFile: Deleted removes by path; Renamed
// deletes the old path then parses and upserts the new one; Added and
// Modified both parse and upsert, with Modified deleting the existing
// record first so no stale symbol or relationship survives. The change's
// repository-relative paths are joined onto root, as the full crawl does.
func applyChange(adapter graph.Adapter, pool *parser.Pool, root string, c vcsdiff.ChangedFile) error {
	path := filepath.Join(root, c.Path)
	switch c.Kind {
	case vcsdiff.Deleted:
		return adapter.DeleteFile(path)

	case vcsdiff.Renamed:
		if c.OldPath != "" {
			if err := adapter.DeleteFile(filepath.Join(root, c.OldPath)); err != nil {
				return err
			}
		}
		return parseAndUpsert(adapter, pool, path)

	case vcsdiff.Modified:
		if err := adapter.DeleteFile(path); err != nil {
			return err
		}
		return parseAndUpsert(adapter, pool, path)

	case vcsdiff.Added:
		return parseAndUpsert(adapter, pool, path)

	default:
		return fmt.Errorf("unknown change kind %q", c.Kind)
	}
}

func parseAndUpsert(adapter graph.Adapter, pool *parser.Pool, path string) error {
	language, ok := lang.DetectPath(path)
	if !ok {
		return nil
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}
	tree, err := pool.Parse(language, source)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	fs, err := extract.Extract(language, tree, source, path)
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}
	return adapter.UpsertFile(fs)
}

func languageSet(languages []model.Language) map[model.Language]bool {
	if len(languages) == 0 {
		return nil
	}
	set := make(map[model.Language]bool, len(languages))
	for _, l := range languages {
		set[l] = true
	}
	return set
}

func filterByLanguage(changes []vcsdiff.ChangedFile, want map[model.Language]bool) []vcsdiff.ChangedFile {
	out := changes[:0:0]
	for _, c := range changes {
		l, ok := lang.DetectPath(c.Path)
		if !ok {
			continue
		}
		if want != nil && !want[l] {
			continue
		}
		out = append(out, c)
	}
	return out
}
