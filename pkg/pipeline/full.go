// Package pipeline implements the two indexing orchestrators: a full
// crawl-and-write pass and an incremental VCS-diff-driven update.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kampus-dev/kampus/pkg/crawler"
	"github.com/kampus-dev/kampus/pkg/extract"
	"github.com/kampus-dev/kampus/pkg/grammar"
	"github.com/kampus-dev/kampus/pkg/graph"
	"github.com/kampus-dev/kampus/pkg/klog"
	"github.com/kampus-dev/kampus/pkg/model"
	"github.com/kampus-dev/kampus/pkg/parser"
	"github.com/kampus-dev/kampus/pkg/vcsdiff"
)

// Progress is reported on a throttled cadence during a Full run.
type Progress struct {
	FilesDone  int
	FilesTotal int
	Failed     int
}

// ProgressFunc receives Progress updates no more often than every 100ms.
type ProgressFunc func(Progress)

// FullConfig controls one Full run.
type FullConfig struct {
	Root        string
	DBURI       string
	GraphName   string
	Languages   []model.Language
	Parallelism int // zero means runtime.NumCPU()
	Clear       bool
	OnProgress  ProgressFunc
}

// FullResult summarizes a completed Full run.
type FullResult struct {
	Stats model.IndexStats
	// FailedFiles maps a source path to the error encountered reading,
	// parsing, or extracting it. A per-file failure does not abort the run.
	FailedFiles map[string]error
}

const progressThrottle = 100 * time.Millisecond

// Full runs connect -> initialize -> optional clear -> crawl -> parallel
// parse+extract -> bulk write -> (if the root is a VCS working tree) record
// last_indexed_commit. Mirrors index::full::run in the original implementation.
func Full(ctx context.Context, adapter graph.Adapter, cfg FullConfig) (FullResult, error) {
	logger := klog.New("pipeline:full")

	if err := adapter.Connect(cfg.DBURI, cfg.GraphName); err != nil {
		return FullResult{}, fmt.Errorf("pipeline: connect: %w", err)
	}
	if err := adapter.Initialize(); err != nil {
		return FullResult{}, fmt.Errorf("pipeline: initialize: %w", err)
	}
	if cfg.Clear {
		if err := adapter.Clear(); err != nil {
			return FullResult{}, fmt.Errorf("pipeline: clear: %w", err)
		}
	}

	crawlCfg := crawler.Config{
		Root:             cfg.Root,
		Languages:        cfg.Languages,
		Parallelism:      cfg.Parallelism,
		RespectVCSIgnore: true,
	}
	files, err := crawler.New(crawlCfg, nil, logger.Sub("crawl")).Crawl(ctx)
	if err != nil {
		return FullResult{}, fmt.Errorf("pipeline: crawl: %w", err)
	}

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism()
	}

	registry := grammar.NewRegistry()

	g, gctx := errgroup.WithContext(ctx)

	var (
		mu       sync.Mutex
		records  = make([]model.FileSymbols, 0, len(files))
		failed   = make(map[string]error)
		done     int
		lastTick time.Time
	)

	reportLocked := func(force bool) {
		if cfg.OnProgress == nil {
			return
		}
		if !force && time.Since(lastTick) < progressThrottle {
			return
		}
		lastTick = time.Now()
		cfg.OnProgress(Progress{FilesDone: done, FilesTotal: len(files), Failed: len(failed)})
	}

	work := make(chan crawler.SourceFile)
	go func() {
		defer close(work)
		for _, f := range files {
			select {
			case work <- f:
			case <-gctx.Done():
				return
			}
		}
	}()

	workers := parallelism
	if workers > len(files) {
		workers = len(files)
	}
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			pool := parser.NewPool(registry)
			defer pool.Close()

			for f := range work {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				fs, err := parseAndExtract(pool, f)

				mu.Lock()
				done++
				if err != nil {
					failed[f.Path] = err
					logger.Printf("extracting %s: %v", f.Path, err)
				} else {
					records = append(records, fs)
				}
				reportLocked(false)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return FullResult{}, fmt.Errorf("pipeline: parse/extract: %w", err)
	}
	reportLocked(true)

	stats := model.IndexStats{
		FilesByLanguage: make(map[model.Language]int),
		SymbolsByKind:   make(map[model.SymbolKind]int),
	}
	// Records arrive in worker completion order; writing them in path order
	// makes name-matched CALLS/INHERITS resolution the same on every run.
	sort.Slice(records, func(i, j int) bool { return records[i].FilePath < records[j].FilePath })
	for _, fs := range records {
		if err := adapter.UpsertFile(fs); err != nil {
			return FullResult{}, fmt.Errorf("pipeline: writing %s: %w", fs.FilePath, err)
		}
		stats.TotalFiles++
		stats.FilesByLanguage[fs.Language]++
		stats.TotalSymbols += len(fs.Symbols)
		for _, sym := range fs.Symbols {
			stats.SymbolsByKind[sym.Kind]++
		}
		stats.TotalCalls += len(fs.Calls)
		stats.TotalImports += len(fs.Imports)
	}

	if repo, err := vcsdiff.Open(cfg.Root); err == nil {
		if head, err := repo.HeadCommit(); err == nil {
			if err := adapter.SetMetadata("last_indexed_commit", head); err != nil {
				return FullResult{}, fmt.Errorf("pipeline: recording last_indexed_commit: %w", err)
			}
			stats.LastIndexedCommit = head
		}
	}

	return FullResult{Stats: stats, FailedFiles: failed}, nil
}

func parseAndExtract(pool *parser.Pool, f crawler.SourceFile) (model.FileSymbols, error) {
	source, err := os.ReadFile(f.Path)
	if err != nil {
		return model.FileSymbols{}, fmt.Errorf("reading: %w", err)
	}
	tree, err := pool.Parse(f.Language, source)
	if err != nil {
		return model.FileSymbols{}, fmt.Errorf("parsing: %w", err)
	}
	fs, err := extract.Extract(f.Language, tree, source, f.Path)
	if err != nil {
		return model.FileSymbols{}, fmt.Errorf("extracting: %w", err)
	}
	return fs, nil
}
