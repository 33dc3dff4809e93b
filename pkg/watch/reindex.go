package watch

import (
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/kampus-dev/kampus/pkg/extract"
	"github.com/kampus-dev/kampus/pkg/grammar"
	"github.com/kampus-dev/kampus/pkg/graph"
	"github.com/kampus-dev/kampus/pkg/klog"
	"github.com/kampus-dev/kampus/pkg/lang"
	"github.com/kampus-dev/kampus/pkg/parser"
)

// ReindexHandler applies a debounced batch of filesystem changes straight
// to a graph.Adapter: a Remove re-states as DeleteFile; anything else
// (Write/Create/Rename) deletes any existing record for the path, then
// parses and upserts the current file content, the same
// delete-before-upsert sequence the incremental pipeline applies to a
// Modified VCS change. One *parser.Pool is reused across the batch, since a
// debounce flush runs on a single goroutine.
func ReindexHandler(adapter graph.Adapter, registry *grammar.Registry, logger *klog.Logger) ChangeHandler {
	if registry == nil {
		registry = grammar.NewRegistry()
	}
	if logger == nil {
		logger = klog.New("watch:reindex")
	}
	pool := parser.NewPool(registry)

	return ChangeHandlerFunc(func(paths map[string]fsnotify.Op) {
		for path, op := range paths {
			if op&fsnotify.Remove != 0 {
				if err := adapter.DeleteFile(path); err != nil {
					logger.Printf("deleting %s: %v", path, err)
				}
				continue
			}

			language, ok := lang.DetectPath(path)
			if !ok {
				continue
			}

			if err := adapter.DeleteFile(path); err != nil {
				logger.Printf("clearing stale record for %s: %v", path, err)
				continue
			}

			source, err := os.ReadFile(path)
			if err != nil {
				// Removed between the event firing and the flush running; not an error.
				continue
			}
			tree, err := pool.Parse(language, source)
			if err != nil {
				logger.Printf("parsing %s: %v", path, err)
				continue
			}
			fs, err := extract.Extract(language, tree, source, path)
			if err != nil {
				logger.Printf("extracting %s: %v", path, err)
				continue
			}
			if err := adapter.UpsertFile(fs); err != nil {
				logger.Printf("writing %s: %v", path, err)
			}
		}
	})
}
