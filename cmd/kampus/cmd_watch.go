package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kampus-dev/kampus/pkg/config"
	"github.com/kampus-dev/kampus/pkg/grammar"
	"github.com/kampus-dev/kampus/pkg/graph/boltadapter"
	"github.com/kampus-dev/kampus/pkg/klog"
	"github.com/kampus-dev/kampus/pkg/pipeline"
	"github.com/kampus-dev/kampus/pkg/watch"
)

// cmdWatch runs a full index, then keeps the graph current by watching the
// given paths and reindexing changed files as they happen:
// `watch [paths...] [--no-initial-index]`. Not named by spec §6.3; it wires
// pkg/watch and the already-built Full pipeline together for a long-running
// process, a natural extension of the on-demand index/update commands.
func cmdWatch(cfg config.Config, args []string) error {
	paths := positionalArgs(args)
	root := "."
	if len(paths) > 0 {
		root = paths[0]
	}

	adapter := boltadapter.New()

	if !hasFlag(args, "--no-initial-index") {
		result, err := pipeline.Full(context.Background(), adapter, pipeline.FullConfig{
			Root:      root,
			DBURI:     cfg.DBURI,
			GraphName: cfg.GraphName,
			Clear:     true,
		})
		if err != nil {
			return fmt.Errorf("initial index: %w", err)
		}
		fmt.Printf("initial index: %d files, %d symbols\n", result.Stats.TotalFiles, result.Stats.TotalSymbols)
	} else if err := adapter.Connect(cfg.DBURI, cfg.GraphName); err != nil {
		return err
	} else if err := adapter.Initialize(); err != nil {
		return err
	}
	defer adapter.Close()

	logger := klog.New("watch")
	if len(paths) == 0 {
		paths = []string{root}
	}

	handler := watch.ReindexHandler(adapter, grammar.NewRegistry(), logger.Sub("reindex"))
	watcher, err := watch.New(watch.Config{Paths: paths}, handler)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Printf("shutting down")
	return watcher.Stop()
}
