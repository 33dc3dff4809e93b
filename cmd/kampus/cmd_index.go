package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/kampus-dev/kampus/pkg/config"
	"github.com/kampus-dev/kampus/pkg/graph/boltadapter"
	"github.com/kampus-dev/kampus/pkg/lang"
	"github.com/kampus-dev/kampus/pkg/model"
	"github.com/kampus-dev/kampus/pkg/pipeline"
)

// cmdIndex runs a full index of a directory: `index [path] [--languages=L,...]
// [--jobs=N] [--no-clear]`.
func cmdIndex(cfg config.Config, args []string) error {
	root := "."
	if positional := positionalArgs(args); len(positional) > 0 {
		root = positional[0]
	}

	languages, err := parseLanguages(parseFlag(args, "--languages="))
	if err != nil {
		return err
	}

	adapter := boltadapter.New()
	result, err := pipeline.Full(context.Background(), adapter, pipeline.FullConfig{
		Root:        root,
		DBURI:       cfg.DBURI,
		GraphName:   cfg.GraphName,
		Languages:   languages,
		Parallelism: parseIntFlag(args, "--jobs=", 0),
		Clear:       !hasFlag(args, "--no-clear"),
		OnProgress:  printIndexProgress,
	})
	if err != nil {
		return err
	}
	fmt.Println()

	stats := result.Stats
	fmt.Printf("indexed %d files, %d symbols, %d calls, %d imports\n",
		stats.TotalFiles, stats.TotalSymbols, stats.TotalCalls, stats.TotalImports)
	if stats.LastIndexedCommit != "" {
		fmt.Printf("last indexed commit: %s\n", stats.LastIndexedCommit)
	}
	if len(result.FailedFiles) > 0 {
		fmt.Printf("%d file(s) failed:\n", len(result.FailedFiles))
		for path, err := range result.FailedFiles {
			fmt.Printf("  %s: %v\n", path, err)
		}
	}
	return nil
}

func printIndexProgress(p pipeline.Progress) {
	fmt.Printf("\rindexing... %d/%d files (%d failed)", p.FilesDone, p.FilesTotal, p.Failed)
}

// parseLanguages parses a comma-separated --languages= value into
// model.Language tags, erroring on the first unrecognized one.
func parseLanguages(raw string) ([]model.Language, error) {
	if raw == "" {
		return nil, nil
	}
	var out []model.Language
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		l, ok := lang.ParseTag(tag)
		if !ok {
			return nil, fmt.Errorf("unrecognized language: %s", tag)
		}
		out = append(out, l)
	}
	return out, nil
}
