package main

import (
	"errors"
	"fmt"

	"github.com/kampus-dev/kampus/pkg/config"
	"github.com/kampus-dev/kampus/pkg/graph/boltadapter"
	"github.com/kampus-dev/kampus/pkg/pipeline"
)

// cmdUpdate runs an incremental re-index driven by the VCS diff since the
// last recorded commit: `update [path] [--since=ref] [--dry-run]
// [--languages=L,...]`.
func cmdUpdate(cfg config.Config, args []string) error {
	root := "."
	if positional := positionalArgs(args); len(positional) > 0 {
		root = positional[0]
	}

	languages, err := parseLanguages(parseFlag(args, "--languages="))
	if err != nil {
		return err
	}

	adapter := boltadapter.New()
	result, err := pipeline.Incremental(adapter, pipeline.IncrementalConfig{
		Root:      root,
		DBURI:     cfg.DBURI,
		GraphName: cfg.GraphName,
		Languages: languages,
		Since:     parseFlag(args, "--since="),
		DryRun:    hasFlag(args, "--dry-run"),
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrNoSinceRef) {
			return fmt.Errorf("%w (pass --since explicitly, or run `kampus index` first)", err)
		}
		return err
	}

	verb := "applied"
	if result.DryRun {
		verb = "would apply"
	}
	fmt.Printf("%s %d change(s) since %s\n", verb, len(result.Applied), result.SinceRef)
	for _, c := range result.Applied {
		fmt.Printf("  %s %s\n", c.Kind, c.Path)
	}
	if !result.DryRun {
		fmt.Printf("new last indexed commit: %s\n", result.NewHead)
	}
	return nil
}
