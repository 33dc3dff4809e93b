package main

import (
	"fmt"
	"sort"

	"github.com/kampus-dev/kampus/pkg/config"
	"github.com/kampus-dev/kampus/pkg/graph/boltadapter"
	"github.com/kampus-dev/kampus/pkg/vcsdiff"
)

// cmdStatus reports index statistics and, with --files, the VCS-tracked
// changes not yet reflected in the index: `status [--files]`.
func cmdStatus(cfg config.Config, args []string) error {
	adapter := boltadapter.New()
	if err := adapter.Connect(cfg.DBURI, cfg.GraphName); err != nil {
		return err
	}
	defer adapter.Close()

	stats, err := adapter.Stats()
	if err != nil {
		return err
	}
	commit, found, err := adapter.GetMetadata("last_indexed_commit")
	if err != nil {
		return err
	}

	fmt.Println("nodes by label:")
	for _, label := range sortedKeys(stats.NodesByLabel) {
		fmt.Printf("  %-12s %d\n", label, stats.NodesByLabel[label])
	}
	fmt.Println("edges by type:")
	for _, rel := range sortedKeys(stats.EdgesByType) {
		fmt.Printf("  %-12s %d\n", rel, stats.EdgesByType[rel])
	}
	if found {
		fmt.Printf("last indexed commit: %s\n", commit)
	} else {
		fmt.Println("last indexed commit: (none — run `kampus index` first)")
	}

	if hasFlag(args, "--files") {
		if err := printUncommittedFiles(); err != nil {
			return err
		}
	}
	return nil
}

// printUncommittedFiles supplements the status report with the VCS working
// tree's uncommitted state, since last_indexed_commit alone doesn't tell a
// user whether the tree has drifted since then.
func printUncommittedFiles() error {
	repo, err := vcsdiff.Open(".")
	if err != nil {
		fmt.Println("uncommitted changes: (not a VCS working tree)")
		return nil
	}
	changes, err := repo.UncommittedChanges()
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Println("uncommitted changes: none")
		return nil
	}
	fmt.Printf("uncommitted changes (%d):\n", len(changes))
	for _, c := range changes {
		fmt.Printf("  %-10s %s\n", c.Kind, c.Path)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
