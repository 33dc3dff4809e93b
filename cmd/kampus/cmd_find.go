package main

import (
	"fmt"

	"github.com/kampus-dev/kampus/pkg/config"
	"github.com/kampus-dev/kampus/pkg/graph/boltadapter"
	"github.com/kampus-dev/kampus/pkg/lang"
)

// cmdFind runs a fuzzy symbol search: `find <pattern> [--kind=K]
// [--language=L] [--limit=N]`.
func cmdFind(cfg config.Config, args []string) error {
	positional := positionalArgs(args)
	if len(positional) == 0 {
		return fmt.Errorf("usage: kampus find <pattern> [--kind=K] [--language=L] [--limit=N]")
	}
	pattern := positional[0]
	kind := parseFlag(args, "--kind=")
	limit := parseIntFlag(args, "--limit=", 20)

	language := ""
	if tag := parseFlag(args, "--language="); tag != "" {
		l, ok := lang.ParseTag(tag)
		if !ok {
			return fmt.Errorf("unrecognized language: %s", tag)
		}
		language = string(l)
	}

	adapter := boltadapter.New()
	if err := adapter.Connect(cfg.DBURI, cfg.GraphName); err != nil {
		return err
	}
	defer adapter.Close()

	results, err := adapter.Find(pattern, kind, language, limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-28s %-10s %-8s %s:%d\n",
			truncate(r.Symbol.Name, 28), r.Symbol.Kind, r.Symbol.Language, r.Symbol.FilePath, r.Symbol.StartLine)
	}
	return nil
}
