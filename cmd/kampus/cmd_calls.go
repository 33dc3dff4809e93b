package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kampus-dev/kampus/pkg/config"
	"github.com/kampus-dev/kampus/pkg/graph/boltadapter"
)

// cmdCalls shows the call graph reached from a function: `calls <function>
// [--direction=callers|callees|both] [--depth=D]`. Output is ordered by
// distance then name, indented proportional to distance, matching the
// original implementation's table.
func cmdCalls(cfg config.Config, args []string) error {
	positional := positionalArgs(args)
	if len(positional) == 0 {
		return fmt.Errorf("usage: kampus calls <function> [--direction=callers|callees|both] [--depth=D]")
	}
	name := positional[0]
	depth := parseIntFlag(args, "--depth=", 3)
	direction := parseFlag(args, "--direction=")
	if direction == "" {
		direction = "callees"
	}

	adapter := boltadapter.New()
	if err := adapter.Connect(cfg.DBURI, cfg.GraphName); err != nil {
		return err
	}
	defer adapter.Close()

	switch direction {
	case "callees":
		edges, err := adapter.Callees(name, depth)
		if err != nil {
			return err
		}
		printCallEdges(fmt.Sprintf("functions called by %s", name), edges)
	case "callers":
		edges, err := adapter.Callers(name, depth)
		if err != nil {
			return err
		}
		printCallEdges(fmt.Sprintf("functions calling %s", name), edges)
	case "both":
		callees, err := adapter.Callees(name, depth)
		if err != nil {
			return err
		}
		callers, err := adapter.Callers(name, depth)
		if err != nil {
			return err
		}
		printCallEdges(fmt.Sprintf("functions called by %s", name), callees)
		printCallEdges(fmt.Sprintf("functions calling %s", name), callers)
	default:
		return fmt.Errorf("unknown --direction: %s (want callers, callees, or both)", direction)
	}
	return nil
}

func printCallEdges(heading string, edges []boltadapter.CallEdge) {
	fmt.Println(heading + ":")
	if len(edges) == 0 {
		fmt.Println("  (none)")
		return
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Distance != edges[j].Distance {
			return edges[i].Distance < edges[j].Distance
		}
		return edges[i].Symbol.Name < edges[j].Symbol.Name
	})
	for _, e := range edges {
		indent := strings.Repeat("  ", e.Distance)
		fmt.Printf("%s%s (%s:%d)\n", indent, e.Symbol.Name, e.Symbol.FilePath, e.Symbol.StartLine)
	}
}
