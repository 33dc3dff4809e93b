package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kampus-dev/kampus/pkg/config"
	"github.com/kampus-dev/kampus/pkg/graph"
	"github.com/kampus-dev/kampus/pkg/graph/boltadapter"
)

// cmdQuery runs a backend-native query against the connected graph:
// `query <native-query> [--format=json|table]`. The reference adapter only
// recognizes a handful of fixed query shapes (node/edge counts, a metadata
// lookup); anything else surfaces graph.ErrUnsupportedQuery rather than
// being silently misinterpreted.
func cmdQuery(cfg config.Config, args []string) error {
	positional := positionalArgs(args)
	if len(positional) == 0 {
		return fmt.Errorf("usage: kampus query <native-query> [--format=json|table]")
	}
	nativeQuery := strings.Join(positional, " ")
	format := parseFlag(args, "--format=")
	if format == "" {
		format = "table"
	}

	adapter := boltadapter.New()
	if err := adapter.Connect(cfg.DBURI, cfg.GraphName); err != nil {
		return err
	}
	defer adapter.Close()

	rows, err := adapter.Query(nativeQuery)
	if err != nil {
		if errors.Is(err, graph.ErrUnsupportedQuery) {
			return fmt.Errorf("query not supported by this backend: %q\nsupported shapes: MATCH (n:Kind) RETURN count(n), MATCH ()-[r:TYPE]->() RETURN count(r), MATCH (m:Metadata {key: '...'}) RETURN m.value", nativeQuery)
		}
		return err
	}

	switch format {
	case "json":
		printRowsJSON(rows)
	default:
		printRowsTable(rows)
	}
	return nil
}

func printRowsJSON(rows []graph.Row) {
	fmt.Print("[")
	for i, row := range rows {
		if i > 0 {
			fmt.Print(",")
		}
		fmt.Print("[")
		for j, v := range row {
			if j > 0 {
				fmt.Print(",")
			}
			fmt.Print(valueToJSON(v))
		}
		fmt.Print("]")
	}
	fmt.Println("]")
}

func valueToJSON(v graph.Value) string {
	switch v.Kind {
	case graph.ValueString:
		return `"` + escapeJSON(v.Str) + `"`
	case graph.ValueInt:
		return fmt.Sprintf("%d", v.I64)
	case graph.ValueFloat:
		return fmt.Sprintf("%g", v.F64)
	case graph.ValueBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "null"
	}
}

func printRowsTable(rows []graph.Row) {
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = valueToString(v)
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
}

func valueToString(v graph.Value) string {
	switch v.Kind {
	case graph.ValueString:
		return v.Str
	case graph.ValueInt:
		return fmt.Sprintf("%d", v.I64)
	case graph.ValueFloat:
		return fmt.Sprintf("%g", v.F64)
	case graph.ValueBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "null"
	}
}
