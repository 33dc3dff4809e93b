// Command kampus indexes a source tree into a property graph of code
// symbols and their structural relationships, and answers queries against
// it.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kampus-dev/kampus/internal/version"
	"github.com/kampus-dev/kampus/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	rest := os.Args[2:]

	switch cmd {
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-v", "--version":
		fmt.Println(version.Short())
		return
	}

	globals, subargs := splitGlobalFlags(rest)
	cfg, err := loadConfig(globals)
	if err != nil {
		fatal("%v", err)
	}

	if err := runCommand(cmd, cfg, subargs); err != nil {
		fatal("%v", err)
	}
}

// globalOverrides is the set of flags recognized anywhere in the argument
// list after the subcommand name (the first argument is always taken as the
// subcommand), mirroring the teacher's hasFlag/parseFlag
// scan-the-whole-slice style.
type globalOverrides struct {
	dbURI, dbURISet     string
	graph, graphSet     string
	verbose, verboseSet bool
	config              string
}

func splitGlobalFlags(args []string) (globalOverrides, []string) {
	var g globalOverrides
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--db-uri="):
			g.dbURI = strings.TrimPrefix(arg, "--db-uri=")
			g.dbURISet = "1"
		case strings.HasPrefix(arg, "--graph="):
			g.graph = strings.TrimPrefix(arg, "--graph=")
			g.graphSet = "1"
		case arg == "--verbose":
			g.verbose = true
			g.verboseSet = true
		case strings.HasPrefix(arg, "--config="):
			g.config = strings.TrimPrefix(arg, "--config=")
		default:
			rest = append(rest, arg)
		}
	}
	return g, rest
}

func loadConfig(g globalOverrides) (config.Config, error) {
	configFile := g.config
	if configFile == "" {
		configFile = defaultConfigPath(findProjectRoot())
	}
	return config.Load(configFile, config.Overrides{
		DBURI:      g.dbURI,
		DBURISet:   g.dbURISet != "",
		GraphName:  g.graph,
		GraphSet:   g.graphSet != "",
		Verbose:    g.verbose,
		VerboseSet: g.verboseSet,
	})
}

func runCommand(cmd string, cfg config.Config, args []string) error {
	switch cmd {
	case "index":
		return cmdIndex(cfg, args)
	case "update":
		return cmdUpdate(cfg, args)
	case "query":
		return cmdQuery(cfg, args)
	case "find":
		return cmdFind(cfg, args)
	case "calls":
		return cmdCalls(cfg, args)
	case "status":
		return cmdStatus(cfg, args)
	case "watch":
		return cmdWatch(cfg, args)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	fmt.Printf(`kampus %s - index a source tree into a queryable code property graph

Usage:
  kampus <command> [arguments]

Commands:
  index [path]              Full index of a directory (default: current directory)
  update [path]              Incrementally re-index using the VCS diff since the last run
  query <native-query>       Run a backend-native query
  find <pattern>              Fuzzy symbol search by name/signature/doc
  calls <function>            Show the call graph for a function
  status                      Show index statistics
  watch [paths...]            Watch paths and keep the index current between runs
  version                     Show version information

Global flags:
  --db-uri=URI     Graph storage location (default: ./kampus-data)
  --graph=NAME      Graph name (default: kampus)
  --verbose          Sets the verbose config value (log output is unchanged)
  --config=PATH      Config file (default: <project root>/kampus.json)

Environment:
  KAMPUS_DB_URI     Default for --db-uri
  KAMPUS_GRAPH       Default for --graph
  KAMPUS_VERBOSE     Default for --verbose

Examples:
  kampus index src/
  kampus update --since=HEAD~5 --dry-run
  kampus find "getUser" --kind=function
  kampus calls handleRequest --direction=callers --depth=2
  kampus status --files
`, version.Short())
}
