// Package config resolves kampus's runtime configuration by layering
// built-in defaults, an optional JSON config file, KAMPUS_-prefixed
// environment variables, and explicit CLI flags, in that order of
// increasing precedence.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the resolved set of global options every CLI command reads.
type Config struct {
	DBURI     string
	GraphName string
	Verbose   bool
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"db_uri":  "./kampus-data",
		"graph":   "kampus",
		"verbose": false,
	}
}

// Overrides carries the flag values a CLI invocation parsed. A field is
// applied over the file/environment layers only when its "set" companion
// is true, so an unset flag never clobbers a value from a lower layer.
type Overrides struct {
	DBURI      string
	DBURISet   bool
	GraphName  string
	GraphSet   bool
	Verbose    bool
	VerboseSet bool
}

// Load layers defaults -> configFile (if non-empty and present) ->
// KAMPUS_-prefixed environment variables -> flag overrides, and returns
// the resolved Config. A missing configFile is not an error; a malformed
// one is.
func Load(configFile string, overrides Overrides) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, err
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := k.Load(file.Provider(configFile), json.Parser()); err != nil {
				return Config{}, err
			}
		}
	}

	if err := k.Load(env.Provider(env.Opt{
		Prefix: "KAMPUS_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "KAMPUS_"))
			return key, value
		},
	}), nil); err != nil {
		return Config{}, err
	}

	flagLayer := map[string]interface{}{}
	if overrides.DBURISet {
		flagLayer["db_uri"] = overrides.DBURI
	}
	if overrides.GraphSet {
		flagLayer["graph"] = overrides.GraphName
	}
	if overrides.VerboseSet {
		flagLayer["verbose"] = overrides.Verbose
	}
	if len(flagLayer) > 0 {
		if err := k.Load(confmap.Provider(flagLayer, "."), nil); err != nil {
			return Config{}, err
		}
	}

	return Config{
		DBURI:     k.String("db_uri"),
		GraphName: k.String("graph"),
		Verbose:   k.Bool("verbose"),
	}, nil
}
