// Package version reports the build identity `kampus version` and
// --version print: a SemVer string plus, when known, the commit it was
// built from.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version and Commit are injected at build time via:
//
//	go build -ldflags "
//	  -X github.com/kampus-dev/kampus/internal/version.Version=x.y.z
//	  -X github.com/kampus-dev/kampus/internal/version.Commit=$(git rev-parse HEAD)
//	"
//
// Unset, Commit falls back to the VCS revision Go's own build info
// records for `go run`/`go install` builds.
var (
	Version = "0.0.0"
	Commit  = "unknown"
)

func init() {
	if Commit != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			Commit = setting.Value
			return
		}
	}
}

// Short is the string `kampus version`/--version prints.
func Short() string {
	if len(Commit) >= 8 {
		return fmt.Sprintf("%s (%s)", Version, Commit[:8])
	}
	return Version
}
