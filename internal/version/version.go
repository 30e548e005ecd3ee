// Package version carries build-time version metadata.
package version

import "fmt"

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/pressgen/internal/version.Version=v1.2.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the full version line.
func String() string {
	return fmt.Sprintf("pressgen %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
