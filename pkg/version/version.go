// Package version provides build and version information for CorpusDB.
package version

import (
	"fmt"
	"runtime"
)

// Version is the current version of CorpusDB.
// Set via ldflags at build time, or defaults to dev:
// -X github.com/corpusdb/corpusdb/pkg/version.Version=$(VERSION)
var Version = "dev"

// Build information set via ldflags at build time.
var (
	// Commit is the git commit hash.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"

	// GoVersion is the Go version used to build the binary (set at runtime).
	GoVersion = runtime.Version()
)

// String returns a formatted version string with all build info.
func String() string {
	return fmt.Sprintf("corpusdb %s (commit: %s, built: %s, go: %s, platform: %s/%s)",
		Version, Commit, Date, GoVersion, runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version string.
func Short() string {
	return Version
}
