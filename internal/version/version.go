// Package version holds the version string for the bbinfo CLI.
package version

import (
	"fmt"
	"strings"
)

// Version is the current version of the CLI. It is overridden at build time
// with ldflags for release builds.
var Version = "dev"

// Format returns the version string suitable for display.
func Format(ver string) string {
	ver = strings.TrimPrefix(ver, "v")
	return fmt.Sprintf("bbinfo version %s", ver)
}
