// Package buildinfo contains application metadata that can be set at build time.
//
// For release builds, use ldflags to set the version:
//
//	go build -ldflags "\
//	  -X github.com/nedpals/mfulc/buildinfo.Version=1.0.0 \
//	  -X github.com/nedpals/mfulc/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/nedpals/mfulc/buildinfo.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Application metadata - can be overridden at build time via ldflags
var (
	// Name is the technical application name
	Name = "mfulc"

	// DisplayName is the user-friendly name (used for the banner and mDNS)
	DisplayName = "mfulc - MiFare Ultralight/C Tool"

	// Description is a short description of the application
	Description = "Read, write and inspect MIFARE Ultralight and Ultralight C tags"

	// Version is the semantic version (set via ldflags for releases)
	Version = "dev"

	// Commit is the git commit hash (set via ldflags)
	Commit = ""

	// BuildTime is the build timestamp (set via ldflags)
	BuildTime = ""
)

// FullVersion returns the version string with optional commit info.
// Examples:
//   - "dev" (development build)
//   - "1.0.0 (abc1234)" (release build with commit)
func FullVersion() string {
	if Commit != "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return Version
}

// BuildInfo returns the text printed by --version. Builds without ldflags
// fall back to the VCS revision stamped by the Go toolchain, if any.
func BuildInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Name, FullVersion())
	fmt.Fprintf(&b, "  %s\n", Description)
	fmt.Fprintf(&b, "  Go %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if Commit == "" {
		if rev, dirty := vcsRevision(); rev != "" {
			fmt.Fprintf(&b, "\n  Source: %s", rev)
			if dirty {
				b.WriteString(" (modified)")
			}
		}
	}
	if BuildTime != "" {
		fmt.Fprintf(&b, "\n  Built: %s", BuildTime)
	}
	return b.String()
}

func vcsRevision() (rev string, dirty bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	return rev, dirty
}
