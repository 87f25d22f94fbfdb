package version

import (
	"fmt"
	"runtime/debug"

	"github.com/fatih/color"
)

// Version information for the ember CLI and the embeddable ember.VM it
// wraps. These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = versionMajorColor.Sprint("0") + "." + versionMinorColor.Sprint("1") + "." + versionPatchColor.Sprint("0") + "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// EmbeddedVM reports the main module path and Go toolchain version
// recorded in the running binary's own embedded build metadata (for
// cmd/ember, the ember module itself). Unlike Version/GitCommit/
// BuildDate (set once, at cmd/ember's own build time, via -ldflags),
// this needs no build-time flags. ok is false when the binary carries
// no build metadata or its metadata names no main module (as in a
// `go test` binary).
func EmbeddedVM() (modulePath, goVersion string, ok bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Path == "" {
		return "", "", false
	}
	return info.Main.Path, info.GoVersion, true
}

// String renders the one-line banner `ember --version` prints: the CLI's own semantic version, plus the embedded VM's module
// path when build metadata is available (it usually is once built with
// `go build`, and may be absent under `go run`).
func String() string {
	modulePath, _, ok := EmbeddedVM()
	if !ok || modulePath == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, modulePath)
}
