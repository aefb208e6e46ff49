package internal

import (
	"fmt"
	"runtime"
	"strings"
)

const (

	// Name of the binary, used for the logger group and the CLI.
	Name = "prebuild"

	// String to indicate an undefined variable
	defaultUndefined = "(undefined)"

	// String to indicate a build made outside the release pipeline
	defaultLocalBuild = "(local)"
)

var (
	version   = "" // Release version (e.g., "0.4.0")
	gitCommit = "" // Git commit hash (e.g., "a1b2c3d4")

	rawQuiet   = "false" // Whether to enable quiet mode
	rawDebug   = "false" // Whether to enable debug mode
	rawVerbose = "false" // Whether to enable verbose logging
)

// Returns the release version without a leading "v".
//
// Returns "(undefined)" when the version was not injected at link time.
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return defaultUndefined
	}
	return strings.TrimPrefix(v, "v")
}

// Returns the git commit hash, or "(undefined)".
func GitCommit() string {
	c := strings.TrimSpace(gitCommit)
	if c == "" {
		return defaultUndefined
	}
	return c
}

// Returns true if either the version or the commit was left unset.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" || strings.TrimSpace(gitCommit) == ""
}

// Returns a one-line description of this binary.
//
// Local builds report "(local)". Pipeline builds report
// "<version> <git-commit> [<os>/<arch>]".
func VersionString() string {
	if IsLocal() {
		return defaultLocalBuild
	}
	return fmt.Sprintf("%s %s [%s/%s]", Version(), GitCommit(), runtime.GOOS, runtime.GOARCH)
}
