package internal

import (
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool // Only warnings and errors are logged.
	debugMode   atomic.Bool // Debug records are logged.
	verboseMode atomic.Bool // Record attributes are shown in terminal output.
)

// Seeds the log modes from link-time flags.
//
// rawQuiet, rawDebug and rawVerbose are set with -ldflags -X. Values that do
// not parse as booleans leave the mode disabled.
func init() {
	for _, m := range []struct {
		raw  string
		mode *atomic.Bool
	}{
		{rawQuiet, &quietMode},
		{rawDebug, &debugMode},
		{rawVerbose, &verboseMode},
	} {
		if v, err := strconv.ParseBool(m.raw); err == nil {
			m.mode.Store(v)
		}
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) { quietMode.Store(enabled) }

// Returns true if quiet mode is enabled.
func IsQuiet() bool { return quietMode.Load() }

// Enables or disables debug mode.
func SetDebug(enabled bool) { debugMode.Store(enabled) }

// Returns true if debug mode is enabled.
func IsDebug() bool { return debugMode.Load() }

// Enables or disables verbose output.
func SetVerbose(enabled bool) { verboseMode.Store(enabled) }

// Returns true if verbose output is enabled.
func IsVerbose() bool { return verboseMode.Load() }
