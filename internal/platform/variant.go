package platform

import (
	"fmt"
	"strings"

	"github.com/wavecast/prebuild/internal/project"
	"github.com/wavecast/prebuild/internal/runner"
)

// Shell family of a platform.
type Family string

const (
	FamilyWindows Family = "windows" // Scripts run in an MSYS-style login shell.
	FamilyPosix   Family = "posix"   // Scripts run directly through sh.
)

// Platform-specific conventions for a host operating system.
type Variant struct {
	OS       string // Normalized OS name; empty for the generic fallback.
	Family   Family // Shell family.
	DylibExt string // Dynamic-library file extension, including the dot.
}

// Known host variants, keyed by normalized OS name.
var variants = map[string]Variant{
	"windows": {OS: "windows", Family: FamilyWindows, DylibExt: ".dll"},
	"darwin":  {OS: "darwin", Family: FamilyPosix, DylibExt: ".dylib"},
	"linux":   {OS: "linux", Family: FamilyPosix, DylibExt: ".so"},
}

// Used for any OS not listed in variants.
var genericPosix = Variant{Family: FamilyPosix, DylibExt: ".so"}

// Returns the variant for a normalized OS name.
func VariantFor(os string) Variant {
	if v, ok := variants[os]; ok {
		return v
	}
	return genericPosix
}

// Returns the command that runs a build script on this platform.
//
// On Windows the script runs in a login shell, which starts in the user's home
// directory, so the command first changes to workdir, rewritten with forward
// slashes for the shell's path conventions. Elsewhere the script is passed to
// the POSIX shell with workdir as the process working directory. workdir must
// be absolute.
func (v Variant) ScriptCommand(shell project.Shell, workdir, script string) runner.Command {
	if v.Family == FamilyWindows {
		return runner.Command{
			Name: shell.Windows,
			Args: []string{"-lc", fmt.Sprintf("cd %s && %s", shellQuote(slashPath(workdir)), script)},
			Dir:  workdir,
		}
	}

	return runner.Command{
		Name: shell.Posix,
		Args: []string{script},
		Dir:  workdir,
	}
}

// Replaces backslashes with forward slashes.
func slashPath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Quotes s for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
