package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for the user configuration subdirectory.
	appName = "prebuild"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644

	// Permission mode for placeholder executables.
	ExecutableFileMode os.FileMode = 0755
)

const (
	BuildDir      = "build"             // Root of all build outputs.
	BinDir        = "build/bin"         // Sidecar executables.
	NativeDir     = "build/native"      // Native build system output root.
	StagingReport = "build/staged.yaml" // Digest report of staged files.
	DistDir       = "dist"              // Distribution root.
	ResourcesDir  = "dist/resources"    // Headers, libraries and package metadata.
	ProjectConfig = "prebuild.yaml"     // Per-project configuration file.

	userConfigRel = appName + "/config.yaml"
)

// Path of the user-level configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/prebuild/config.yaml
//	macOS:   ~/Library/Application Support/prebuild/config.yaml
//	Windows: %LOCALAPPDATA%\prebuild\config.yaml
func UserConfig() string {
	return filepath.Join(xdg.ConfigHome, userConfigRel)
}

// Searches the XDG config directories for an existing user configuration file.
//
// Returns an empty string if none exists.
func FindUserConfig() string {
	path, err := xdg.SearchConfigFile(userConfigRel)
	if err != nil {
		return ""
	}
	return path
}

// Resolves p against root unless it is already absolute.
func Resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
