package buildenv

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/containerd/platforms"
	"github.com/joho/godotenv"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/wavecast/prebuild/internal/paths"
)

// Literal value that enables a boolean toggle.
const trueValue = "true"

// Controls how the snapshot is taken.
type Options struct {
	Workdir  string          // Working directory. Empty uses os.Getwd.
	EnvFiles []string        // Dotenv files, resolved against Workdir. Missing files are skipped.
	Environ  []string        // Process environment as "key=value". Nil uses os.Environ.
	Host     *specs.Platform // Host platform. Nil uses the running platform.
}

// Immutable snapshot of the build environment.
type Environment struct {
	host    specs.Platform    // Normalized host platform.
	workdir string            // Absolute working directory at capture time.
	vars    map[string]string // Environment variables.
}

// Takes a snapshot of the environment.
//
// Dotenv files are read in order, later files overriding earlier ones, and the
// process environment is applied last so that it always wins.
func Capture(opts Options) (*Environment, error) {
	workdir := opts.Workdir
	if workdir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEnvironment, err)
		}
		workdir = wd
	}
	workdir, err := filepath.Abs(workdir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvironment, err)
	}

	vars := make(map[string]string)
	for _, name := range opts.EnvFiles {
		fileVars, err := readEnvFile(paths.Resolve(workdir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEnvironment, err)
		}
		maps.Copy(vars, fileVars)
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	for _, entry := range environ {
		if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
			vars[k] = v
		}
	}

	host := platforms.DefaultSpec()
	if opts.Host != nil {
		host = *opts.Host
	}

	return New(host, workdir, vars), nil
}

// Creates a snapshot from explicit values.
//
// The host platform is normalized and vars is copied.
func New(host specs.Platform, workdir string, vars map[string]string) *Environment {
	return &Environment{
		host:    platforms.Normalize(host),
		workdir: workdir,
		vars:    maps.Clone(vars),
	}
}

// Reads a single dotenv file.
//
// A missing file yields no variables.
func readEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("env file not found", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	slog.Debug("loaded env file", "path", path, "vars", len(vars))
	return vars, nil
}

// Returns the normalized host platform.
func (e *Environment) Host() specs.Platform {
	return e.host
}

// Returns the absolute working directory at capture time.
func (e *Environment) Workdir() string {
	return e.workdir
}

// Returns the value of the named variable and whether it is set.
func (e *Environment) Lookup(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Returns the trimmed value of the named variable, or "" if unset.
func (e *Environment) Get(name string) string {
	return strings.TrimSpace(e.vars[name])
}

// Reports whether the named variable is set to the literal "true".
func (e *Environment) IsTrue(name string) bool {
	return e.Get(name) == trueValue
}

// Returns the variables as sorted "key=value" entries, suitable for a child
// process environment.
func (e *Environment) Environ() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	env := make([]string, 0, len(e.vars))
	for _, k := range keys {
		env = append(env, k+"="+e.vars[k])
	}
	return env
}
