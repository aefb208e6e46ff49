package platform

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/containerd/platforms"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/wavecast/prebuild/internal/buildenv"
	"github.com/wavecast/prebuild/internal/project"
	"github.com/wavecast/prebuild/internal/runner"
)

// Source of a resolved triple.
type Tier string

const (
	TierExplicit Tier = "explicit" // Explicit triple variable.
	TierTable    Tier = "table"    // Known (os, arch) pair.
	TierCompiler Tier = "compiler" // Compiler introspection.
)

// Line prefix in the compiler's verbose version output.
const hostPrefix = "host:"

// Built-in (os, arch) to triple mappings. Keys use normalized names.
var knownTriples = []project.TripleEntry{
	{OS: "linux", Arch: "amd64", Triple: "x86_64-unknown-linux-gnu"},
	{OS: "linux", Arch: "arm64", Triple: "aarch64-unknown-linux-gnu"},
	{OS: "linux", Arch: "386", Triple: "i686-unknown-linux-gnu"},
	{OS: "darwin", Arch: "amd64", Triple: "x86_64-apple-darwin"},
	{OS: "darwin", Arch: "arm64", Triple: "aarch64-apple-darwin"},
	{OS: "windows", Arch: "amd64", Triple: "x86_64-pc-windows-msvc"},
	{OS: "windows", Arch: "arm64", Triple: "aarch64-pc-windows-msvc"},
	{OS: "windows", Arch: "386", Triple: "i686-pc-windows-msvc"},
}

// Resolved build target.
type Target struct {
	Triple string  // Target triple.
	Tier   Tier    // Tier that produced the triple.
	Host   Variant // Host platform variant.
}

// Returns the sidecar file name for this target: "<prefix>-<triple>" plus the
// target's executable suffix.
func (t Target) SidecarName(prefix string) string {
	return prefix + "-" + t.Triple + ExeSuffix(t.Triple)
}

// Returns ".exe" for Windows triples and "" otherwise.
func ExeSuffix(triple string) string {
	if strings.Contains(triple, "-windows") {
		return ".exe"
	}
	return ""
}

// Resolves the target triple from the environment.
type Resolver struct {
	config project.Triple
	runner runner.Runner
	table  map[string]string
}

// Creates a [Resolver].
//
// Table entries from cfg are added to the built-in table and replace built-in
// entries for the same pair.
func NewResolver(cfg project.Triple, r runner.Runner) *Resolver {
	table := make(map[string]string, len(knownTriples)+len(cfg.Table))
	for _, entries := range [][]project.TripleEntry{knownTriples, cfg.Table} {
		for _, e := range entries {
			table[pairKey(e.OS, e.Arch)] = e.Triple
		}
	}
	return &Resolver{config: cfg, runner: r, table: table}
}

// Resolves the build target for env.
//
// The host variant always comes from the snapshot's host platform. The
// triple comes from the first tier that yields a non-empty value.
func (r *Resolver) Resolve(ctx context.Context, env *buildenv.Environment) (Target, error) {
	host := VariantFor(env.Host().OS)

	if triple := env.Get(r.config.Env); triple != "" {
		return r.resolved(triple, TierExplicit, host), nil
	}

	if triple := r.fromTable(env); triple != "" {
		return r.resolved(triple, TierTable, host), nil
	}

	if triple := r.fromCompiler(ctx, env); triple != "" {
		return r.resolved(triple, TierCompiler, host), nil
	}

	return Target{}, fmt.Errorf("%w: no target triple from %s, %s/%s or %q",
		ErrResolution, r.config.Env, r.config.OSEnv, r.config.ArchEnv, strings.Join(r.config.Compiler, " "))
}

func (r *Resolver) resolved(triple string, tier Tier, host Variant) Target {
	slog.Debug("resolved target triple", "triple", triple, "tier", tier, "host", host.OS)
	return Target{Triple: triple, Tier: tier, Host: host}
}

// Looks up the target OS and architecture variables in the table.
//
// Both variables must be set.
func (r *Resolver) fromTable(env *buildenv.Environment) string {
	os, arch := env.Get(r.config.OSEnv), env.Get(r.config.ArchEnv)
	if os == "" || arch == "" {
		return ""
	}

	triple, ok := r.table[pairKey(os, arch)]
	if !ok {
		slog.Debug("no known triple for target", "os", os, "arch", arch)
	}
	return triple
}

// Runs the compiler's introspection command and parses its host triple.
//
// Any failure yields "", leaving the caller to report resolution failure.
func (r *Resolver) fromCompiler(ctx context.Context, env *buildenv.Environment) string {
	if len(r.config.Compiler) == 0 {
		return ""
	}

	out, err := r.runner.Output(ctx, runner.Command{
		Name:   r.config.Compiler[0],
		Args:   r.config.Compiler[1:],
		Dir:    env.Workdir(),
		Env:    env.Environ(),
		Stderr: io.Discard,
	})
	if err != nil {
		slog.Debug("compiler introspection failed", "error", err)
		return ""
	}

	return ParseHostTriple(out)
}

// Returns the triple from the first "host: <triple>" line in out, or "".
func ParseHostTriple(out []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(line, hostPrefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// Returns the table key for an (os, arch) pair after normalization, so that
// "macos"/"aarch64" and "darwin"/"arm64" share an entry.
func pairKey(os, arch string) string {
	p := platforms.Normalize(specs.Platform{OS: os, Architecture: arch})
	return p.OS + "/" + p.Architecture
}
