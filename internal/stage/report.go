package stage

import (
	_ "crypto/sha256"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"github.com/wavecast/prebuild/internal/paths"
	"gopkg.in/yaml.v3"
)

// A staged file.
type Entry struct {
	Path   string        `yaml:"path"`             // Slash-separated, relative to the dist root.
	Size   int64         `yaml:"size"`             // Size in bytes; zero for links.
	Digest digest.Digest `yaml:"digest,omitempty"` // Content digest; empty for links.
	Link   string        `yaml:"link,omitempty"`   // Link target, for symbolic links.
}

// Summary of a staging run.
type Report struct {
	Dist      string   `yaml:"dist"`      // Absolute dist root.
	Resources string   `yaml:"resources"` // Absolute resources directory; the rewritten metadata prefix.
	Binaries  []Entry  `yaml:"binaries"`
	Headers   []Entry  `yaml:"headers"`
	Libraries []Entry  `yaml:"libraries"`
	Metadata  []string `yaml:"metadata"` // Rewritten metadata files, relative to the dist root.
}

// Builds the report from the staged destination paths.
//
// Digests are taken after metadata rewriting, so they match the packaged
// content.
func newReport(layout *Layout, binaries, headers, libraries, metadata []string) (*Report, error) {
	r := &Report{Dist: layout.Dist, Resources: layout.Resources}

	var err error
	if r.Binaries, err = entries(layout.Dist, binaries); err != nil {
		return nil, err
	}
	if r.Headers, err = entries(layout.Dist, headers); err != nil {
		return nil, err
	}
	if r.Libraries, err = entries(layout.Dist, libraries); err != nil {
		return nil, err
	}

	for _, p := range metadata {
		rel, err := relSlash(layout.Dist, p)
		if err != nil {
			return nil, err
		}
		r.Metadata = append(r.Metadata, rel)
	}

	return r, nil
}

func entries(dist string, files []string) ([]Entry, error) {
	result := make([]Entry, 0, len(files))
	for _, f := range files {
		e, err := entry(dist, f)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

func entry(dist, path string) (Entry, error) {
	rel, err := relSlash(dist, path)
	if err != nil {
		return Entry{}, err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return Entry{}, err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		link, err := os.Readlink(path)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Path: rel, Link: filepath.ToSlash(link)}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()

	d, err := digest.Canonical.FromReader(f)
	if err != nil {
		return Entry{}, err
	}

	return Entry{Path: rel, Size: info.Size(), Digest: d}, nil
}

func relSlash(base, path string) (string, error) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Writes the report as YAML, creating parent directories.
func (r *Report) Write(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(path, data, paths.DefaultFileMode)
}

// Reads a report written by [Report.Write].
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
