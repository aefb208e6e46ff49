package runner

import (
	"slices"
	"strings"
)

// Merges override env vars on top of a base env slice.
//
// Entries without "=" are dropped. The result is sorted by key so command
// environments are reproducible.
func MergeEnv(base, overrides []string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	for _, entries := range [][]string{base, overrides} {
		for _, entry := range entries {
			if k, v, ok := strings.Cut(entry, "="); ok {
				merged[k] = v
			}
		}
	}

	result := make([]string, 0, len(merged))
	for k, v := range merged {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// Returns env without the entries whose key is listed in names.
func WithoutEnv(env []string, names ...string) []string {
	result := make([]string, 0, len(env))
	for _, entry := range env {
		k, _, _ := strings.Cut(entry, "=")
		if slices.Contains(names, k) {
			continue
		}
		result = append(result, entry)
	}
	return result
}
