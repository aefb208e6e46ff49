// Package platform resolves the host platform variant and the target triple.
//
// Platform-specific behavior is captured by a small closed set of [Variant]
// values keyed by operating system: the shell used to run build scripts, the
// dynamic-library extension, and path conventions. Unknown systems fall back
// to a generic POSIX variant, so supporting a new platform means adding one
// table entry.
//
// The target triple is resolved in three tiers, first non-empty wins:
//
//  1. an explicit triple variable
//  2. target OS and architecture variables, looked up in a table of known pairs
//  3. the compiler's introspection output ("host: <triple>")
//
// If no tier yields a triple, [Resolver.Resolve] fails with [ErrResolution].
package platform
