// Package stage assembles the distribution layout from a native build tree.
//
// Staging copies three artifact classes out of a completed [native.Output]:
//
//   - dynamic libraries from the output's bin directory, into the dist root
//   - the include tree, into "<dist>/resources/include"
//   - the lib tree, into "<dist>/resources/lib"
//
// Tree copies merge into the destination: files with matching relative paths
// are overwritten, and files that exist only at the destination are kept.
// Symbolic links inside the trees are recreated rather than followed.
//
// Package-metadata files (pkg-config ".pc" files by default) embed the
// absolute installation prefix on their first line. Once the lib tree has
// been copied, that line is rewritten to the absolute resources directory so
// tools reading the metadata resolve headers and libraries at the new
// location. Every following byte is left untouched.
//
// Each staged file is recorded in a [Report] with its size and content
// digest, written as YAML so release pipelines can archive and verify what
// was packaged.
package stage
