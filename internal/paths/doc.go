// Provides the fixed on-disk layout used by the build orchestrator.
//
// Every path is relative to the project root: build outputs live under
// "build/" (the sidecar under "build/bin", the native build tree under
// "build/native") and staged artifacts under "dist/" with headers, libraries
// and package metadata in "dist/resources". The user-level configuration file
// follows XDG conventions on Linux and platform-native conventions elsewhere.
//
// [WithWorkdir] scopes a change of the process working directory to a single
// function call and always restores the original directory.
package paths
