// Parses flags and runs the prebuild commands.
//
// The CLI accepts the following global flags:
//
//	-q, --quiet         Suppress informational output.
//	-v, --verbose       Enable verbose output.
//	-d, --debug         Enable debug output.
//	-c, --config        Project configuration file.
//	-C, --root          Project root directory.
//	    --env-file      Dotenv file overlaid by the process environment.
//	    --metrics-file  Prometheus textfile written after the run.
//
// And the following commands:
//
//	run      Resolve, provision the sidecar, build and stage native libraries.
//	sidecar  Resolve and provision the sidecar only.
//	native   Resolve, build and stage native libraries.
//	triple   Print the resolved target triple.
//	version  Show version information.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity, and
// records buffered during startup are written.
package cli
