// Provides the slog handler used by the prebuild CLI.
//
// A [Handler] starts out buffering: records logged before the command line is
// parsed are held in memory. Once flags are known, the caller sets the level,
// output format and stream, then calls [Handler.Flush] to write the held
// records and switch to direct output. Records that fall below the final
// level are dropped at flush time.
//
// Two formats are supported. Pretty output is meant for terminals and prints
// one colored, arrow-prefixed line per record, with attributes shown only in
// verbose mode or for warnings and errors. Plain output delegates to
// [slog.TextHandler] and is used when stderr is redirected.
//
// Example usage:
//
//	h := logging.NewHandler()
//	slog.SetDefault(slog.New(h))
//
//	// ... parse flags ...
//
//	h.SetLevel(slog.LevelDebug)
//	h.SetPretty(logging.IsTerminal(os.Stderr))
//	h.SetVerbose(true)
//	h.SetStream(os.Stderr)
//	h.Flush()
package logging
