// Package buildenv captures the process environment once, at startup.
//
// An [Environment] is an immutable snapshot of the host platform, the working
// directory and every environment variable visible to the orchestrator.
// Variables may be supplemented by dotenv files; values already present in the
// process environment take precedence over file values. Components read
// toggles and inputs from the snapshot instead of calling os.Getenv, so a run
// is reproducible from the snapshot alone and tests can construct one without
// touching the real process environment.
//
// Example usage:
//
//	env, err := buildenv.Capture(buildenv.Options{EnvFiles: []string{".env"}})
//	if err != nil {
//	    return err
//	}
//	if env.IsTrue("SKIP_SIDECAR_BUILD") {
//	    // write a placeholder
//	}
package buildenv
