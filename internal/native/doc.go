// Package native drives the two-phase build of the auxiliary native libraries.
//
// Phase 1 configures the project: the build system CLI is run with the output
// root as working directory and the configuration script location as target.
// Phase 2 builds the generated project in place. Both phases must exit with
// status zero; any failure aborts before artifacts can be staged.
//
// The output root is created if missing and otherwise left alone, since the
// build system caches its state there between runs. The process working
// directory is switched to the output root for both phases and restored
// afterwards, including when a phase fails.
//
// Some host platforms need variables removed from the build environment. The
// default configuration drops MACOSX_DEPLOYMENT_TARGET on Apple silicon hosts,
// where an inherited deployment target conflicts with the local SDK. Only the
// child environment is affected.
//
// Example usage:
//
//	out, err := native.New(cfg, runner.Exec{}).Build(ctx, env)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(out.LibDir)
package native
