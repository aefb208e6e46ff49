// Package build runs the prebuild stages in order.
//
// A run is a fixed pipeline of four stages:
//
//	resolve  determine the host platform variant and the target triple
//	sidecar  build the sidecar binary or write its placeholder
//	native   configure and build the native libraries
//	stage    copy native artifacts into the distribution layout
//
// Callers select a subset through [Options.Stages]; stages always run in
// pipeline order, and the stages a selection depends on are added to it
// (resolve for everything, native for stage). Execution is strictly
// sequential. The first failure aborts the run and is returned wrapped with
// [ErrBuild] and the stage name, so the stager never sees the output of a
// failed native build. A missing target triple only fails the run when the
// sidecar stage is selected; the native and stage stages need just the host
// variant.
//
// Each stage is logged when it starts and finishes and is timed through a
// [metrics.Recorder].
//
// Example usage:
//
//	result, err := build.Run(ctx, build.Options{
//	    Config:   cfg,
//	    Env:      env,
//	    Runner:   runner.Exec{},
//	    Recorder: metrics.NoopRecorder{},
//	    Stages:   build.NativeStages,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Report.Dist)
package build
