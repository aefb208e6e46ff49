// Package metrics records stage timings and outcomes.
//
// The orchestrator reports through a [Recorder]. [NoopRecorder] discards
// everything and is used when no metrics file is requested.
// [PrometheusRecorder] keeps Prometheus collectors in a private registry
// that can be written to a node-exporter textfile once the run ends.
//
// Example usage:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	start := time.Now()
//	err := doStage()
//	rec.ObserveStageDuration("native", time.Since(start))
//	rec.IncStageResult("native", metrics.ResultFor(err))
//	if err := rec.WriteTextfile("build/prebuild.prom"); err != nil {
//		return err
//	}
package metrics
