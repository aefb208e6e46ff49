package metrics

import (
	"context"
	"errors"
	"time"
)

// Stage result label.
type Result string

const (
	ResultSuccess  Result = "success"
	ResultFailed   Result = "failed"
	ResultCanceled Result = "canceled"
)

// Observability hooks for a build run.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result Result)
	ObserveBuildDuration(d time.Duration)
}

// A [Recorder] that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, Result) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}

// Returns the result label for a stage that returned err.
func ResultFor(err error) Result {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	default:
		return ResultFailed
	}
}
