// Package metrics records build metrics behind a Recorder interface.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never requires nil checks. Serve mode
// swaps in the Prometheus implementation and exposes it over /metrics.
package metrics

import "time"

// Recorder defines all metrics operations emitted by the build pipeline.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage, result string)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string)
	SetDocumentsLoaded(n int)
	SetPagesWritten(n int)
	IncPermalinkWarnings(n int)
}

// NoopRecorder is the default Recorder; every method does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, string)              {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) SetDocumentsLoaded(int)                     {}
func (NoopRecorder) SetPagesWritten(int)                        {}
func (NoopRecorder) IncPermalinkWarnings(int)                   {}
