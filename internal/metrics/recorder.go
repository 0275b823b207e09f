// Package metrics records build telemetry behind a small interface so
// the batch CLI can stay metrics-free while the preview server exposes
// Prometheus.
package metrics

import "time"

// Recorder receives build telemetry.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome Outcome)
	IncRebuild(reason RebuildReason)
}

// Outcome labels a finished build.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// RebuildReason labels what triggered a preview rebuild.
type RebuildReason string

const (
	RebuildFileChange RebuildReason = "file_change"
	RebuildScheduled  RebuildReason = "scheduled"
)

// Nop is a Recorder that discards everything.
type Nop struct{}

func (Nop) ObserveStageDuration(string, time.Duration) {}
func (Nop) ObserveBuildDuration(time.Duration)         {}
func (Nop) IncBuildOutcome(Outcome)                    {}
func (Nop) IncRebuild(RebuildReason)                   {}
