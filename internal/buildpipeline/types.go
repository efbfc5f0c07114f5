package buildpipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageParse decodes and validates the manifest.
	StageParse Stage = "parse"
	// StageGenerate renders one stub and one declaration per function.
	StageGenerate Stage = "generate"
	// StageTree nests declarations and renders the Kotlin file.
	StageTree Stage = "tree"
	// StageScaffold creates the cargo crate and its dependencies.
	StageScaffold Stage = "scaffold"
	// StageWrite writes the generated sources.
	StageWrite Stage = "write"
	// StageFormat runs clippy --fix and rustfmt.
	StageFormat Stage = "format"
)

// Stages lists every stage in execution order.
func Stages() []Stage {
	return []Stage{StageParse, StageGenerate, StageTree, StageScaffold, StageWrite, StageFormat}
}

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusSkipped marks a stage that had nothing to do (cache hit, emit-only).
	StatusSkipped Status = "skipped"
	// StatusWarning marks a stage that failed without failing the run.
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Event reports progress for one function, or for the whole run when
// Function is empty.
type Event struct {
	Function string
	Stage    Stage
	Status   Status
	Err      error
	Elapsed  time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}

// Merge copies every duration recorded in other.
func (t *Timings) Merge(other Timings) {
	for stage, dur := range other.stages {
		t.Set(stage, dur)
	}
}
