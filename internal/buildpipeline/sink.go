package buildpipeline

import "time"

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

func emitQueued(sink ProgressSink, functions []string) {
	if sink == nil {
		return
	}
	for _, fn := range functions {
		sink.OnEvent(Event{Function: fn, Stage: StageGenerate, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func emitFunction(sink ProgressSink, fn string, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Function: fn, Stage: StageGenerate, Status: status, Err: err, Elapsed: elapsed})
}
