package main

import (
	"fmt"
	"io"
	"time"

	"jnigen/internal/buildpipeline"
)

var stageVerbs = map[buildpipeline.Stage]string{
	buildpipeline.StageParse:    "parsed",
	buildpipeline.StageGenerate: "generated",
	buildpipeline.StageTree:     "nested",
	buildpipeline.StageScaffold: "scaffolded",
	buildpipeline.StageWrite:    "wrote",
	buildpipeline.StageFormat:   "formatted",
}

func printStageTimings(out io.Writer, timings buildpipeline.Timings) error {
	if out == nil {
		return nil
	}
	var total time.Duration
	for _, stage := range buildpipeline.Stages() {
		if !timings.Has(stage) {
			continue
		}
		d := timings.Duration(stage)
		total += d
		if _, err := fmt.Fprintf(out, "%-10s %8.1f ms\n", stageVerbs[stage], toMillis(d)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "%-10s %8.1f ms\n", "total", toMillis(total))
	return err
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
