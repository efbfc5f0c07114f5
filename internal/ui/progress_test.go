package ui

import (
	"errors"
	"strings"
	"testing"

	"jnigen/internal/buildpipeline"
)

func newModel() *progressModel {
	return NewProgressModel("generate lib", make(chan buildpipeline.Event)).(*progressModel)
}

func TestApplyEventTracksFunctions(t *testing.T) {
	m := newModel()
	for _, fn := range []string{"math::add", "math::sub"} {
		m.applyEvent(buildpipeline.Event{Function: fn, Stage: buildpipeline.StageGenerate, Status: buildpipeline.StatusQueued})
	}
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageGenerate, Status: buildpipeline.StatusWorking})
	m.applyEvent(buildpipeline.Event{Function: "math::add", Stage: buildpipeline.StageGenerate, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{Function: "math::sub", Stage: buildpipeline.StageGenerate, Status: buildpipeline.StatusError, Err: errors.New("bad")})

	if m.total != 2 || m.finished() != 2 {
		t.Fatalf("total=%d finished=%d", m.total, m.finished())
	}
	if len(m.failed) != 1 || m.failed[0] != "math::sub" {
		t.Fatalf("failed = %v", m.failed)
	}
	view := m.View()
	for _, want := range []string{"functions 2/2", "1 failed", "math::sub", "generate"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPercentFollowsStages(t *testing.T) {
	m := newModel()
	if m.percent() != 0 {
		t.Fatalf("fresh model percent = %v", m.percent())
	}
	for _, st := range buildpipeline.Stages() {
		m.applyEvent(buildpipeline.Event{Stage: st, Status: buildpipeline.StatusDone})
	}
	if m.percent() != 1 {
		t.Fatalf("all stages done percent = %v", m.percent())
	}
}

func TestVisibleFunctionsBounded(t *testing.T) {
	m := newModel()
	for i := 0; i < 50; i++ {
		name := "f" + strings.Repeat("x", i)
		m.applyEvent(buildpipeline.Event{Function: name, Stage: buildpipeline.StageGenerate, Status: buildpipeline.StatusDone})
	}
	if got := len(m.visibleFunctions()); got != recentLimit {
		t.Fatalf("visible = %d", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
