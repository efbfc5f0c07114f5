package cargo

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"jnigen/internal/trace"
)

// Runner executes an external command in dir.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs commands with os/exec. Stderr is captured into the
// returned *ToolError; stdout goes to Stdout when set.
type ExecRunner struct {
	PrintCommands bool
	Stdout        io.Writer
	Echo          io.Writer
}

func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	if r.PrintCommands && r.Echo != nil {
		if _, err := fmt.Fprintf(r.Echo, "%s %s\n", name, strings.Join(args, " ")); err != nil {
			return fmt.Errorf("failed to print command: %w", err)
		}
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeTool, name+" "+strings.Join(args, " "), trace.ParentID(ctx))
	span.WithExtra("dir", dir)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		span.End("failed")
		return &ToolError{
			Tool:   name,
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	span.End("ok")
	return nil
}
