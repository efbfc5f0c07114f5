package cargo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrToolFailed marks a failed external tool invocation.
var ErrToolFailed = errors.New("tool invocation failed")

// ToolError reports a tool that exited unsuccessfully.
type ToolError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	cmd := strings.TrimSpace(e.Tool + " " + strings.Join(e.Args, " "))
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", cmd, e.Stderr)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", cmd, e.Err)
	}
	return cmd + ": failed"
}

func (e *ToolError) Is(target error) bool { return target == ErrToolFailed }

func (e *ToolError) Unwrap() error { return e.Err }
