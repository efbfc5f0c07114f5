package manifest

import (
	"errors"
	"fmt"
)

// ErrMalformed is matched by every manifest decoding failure.
var ErrMalformed = errors.New("malformed manifest")

// Error locates a structural problem in a manifest.
type Error struct {
	Path  string
	Field string // e.g. crates[0].members[2].name
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	loc := e.Path
	if e.Field != "" {
		if loc != "" {
			loc += ": "
		}
		loc += e.Field
	}
	msg := e.Msg
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if loc == "" {
		return fmt.Sprintf("malformed manifest: %s", msg)
	}
	return fmt.Sprintf("%s: malformed manifest: %s", loc, msg)
}

// Is lets errors.Is(err, ErrMalformed) succeed.
func (e *Error) Is(target error) bool {
	return target == ErrMalformed
}

func (e *Error) Unwrap() error {
	return e.Err
}
