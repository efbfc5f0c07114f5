// Package names turns qualified Rust paths into JNI export symbols and into
// Kotlin identifiers.
package names

import (
	"errors"
	"fmt"
	"strings"
)

// PathSeparator delimits module segments in a qualified name.
const PathSeparator = "::"

// ErrBadQualifiedName is matched by every qualified-name parse failure.
var ErrBadQualifiedName = errors.New("bad qualified name")

// QualifiedName is a module path plus a leaf, e.g. mod1::mod2::func.
type QualifiedName struct {
	Modules []string
	Leaf    string
}

// ParseQualified splits s on "::". Empty input or empty segments are rejected.
func ParseQualified(s string) (QualifiedName, error) {
	if strings.TrimSpace(s) == "" {
		return QualifiedName{}, fmt.Errorf("%w: empty name", ErrBadQualifiedName)
	}
	parts := strings.Split(s, PathSeparator)
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			return QualifiedName{}, fmt.Errorf("%w: %q has an empty segment at position %d", ErrBadQualifiedName, s, i)
		}
	}
	return QualifiedName{
		Modules: parts[:len(parts)-1],
		Leaf:    parts[len(parts)-1],
	}, nil
}

// MustQualified is ParseQualified for literals known to be valid.
func MustQualified(s string) QualifiedName {
	qn, err := ParseQualified(s)
	if err != nil {
		panic(err)
	}
	return qn
}

// String joins the name back with "::".
func (q QualifiedName) String() string {
	if len(q.Modules) == 0 {
		return q.Leaf
	}
	return strings.Join(q.Modules, PathSeparator) + PathSeparator + q.Leaf
}

// Depth is the number of module segments.
func (q QualifiedName) Depth() int {
	return len(q.Modules)
}

// ModulePath is the module prefix joined with "::" ("" for top-level names).
func (q QualifiedName) ModulePath() string {
	return strings.Join(q.Modules, PathSeparator)
}
