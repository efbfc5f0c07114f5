package names

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Convention selects how a module segment is spelled.
type Convention uint8

const (
	// PassThrough keeps the segment as written.
	PassThrough Convention = iota
	// Pascal capitalizes every word and drops '-' and '_'.
	Pascal
	// Camel is Pascal with a lowercase first letter.
	Camel
)

func (c Convention) String() string {
	switch c {
	case PassThrough:
		return "pass"
	case Pascal:
		return "pascal"
	case Camel:
		return "camel"
	default:
		return "unknown"
	}
}

// ParseConvention reads a convention name from config or flags.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass", "passthrough", "none":
		return PassThrough, nil
	case "pascal", "":
		return Pascal, nil
	case "camel":
		return Camel, nil
	default:
		return PassThrough, fmt.Errorf("invalid naming convention %q (expected pass|pascal|camel)", s)
	}
}

// Apply normalizes one segment.
func (c Convention) Apply(segment string) string {
	switch c {
	case Pascal:
		return ToPascal(segment)
	case Camel:
		return ToCamel(segment)
	default:
		return segment
	}
}

// ToPascal splits on '-' and '_' and title-cases each word:
// "hello-world" -> "HelloWorld", "ALREADY_UPPER" -> "AlreadyUpper".
func ToPascal(name string) string {
	title := cases.Title(language.Und)
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// ToCamel is ToPascal with the first letter lowered: "foo_bar" -> "fooBar".
func ToCamel(name string) string {
	pascal := ToPascal(name)
	if pascal == "" {
		return ""
	}
	r := []rune(pascal)
	return strings.ToLower(string(r[0])) + string(r[1:])
}
