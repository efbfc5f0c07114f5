package abi

// Coercion describes how a value crosses the JNI boundary.
type Coercion uint8

const (
	// PassThrough hands the value over unchanged.
	PassThrough Coercion = iota
	// Checked wraps the value in a fallible conversion that panics on overflow
	// inside the generated stub.
	Checked
)

func (c Coercion) String() string {
	switch c {
	case PassThrough:
		return "pass"
	case Checked:
		return "checked"
	default:
		return "unknown"
	}
}

// CoercionFor returns the strategy for s. The JNI side has no unsigned
// integers, so every unsigned scalar needs a checked conversion in both
// directions.
func CoercionFor(s Scalar) Coercion {
	if s.Unsigned() {
		return Checked
	}
	return PassThrough
}

// Wrap applies the strategy to a Rust expression.
func (c Coercion) Wrap(expr string) string {
	if c == Checked {
		return expr + ".try_into().unwrap()"
	}
	return expr
}
