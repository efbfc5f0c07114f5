// Package abi maps abstract scalar types onto the JNI calling convention and
// onto Kotlin, and describes the conversions needed at the boundary.
package abi

import (
	"errors"
	"fmt"
)

// Scalar is an abstract scalar type name as written in a manifest.
type Scalar string

const (
	I8   Scalar = "i8"
	I16  Scalar = "i16"
	I32  Scalar = "i32"
	I64  Scalar = "i64"
	U8   Scalar = "u8"
	U16  Scalar = "u16"
	U32  Scalar = "u32"
	U64  Scalar = "u64"
	F32  Scalar = "f32"
	F64  Scalar = "f64"
	Bool Scalar = "bool"
	Char Scalar = "char"
)

// ErrUnsupportedType is matched by every UnsupportedTypeError.
var ErrUnsupportedType = errors.New("unsupported type")

// UnsupportedTypeError reports an abstract type outside the scalar table.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("unsupported type: %s", e.Type)
}

// Is lets errors.Is(err, ErrUnsupportedType) succeed.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

type entry struct {
	native  string
	managed string
	width   uint8
	signed  bool
	integer bool
}

var table = map[Scalar]entry{
	I8:   {native: "jbyte", managed: "Byte", width: 8, signed: true, integer: true},
	I16:  {native: "jshort", managed: "Short", width: 16, signed: true, integer: true},
	I32:  {native: "jint", managed: "Int", width: 32, signed: true, integer: true},
	I64:  {native: "jlong", managed: "Long", width: 64, signed: true, integer: true},
	U8:   {native: "jbyte", managed: "Byte", width: 8, integer: true},
	U16:  {native: "jshort", managed: "Short", width: 16, integer: true},
	U32:  {native: "jint", managed: "Int", width: 32, integer: true},
	U64:  {native: "jlong", managed: "Long", width: 64, integer: true},
	F32:  {native: "jfloat", managed: "Float", width: 32, signed: true},
	F64:  {native: "jdouble", managed: "Double", width: 64, signed: true},
	Bool: {native: "jboolean", managed: "Boolean"},
	Char: {native: "jchar", managed: "Char"},
}

var ordered = []Scalar{I8, I16, I32, I64, U8, U16, U32, U64, F32, F64, Bool, Char}

// Scalars returns every supported scalar in table order.
func Scalars() []Scalar {
	out := make([]Scalar, len(ordered))
	copy(out, ordered)
	return out
}

// ParseScalar validates a manifest type name.
func ParseScalar(name string) (Scalar, error) {
	s := Scalar(name)
	if _, ok := table[s]; !ok {
		return "", &UnsupportedTypeError{Type: name}
	}
	return s, nil
}

func lookup(s Scalar) (entry, error) {
	e, ok := table[s]
	if !ok {
		return entry{}, &UnsupportedTypeError{Type: string(s)}
	}
	return e, nil
}

// NativeType returns the JNI type name for s.
func NativeType(s Scalar) (string, error) {
	e, err := lookup(s)
	if err != nil {
		return "", err
	}
	return e.native, nil
}

// ManagedType returns the Kotlin type name for s.
func ManagedType(s Scalar) (string, error) {
	e, err := lookup(s)
	if err != nil {
		return "", err
	}
	return e.managed, nil
}

// Unsigned reports whether s is an unsigned integer.
func (s Scalar) Unsigned() bool {
	e, ok := table[s]
	return ok && e.integer && !e.signed
}

// Width is the bit width of numeric scalars and 0 for bool and char.
func (s Scalar) Width() int {
	return int(table[s].width)
}

func (s Scalar) String() string { return string(s) }
