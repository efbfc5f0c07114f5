// Package manifest decodes the binding manifest: an ordered list of crates,
// each listing the members to expose over JNI.
package manifest

import (
	"fmt"

	"jnigen/internal/abi"
	"jnigen/internal/names"
)

// KindFunction is the only member kind that produces bindings.
const KindFunction = "function"

// skippedKinds are recognised member kinds that carry no binding yet.
var skippedKinds = map[string]bool{
	"struct": true,
	"enum":   true,
	"trait":  true,
	"const":  true,
	"static": true,
	"type":   true,
}

// Manifest is a decoded manifest file.
type Manifest struct {
	Path   string
	Crates []Crate
}

// Crate is one package descriptor.
type Crate struct {
	Name    string   `json:"name" toml:"name"`
	Members []Member `json:"members" toml:"members"`
}

// Member is a raw manifest entry.
type Member struct {
	Kind   string  `json:"type" toml:"type"`
	Name   string  `json:"name" toml:"name"`
	Inputs []Input `json:"inputs" toml:"inputs"`
	Output *string `json:"output" toml:"output"`
}

// Input is a raw parameter entry.
type Input struct {
	Type string `json:"type" toml:"type"`
	Name string `json:"name" toml:"name"`
}

// Param is a typed function parameter.
type Param struct {
	Name string
	Type abi.Scalar
}

// Function is a function member ready for generation. Types are not checked
// here; the generators reject unsupported ones.
type Function struct {
	Crate  string
	Name   names.QualifiedName
	Params []Param
	Return *abi.Scalar
}

// HasReturn reports whether the function produces a value.
func (f Function) HasReturn() bool {
	return f.Return != nil
}

// CrateNames returns crate names in manifest order without duplicates.
func (m *Manifest) CrateNames() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(m.Crates))
	out := make([]string, 0, len(m.Crates))
	for _, c := range m.Crates {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c.Name)
	}
	return out
}

// Functions returns every function member in manifest order. A manifest
// from Decode always succeeds; one assembled by hand may carry a bad name.
func (m *Manifest) Functions() ([]Function, error) {
	if m == nil {
		return nil, nil
	}
	var out []Function
	for ci, c := range m.Crates {
		for mi, mem := range c.Members {
			if mem.Kind != KindFunction {
				continue
			}
			qn, err := names.ParseQualified(mem.Name)
			if err != nil {
				return nil, &Error{Field: fmt.Sprintf("crates[%d].members[%d].name", ci, mi), Err: err}
			}
			fn := Function{Crate: c.Name, Name: qn}
			for _, in := range mem.Inputs {
				fn.Params = append(fn.Params, Param{Name: in.Name, Type: abi.Scalar(in.Type)})
			}
			if mem.Output != nil {
				ret := abi.Scalar(*mem.Output)
				fn.Return = &ret
			}
			out = append(out, fn)
		}
	}
	return out, nil
}
