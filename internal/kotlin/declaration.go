// Package kotlin renders the Kotlin side of the bindings: external function
// declarations that the binding tree later nests into objects.
package kotlin

import (
	"fmt"
	"strings"

	"jnigen/internal/abi"
	"jnigen/internal/manifest"
	"jnigen/internal/names"
	"jnigen/internal/render"
)

const declTemplate = `external fun {%name%}({%params%}){%ret%}`

// Param is a rendered Kotlin parameter.
type Param struct {
	Name string
	Type string
}

// Declaration is an external fun signature. DisplayName starts as the flat
// name and is rewritten to the leaf once the declaration is nested.
type Declaration struct {
	Name        names.QualifiedName
	DisplayName string
	Params      []Param
	Return      string
}

// WithName returns a copy displayed under name.
func (d Declaration) WithName(name string) Declaration {
	d.DisplayName = name
	return d
}

// Render produces the declaration text.
func (d Declaration) Render() string {
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.Name + ": " + p.Type
	}
	ret := ""
	if d.Return != "" {
		ret = ": " + d.Return
	}
	return render.Render(declTemplate, render.Bindings{
		"name":   d.DisplayName,
		"params": strings.Join(params, ", "),
		"ret":    ret,
	})
}

func (d Declaration) String() string { return d.Render() }

// Declare maps fn onto Kotlin types.
func Declare(fn manifest.Function) (Declaration, error) {
	d := Declaration{
		Name:        fn.Name,
		DisplayName: names.FlatName(fn.Name),
		Params:      make([]Param, 0, len(fn.Params)),
	}
	for _, p := range fn.Params {
		kt, err := abi.ManagedType(p.Type)
		if err != nil {
			return Declaration{}, fmt.Errorf("%s: parameter %q: %w", fn.Name, p.Name, err)
		}
		d.Params = append(d.Params, Param{Name: p.Name, Type: kt})
	}
	if fn.Return != nil {
		kt, err := abi.ManagedType(*fn.Return)
		if err != nil {
			return Declaration{}, fmt.Errorf("%s: return type: %w", fn.Name, err)
		}
		d.Return = kt
	}
	return d, nil
}

// DeclareAll declares every function, stopping at the first failure.
func DeclareAll(fns []manifest.Function) ([]Declaration, error) {
	out := make([]Declaration, 0, len(fns))
	for _, fn := range fns {
		d, err := Declare(fn)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// RenderAs renders the declaration under another name.
func (d Declaration) RenderAs(name string) string {
	return d.WithName(name).Render()
}
