// Package jni renders the Rust side of the bindings: one #[no_mangle]
// extern "C" entry point per manifest function.
package jni

import (
	"fmt"
	"sort"
	"strings"

	"jnigen/internal/abi"
	"jnigen/internal/manifest"
	"jnigen/internal/names"
	"jnigen/internal/render"
)

// Stub is a rendered entry point.
type Stub struct {
	Name   names.QualifiedName
	Symbol string
	Text   string
}

// Generator renders stubs for one JVM package.
type Generator struct {
	// Package is the dotted JVM package, e.g. com.example.
	Package string
	// Modules spells module segments inside symbols. The zero value keeps
	// them as written.
	Modules names.Convention
}

// Stub renders the entry point for fn.
func (g Generator) Stub(fn manifest.Function) (Stub, error) {
	symbol := names.Mangle(g.Package, fn.Name, g.Modules)

	var params strings.Builder
	args := make([]string, 0, len(fn.Params))
	for i, p := range fn.Params {
		jtype, err := abi.NativeType(p.Type)
		if err != nil {
			return Stub{}, fmt.Errorf("%s: parameter %q: %w", fn.Name, p.Name, err)
		}
		params.WriteString("    ")
		params.WriteString(p.Name)
		params.WriteString(": ")
		params.WriteString(jtype)
		if i < len(fn.Params)-1 {
			params.WriteString(",")
		}
		params.WriteString("\n")
		args = append(args, abi.CoercionFor(p.Type).Wrap(p.Name))
	}

	call := fmt.Sprintf("%s(%s)", fn.Name.Leaf, strings.Join(args, ", "))
	ret := ""
	body := call + ";"
	if fn.Return != nil {
		jtype, err := abi.NativeType(*fn.Return)
		if err != nil {
			return Stub{}, fmt.Errorf("%s: return type: %w", fn.Name, err)
		}
		ret = " -> " + jtype
		body = fmt.Sprintf("let result = %s;\n    %s", call, abi.CoercionFor(*fn.Return).Wrap("result"))
	}

	text := render.Render(stubTemplate, render.Bindings{
		"symbol": symbol,
		"params": params.String(),
		"ret":    ret,
		"body":   body,
	})
	return Stub{Name: fn.Name, Symbol: symbol, Text: text}, nil
}

// Imports returns the sorted, deduplicated use paths for fns.
func Imports(fns []manifest.Function) []string {
	set := make(map[string]struct{}, len(BaseImports)+len(fns))
	for _, imp := range BaseImports {
		set[imp] = struct{}{}
	}
	for _, fn := range fns {
		set[fn.Name.String()] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for imp := range set {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}

// File assembles lib.rs from already rendered stubs.
func File(fns []manifest.Function, stubs []Stub) string {
	imports := Imports(fns)
	uses := make([]string, len(imports))
	for i, imp := range imports {
		uses[i] = "use " + imp + ";"
	}
	texts := make([]string, len(stubs))
	for i, s := range stubs {
		texts[i] = s.Text
	}
	return render.Render(fileTemplate, render.Bindings{
		"imports": strings.Join(uses, "\n"),
		"stubs":   strings.Join(texts, "\n\n"),
	})
}

// Generate renders every stub and the file. The first unsupported type
// aborts the whole file.
func (g Generator) Generate(fns []manifest.Function) (string, []Stub, error) {
	stubs := make([]Stub, 0, len(fns))
	for _, fn := range fns {
		s, err := g.Stub(fn)
		if err != nil {
			return "", nil, err
		}
		stubs = append(stubs, s)
	}
	return File(fns, stubs), stubs, nil
}
