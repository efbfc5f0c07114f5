package bindtree

import (
	"sort"
	"strings"
	"testing"

	"jnigen/internal/abi"
	"jnigen/internal/kotlin"
	"jnigen/internal/manifest"
	"jnigen/internal/names"
)

func entry(t *testing.T, qualified string, params ...string) Entry {
	t.Helper()
	fn := manifest.Function{Crate: "c", Name: names.MustQualified(qualified)}
	for i, p := range params {
		fn.Params = append(fn.Params, manifest.Param{Name: string(rune('a' + i)), Type: abi.Scalar(p)})
	}
	d, err := kotlin.Declare(fn)
	if err != nil {
		t.Fatalf("declare %s: %v", qualified, err)
	}
	return Entry{Name: fn.Name, Decl: d}
}

func TestBuildPlacesByModulePath(t *testing.T) {
	tree := Build("Root", []Entry{
		entry(t, "top"),
		entry(t, "math::add", "i32", "i32"),
		entry(t, "math::vec::dot"),
		entry(t, "io::read"),
		entry(t, "math::sub", "i32", "i32"),
	})
	if len(tree.Members) != 1 || tree.Members[0].Text != "external fun top()" {
		t.Fatalf("root members = %+v", tree.Members)
	}
	math, ok := tree.Child("Math")
	if !ok {
		t.Fatalf("missing Math container")
	}
	if len(math.Members) != 2 {
		t.Fatalf("Math members = %+v", math.Members)
	}
	if got := math.Members[0].Text; got != "external fun add(a: Int, b: Int)" {
		t.Fatalf("nested member = %q", got)
	}
	vec, ok := math.Child("Vec")
	if !ok || len(vec.Members) != 1 || vec.Members[0].Text != "external fun dot()" {
		t.Fatalf("Math.Vec = %+v", vec)
	}
	if got := []string{tree.Children[0].Name, tree.Children[1].Name}; got[0] != "Math" || got[1] != "Io" {
		t.Fatalf("children order = %v", got)
	}
	if tree.MemberCount() != 5 {
		t.Fatalf("member count = %d", tree.MemberCount())
	}
	if tree.MaxDepth() != 2 {
		t.Fatalf("max depth = %d", tree.MaxDepth())
	}
}

func TestBuildDepthMatchesModulePath(t *testing.T) {
	tree := Build("Root", []Entry{
		entry(t, "a::b::c::f"),
		entry(t, "a::g"),
		entry(t, "h"),
	})
	tree.Walk(func(n *Node, depth int) {
		for _, m := range n.Members {
			if m.Name.Depth() != depth {
				t.Fatalf("%s placed at depth %d", m.Name, depth)
			}
		}
	})
}

func TestBuildSiblingNamesUnique(t *testing.T) {
	tree := Build("Root", []Entry{
		entry(t, "x::f"),
		entry(t, "y::g"),
		entry(t, "x::h"),
		entry(t, "x::z::i"),
		entry(t, "y::j"),
	})
	tree.Walk(func(n *Node, _ int) {
		seen := make(map[string]bool)
		for _, c := range n.Children {
			if seen[c.Name] {
				t.Fatalf("duplicate container %q under %q", c.Name, n.Name)
			}
			seen[c.Name] = true
		}
	})
	x, _ := tree.Child("X")
	if len(x.Members) != 2 {
		t.Fatalf("X members = %d", len(x.Members))
	}
}

func TestBuildContainerConvention(t *testing.T) {
	tree := Builder{Containers: names.PassThrough}.Build("Root", []Entry{entry(t, "my_mod::f")})
	if _, ok := tree.Child("my_mod"); !ok {
		t.Fatalf("expected pass-through container name")
	}
}

func TestBuildEmpty(t *testing.T) {
	tree := Build("Root", nil)
	if len(tree.Members) != 0 || len(tree.Children) != 0 {
		t.Fatalf("expected empty tree, got %+v", tree)
	}
}

func TestRenderMathAdd(t *testing.T) {
	tree := Build("Root", []Entry{entry(t, "math::add", "i32", "i32")})
	got := Serializer{}.Render(tree, RootInfo{Package: "com.example", Library: "mylib"})
	want := `package com.example

object Root {
    init {
        System.loadLibrary("mylib")
    }

    object Math {
        external fun add(a: Int, b: Int)
    }
}
`
	if got != want {
		t.Fatalf("render mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderEmptyRoot(t *testing.T) {
	got := Serializer{Indent: "  "}.Render(Build("Lib", nil), RootInfo{Package: "p", Library: "l"})
	want := "package p\n\nobject Lib {\n  init {\n    System.loadLibrary(\"l\")\n  }\n}\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

// outline reads rendered Kotlin back into container path -> member names,
// checking that every member line is indented by its nesting depth.
func outline(t *testing.T, src, unit string) map[string][]string {
	t.Helper()
	out := make(map[string][]string)
	var stack []string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, "object ") && strings.HasSuffix(trimmed, "{"):
			stack = append(stack, strings.TrimSuffix(strings.TrimPrefix(trimmed, "object "), " {"))
		case strings.HasSuffix(trimmed, "{"):
			stack = append(stack, "")
		case trimmed == "}":
			stack = stack[:len(stack)-1]
		case strings.HasPrefix(trimmed, "external fun "):
			if want := strings.Repeat(unit, len(stack)); !strings.HasPrefix(line, want) || strings.HasPrefix(line, want+" ") {
				t.Fatalf("bad indentation at depth %d: %q", len(stack), line)
			}
			name := strings.TrimPrefix(trimmed, "external fun ")
			name = name[:strings.Index(name, "(")]
			key := strings.Join(stack[1:], ".")
			out[key] = append(out[key], name)
		}
	}
	if len(stack) != 0 {
		t.Fatalf("unbalanced braces, open: %v", stack)
	}
	return out
}

func TestRenderRoundTrip(t *testing.T) {
	entries := []Entry{
		entry(t, "init_all"),
		entry(t, "math::add", "i32", "i32"),
		entry(t, "math::trig::sin", "f64"),
		entry(t, "net::http::get_status"),
		entry(t, "math::trig::cos", "f64"),
		entry(t, "net::close"),
	}
	for _, unit := range []string{"    ", "\t"} {
		src := Serializer{Indent: unit}.Render(Build("Root", entries), RootInfo{Package: "com.example", Library: "lib"})
		got := outline(t, src, unit)

		want := map[string][]string{
			"":          {"initAll"},
			"Math":      {"add"},
			"Math.Trig": {"sin", "cos"},
			"Net":       {"close"},
			"Net.Http":  {"getStatus"},
		}
		if len(got) != len(want) {
			t.Fatalf("containers = %v, want %v", got, want)
		}
		for k, w := range want {
			g := append([]string(nil), got[k]...)
			sort.Strings(g)
			w = append([]string(nil), w...)
			sort.Strings(w)
			if strings.Join(g, ",") != strings.Join(w, ",") {
				t.Fatalf("container %q members = %v, want %v", k, got[k], w)
			}
		}
	}
}
