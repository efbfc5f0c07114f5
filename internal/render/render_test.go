package render

import (
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	cases := []struct {
		name string
		tmpl string
		b    Bindings
		want string
	}{
		{"simple", "fn {%name%}() {}", Bindings{"name": "f"}, "fn f() {}"},
		{"repeated", "{%a%}-{%a%}", Bindings{"a": "x"}, "x-x"},
		{"unbound stays", "{%a%} {%b%}", Bindings{"a": "1"}, "1 {%b%}"},
		{"no bindings", "object {%name%} {\n}", nil, "object {%name%} {\n}"},
		{"literal braces", "{ {%x%} }", Bindings{"x": "{}"}, "{ {} }"},
		{"value looks like marker", "{%a%}{%b%}", Bindings{"a": "{%b%}", "b": "B"}, "{%b%}B"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(tc.tmpl, tc.b); got != tc.want {
				t.Fatalf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderOrderIndependent(t *testing.T) {
	tmpl := "{%x%}:{%y%}:{%z%}"
	b := Bindings{"x": "1", "y": "2", "z": "3"}
	want := Render(tmpl, b)
	for i := 0; i < 20; i++ {
		if got := Render(tmpl, b); got != want {
			t.Fatalf("iteration %d: %q != %q", i, got, want)
		}
	}
}

func TestMarkers(t *testing.T) {
	got := Markers("package {%pkg%}\nobject {%name%} {\n{%contents%} {%name%}\n}")
	want := []string{"pkg", "name", "contents"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Markers() = %v, want %v", got, want)
	}
	if m := Missing("{%a%}{%b%}", Bindings{"a": ""}); !reflect.DeepEqual(m, []string{"b"}) {
		t.Fatalf("Missing() = %v", m)
	}
}
