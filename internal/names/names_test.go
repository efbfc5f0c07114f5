package names

import (
	"errors"
	"reflect"
	"testing"
)

func TestMangle(t *testing.T) {
	cases := []struct {
		pkg  string
		name string
		want string
	}{
		{"com.example", "test::func", "Java_com_example_test_func"},
		{"com.example_test", "test::func", "Java_com_example_1test_test_func"},
		{"com.example", "mod1::mod2::func", "Java_com_example_mod1_mod2_func"},
		{"com.example", "func", "Java_com_example_func"},
		{"com.example", "math::do_thing", "Java_com_example_math_doThing"},
		{"a_b.c_d", "x::y-z", "Java_a_1b_c_1d_x_yZ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qn := MustQualified(tc.name)
			got := Mangle(tc.pkg, qn, PassThrough)
			if got != tc.want {
				t.Fatalf("Mangle(%q, %q) = %q, want %q", tc.pkg, tc.name, got, tc.want)
			}
			if again := Mangle(tc.pkg, qn, PassThrough); again != got {
				t.Fatalf("Mangle is not deterministic: %q vs %q", got, again)
			}
		})
	}
}

func TestMangleManagedConvention(t *testing.T) {
	got := Mangle("com.example", MustQualified("my_mod::inner-mod::get_value"), Pascal)
	if want := "Java_com_example_MyMod_InnerMod_getValue"; got != want {
		t.Fatalf("Mangle = %q, want %q", got, want)
	}
}

func TestToPascal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello-world", "HelloWorld"},
		{"foo_bar", "FooBar"},
		{"simple", "Simple"},
		{"ALREADY_UPPER", "AlreadyUpper"},
		{"mod1", "Mod1"},
		{"__x__", "X"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ToPascal(tc.in); got != tc.want {
			t.Errorf("ToPascal(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToCamel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello-world", "helloWorld"},
		{"foo_bar", "fooBar"},
		{"simple", "simple"},
		{"ALREADY_UPPER", "alreadyUpper"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ToCamel(tc.in); got != tc.want {
			t.Errorf("ToCamel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseQualified(t *testing.T) {
	cases := []struct {
		in      string
		modules []string
		leaf    string
	}{
		{"a::b::c", []string{"a", "b"}, "c"},
		{"x::y", []string{"x"}, "y"},
		{"single", []string{}, "single"},
	}
	for _, tc := range cases {
		qn, err := ParseQualified(tc.in)
		if err != nil {
			t.Fatalf("ParseQualified(%q) error: %v", tc.in, err)
		}
		if !reflect.DeepEqual(qn.Modules, tc.modules) {
			t.Errorf("ParseQualified(%q).Modules = %v, want %v", tc.in, qn.Modules, tc.modules)
		}
		if qn.Leaf != tc.leaf {
			t.Errorf("ParseQualified(%q).Leaf = %q, want %q", tc.in, qn.Leaf, tc.leaf)
		}
		if qn.String() != tc.in {
			t.Errorf("String() = %q, want %q", qn.String(), tc.in)
		}
		if qn.Depth() != len(tc.modules) {
			t.Errorf("Depth() = %d, want %d", qn.Depth(), len(tc.modules))
		}
	}
}

func TestParseQualifiedRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "a::", "::b", "a::::b"} {
		if _, err := ParseQualified(in); !errors.Is(err, ErrBadQualifiedName) {
			t.Errorf("ParseQualified(%q) error = %v, want ErrBadQualifiedName", in, err)
		}
	}
}

func TestFlatName(t *testing.T) {
	if got := FlatName(MustQualified("math::vec::dot_product")); got != "math_vec_dotProduct" {
		t.Fatalf("FlatName = %q", got)
	}
	if got := FlatName(MustQualified("version")); got != "version" {
		t.Fatalf("FlatName = %q", got)
	}
}

func TestParseConvention(t *testing.T) {
	cases := map[string]Convention{"pass": PassThrough, "Pascal": Pascal, "camel": Camel, "": Pascal}
	for in, want := range cases {
		got, err := ParseConvention(in)
		if err != nil || got != want {
			t.Errorf("ParseConvention(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseConvention("kebab"); err == nil {
		t.Fatalf("expected error for unknown convention")
	}
}
