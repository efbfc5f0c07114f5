package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"jnigen/internal/abi"
	"jnigen/internal/cache"
	"jnigen/internal/manifest"
	"jnigen/internal/names"
	"jnigen/internal/testkit"
	"jnigen/internal/trace"
)

const mathAddManifest = `[{"name": "math", "members": [
  {"type": "function", "name": "math::add",
   "inputs": [{"name": "a", "type": "i32"}, {"name": "b", "type": "i32"}],
   "output": "i32"}
]}]`

const wantNative = `use jni::JNIEnv;
use jni::objects::{JClass, JString, JObject};
use jni::sys::{jfloat, jstring, jdouble, jint, jlong, jbyte, jshort, jchar, jboolean};
use math::add;

#[unsafe(no_mangle)]
pub extern "C" fn Java_com_example_math_add(
    mut env: JNIEnv,
    _: JClass,
    a: jint,
    b: jint
) -> jint {
    let result = add(a, b);
    result
}
`

const wantManaged = `package com.example

object Root {
    init {
        System.loadLibrary("lib")
    }

    object Math {
        external fun add(a: Int, b: Int): Int
    }
}
`

func decode(t *testing.T, src string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Decode([]byte(src), manifest.FormatJSON)
	if err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	return m
}

func TestGenerateMathAdd(t *testing.T) {
	res, err := Generate(context.Background(), &GenerateRequest{
		Manifest:   decode(t, mathAddManifest),
		Package:    "com.example",
		Library:    "lib",
		RootObject: "Root",
		Containers: names.Pascal,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Native != wantNative {
		t.Fatalf("native mismatch:\n--- got ---\n%s\n--- want ---\n%s", res.Native, wantNative)
	}
	if res.Managed != wantManaged {
		t.Fatalf("managed mismatch:\n--- got ---\n%s\n--- want ---\n%s", res.Managed, wantManaged)
	}
	if res.Functions != 1 || res.Containers != 1 {
		t.Fatalf("counts = %d functions, %d containers", res.Functions, res.Containers)
	}
	if !res.Timings.Has(StageGenerate) || !res.Timings.Has(StageTree) {
		t.Fatalf("missing stage timings")
	}
}

func TestGenerateDefaultRootObject(t *testing.T) {
	res, err := Generate(context.Background(), &GenerateRequest{
		Manifest: decode(t, `[{"name": "c", "members": [{"type": "function", "name": "ping"}]}]`),
		Package:  "org.demo",
		Library:  "my_lib",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(res.Managed, "object MyLib {") || !strings.Contains(res.Managed, "    external fun ping()\n") {
		t.Fatalf("managed output:\n%s", res.Managed)
	}
}

func TestGenerateHyphenatedLibrary(t *testing.T) {
	res, err := Generate(context.Background(), &GenerateRequest{
		Manifest: decode(t, `[{"name": "c", "members": [{"type": "function", "name": "ping"}]}]`),
		Package:  "org.demo",
		Library:  "my-lib",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(res.Managed, "object MyLib {") || !strings.Contains(res.Managed, `System.loadLibrary("my_lib")`) {
		t.Fatalf("managed output:\n%s", res.Managed)
	}
}

func TestGenerateRejectsHandBuiltBadName(t *testing.T) {
	m := &manifest.Manifest{Crates: []manifest.Crate{{Name: "c", Members: []manifest.Member{
		{Kind: manifest.KindFunction, Name: "a::::b"},
	}}}}
	_, err := Generate(context.Background(), &GenerateRequest{Manifest: m, Package: "p", Library: "l"})
	if !errors.Is(err, manifest.ErrMalformed) {
		t.Fatalf("Generate error = %v, want ErrMalformed", err)
	}
}

// manyFunctions builds a manifest whose functions at the given indexes use
// an unsupported type.
func manyFunctions(n int, bad ...int) *manifest.Manifest {
	badSet := make(map[int]bool)
	for _, b := range bad {
		badSet[b] = true
	}
	crate := manifest.Crate{Name: "c"}
	for i := 0; i < n; i++ {
		typ := "i64"
		if badSet[i] {
			typ = fmt.Sprintf("Vec%d", i)
		}
		crate.Members = append(crate.Members, manifest.Member{
			Kind:   manifest.KindFunction,
			Name:   fmt.Sprintf("m%d::f%d", i%3, i),
			Inputs: []manifest.Input{{Name: "x", Type: typ}},
		})
	}
	return &manifest.Manifest{Crates: []manifest.Crate{crate}}
}

func TestGenerateParallelMatchesSequential(t *testing.T) {
	m := manyFunctions(40)
	seq, err := Generate(context.Background(), &GenerateRequest{Manifest: m, Package: "p", Library: "l"})
	if err != nil {
		t.Fatal(err)
	}
	par, err := Generate(context.Background(), &GenerateRequest{Manifest: m, Package: "p", Library: "l", Jobs: 8})
	if err != nil {
		t.Fatal(err)
	}
	if seq.Native != par.Native || seq.Managed != par.Managed {
		t.Fatalf("parallel output differs from sequential")
	}
}

func TestGenerateReportsFirstFailure(t *testing.T) {
	for _, jobs := range []int{1, 4} {
		_, err := Generate(context.Background(), &GenerateRequest{
			Manifest: manyFunctions(30, 7, 21),
			Package:  "p",
			Library:  "l",
			Jobs:     jobs,
		})
		if !errors.Is(err, abi.ErrUnsupportedType) {
			t.Fatalf("jobs=%d: expected unsupported type, got %v", jobs, err)
		}
		if !strings.Contains(err.Error(), "Vec7") {
			t.Fatalf("jobs=%d: expected first failure, got %v", jobs, err)
		}
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) count(fn string, status Status) int {
	n := 0
	for _, ev := range s.events {
		if ev.Function == fn && ev.Status == status {
			n++
		}
	}
	return n
}

func TestGenerateProgressEvents(t *testing.T) {
	sink := &recordingSink{}
	_, err := Generate(context.Background(), &GenerateRequest{
		Manifest: decode(t, mathAddManifest),
		Package:  "com.example",
		Library:  "lib",
		Progress: sink,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, st := range []Status{StatusQueued, StatusWorking, StatusDone} {
		if sink.count("math::add", st) != 1 {
			t.Fatalf("expected one %s event for math::add, got %+v", st, sink.events)
		}
	}
}

type fakeToolchain struct {
	root     string
	calls    []string
	fmtErr   error
	scaffErr error
}

func (f *fakeToolchain) Clean(lib string) error {
	f.calls = append(f.calls, "clean "+lib)
	return os.RemoveAll(filepath.Join(f.root, lib))
}

func (f *fakeToolchain) NewLib(_ context.Context, lib string) error {
	f.calls = append(f.calls, "new "+lib)
	if f.scaffErr != nil {
		return f.scaffErr
	}
	return os.MkdirAll(filepath.Join(f.root, lib, "src"), 0o755)
}

func (f *fakeToolchain) Add(_ context.Context, lib string, crates ...string) error {
	f.calls = append(f.calls, "add "+strings.Join(crates, ","))
	return nil
}

func (f *fakeToolchain) Fix(context.Context, string) error {
	f.calls = append(f.calls, "fix")
	return f.fmtErr
}

func (f *fakeToolchain) Format(context.Context, string) error {
	f.calls = append(f.calls, "fmt")
	return nil
}

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildWritesSources(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "codegen")
	tc := &fakeToolchain{root: root}
	res, err := Build(context.Background(), &BuildRequest{
		GenerateRequest: GenerateRequest{Package: "com.example", Library: "lib", RootObject: "Root", Containers: names.Pascal},
		ManifestPath:    writeManifest(t, dir, mathAddManifest),
		OutputRoot:      root,
		Toolchain:       tc,
		Format:          true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	native, err := os.ReadFile(res.NativePath)
	if err != nil || string(native) != wantNative {
		t.Fatalf("lib.rs = %q, %v", native, err)
	}
	managed, err := os.ReadFile(filepath.Join(root, "lib", "kotlin", "Root.kt"))
	if err != nil || string(managed) != wantManaged {
		t.Fatalf("Root.kt = %q, %v", managed, err)
	}
	want := "clean lib|new lib|add math|fix|fmt"
	if got := strings.Join(tc.calls, "|"); got != want {
		t.Fatalf("toolchain calls = %s, want %s", got, want)
	}
}

func TestBuildFailsBeforeTouchingDisk(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "codegen")
	stale := filepath.Join(root, "lib", "keep.txt")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	tc := &fakeToolchain{root: root}
	bad := `[{"name": "c", "members": [{"type": "function", "name": "f", "inputs": [{"name": "s", "type": "String"}]}]}]`
	_, err := Build(context.Background(), &BuildRequest{
		GenerateRequest: GenerateRequest{Package: "p", Library: "lib"},
		ManifestPath:    writeManifest(t, dir, bad),
		OutputRoot:      root,
		Toolchain:       tc,
	})
	if !errors.Is(err, abi.ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
	if len(tc.calls) != 0 {
		t.Fatalf("toolchain ran after failed generation: %v", tc.calls)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("previous output was touched: %v", err)
	}
}

func TestBuildMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	_, err := Build(context.Background(), &BuildRequest{
		GenerateRequest: GenerateRequest{Package: "p", Library: "lib"},
		ManifestPath:    writeManifest(t, dir, `{"not": "an array"}`),
		OutputRoot:      filepath.Join(dir, "out"),
		EmitOnly:        true,
	})
	if !errors.Is(err, manifest.ErrMalformed) {
		t.Fatalf("expected malformed manifest, got %v", err)
	}
}

func TestBuildFormatFailure(t *testing.T) {
	for _, strict := range []bool{false, true} {
		dir := t.TempDir()
		root := filepath.Join(dir, "codegen")
		tc := &fakeToolchain{root: root, fmtErr: errors.New("clippy exploded")}
		res, err := Build(context.Background(), &BuildRequest{
			GenerateRequest: GenerateRequest{Package: "p", Library: "lib"},
			ManifestPath:    writeManifest(t, dir, mathAddManifest),
			OutputRoot:      root,
			Toolchain:       tc,
			Format:          true,
			StrictFormat:    strict,
		})
		if strict {
			if err == nil || !strings.Contains(err.Error(), "clippy exploded") {
				t.Fatalf("strict: expected failure, got %v", err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("non-strict: %v", err)
		}
		if res.FormatErr == nil {
			t.Fatalf("non-strict: format error not reported")
		}
		if _, err := os.Stat(res.NativePath); err != nil {
			t.Fatalf("sources missing after format warning: %v", err)
		}
	}
}

func TestBuildEmitOnly(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "out")
	sink := &recordingSink{}
	res, err := Build(context.Background(), &BuildRequest{
		GenerateRequest: GenerateRequest{Package: "com.example", Library: "lib", Progress: sink},
		ManifestPath:    writeManifest(t, dir, mathAddManifest),
		OutputRoot:      root,
		EmitOnly:        true,
		Format:          true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.ManagedPath != filepath.Join(root, "lib", "kotlin", "Lib.kt") {
		t.Fatalf("managed path = %s", res.ManagedPath)
	}
	skipped := 0
	for _, ev := range sink.events {
		if ev.Function == "" && ev.Status == StatusSkipped {
			skipped++
		}
	}
	if skipped != 2 {
		t.Fatalf("expected scaffold and format to be skipped, events: %+v", sink.events)
	}
}

func TestBuildCacheHit(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.OpenDir(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	req := &BuildRequest{
		GenerateRequest: GenerateRequest{Package: "com.example", Library: "lib", RootObject: "Root"},
		ManifestPath:    writeManifest(t, dir, mathAddManifest),
		OutputRoot:      filepath.Join(dir, "out"),
		EmitOnly:        true,
		Cache:           c,
		Version:         "test",
	}
	first, err := Build(context.Background(), req)
	if err != nil || first.CacheHit {
		t.Fatalf("first run: hit=%v err=%v", first.CacheHit, err)
	}
	second, err := Build(context.Background(), req)
	if err != nil || !second.CacheHit {
		t.Fatalf("second run: hit=%v err=%v", second.CacheHit, err)
	}
	if second.Functions != 1 {
		t.Fatalf("cached function count = %d", second.Functions)
	}
	native, _ := os.ReadFile(second.NativePath)
	if string(native) != wantNative {
		t.Fatalf("cached lib.rs differs:\n%s", native)
	}
}

func TestBuildTracesStages(t *testing.T) {
	dir := t.TempDir()
	ring := trace.NewRingTracer(64, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)
	_, err := Build(ctx, &BuildRequest{
		GenerateRequest: GenerateRequest{Package: "p", Library: "lib"},
		ManifestPath:    writeManifest(t, dir, mathAddManifest),
		OutputRoot:      filepath.Join(dir, "out"),
		EmitOnly:        true,
	})
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd {
			seen[ev.Name] = true
		}
	}
	for _, name := range []string{"build lib", "parse", "generate", "tree", "write"} {
		if !seen[name] {
			t.Fatalf("missing span %q in %v", name, seen)
		}
	}
}

func TestGenerateTreeInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		m := testkit.RandomManifest(seed, 25)
		for _, conv := range []names.Convention{names.Pascal, names.PassThrough} {
			res, err := Generate(context.Background(), &GenerateRequest{
				Manifest:   m,
				Package:    "com.example",
				Library:    "lib",
				Containers: conv,
				Jobs:       int(seed % 3),
			})
			if err != nil {
				t.Fatalf("seed %d: %v", seed, err)
			}
			fns, err := m.Functions()
			if err != nil {
				t.Fatalf("seed %d: %v", seed, err)
			}
			if err := testkit.CheckTree(res.Tree, fns, conv); err != nil {
				t.Fatalf("seed %d, %s: %v", seed, conv, err)
			}
			if got := strings.Count(res.Managed, "external fun "); got != 25 {
				t.Fatalf("seed %d: %d declarations rendered", seed, got)
			}
			if got := strings.Count(res.Native, "pub extern \"C\" fn "); got != 25 {
				t.Fatalf("seed %d: %d stubs rendered", seed, got)
			}
		}
	}
}
