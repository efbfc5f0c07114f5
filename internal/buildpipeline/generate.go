package buildpipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"jnigen/internal/bindtree"
	"jnigen/internal/jni"
	"jnigen/internal/kotlin"
	"jnigen/internal/manifest"
	"jnigen/internal/names"
	"jnigen/internal/trace"
)

// GenerateRequest configures source generation for one library.
type GenerateRequest struct {
	Manifest *manifest.Manifest
	// Package is the dotted JVM package of the Kotlin side.
	Package string
	// Library is the name passed to System.loadLibrary.
	Library string
	// RootObject names the top-level Kotlin object; defaults to Pascal(Library).
	RootObject string
	// Indent is one nesting level of the Kotlin output.
	Indent string
	// Containers spells Kotlin object names from module segments. The zero
	// value keeps them as written.
	Containers names.Convention
	// Jobs bounds parallel per-function generation; values below 2 run
	// sequentially.
	Jobs     int
	Progress ProgressSink
}

// GenerateResult holds both generated sources.
type GenerateResult struct {
	Native     string
	Managed    string
	Stubs      []jni.Stub
	Tree       *bindtree.Node
	Functions  uint32
	Containers uint32
	Timings    Timings
}

// RootObjectName resolves the root object name for req.
func (req *GenerateRequest) RootObjectName() string {
	if req.RootObject != "" {
		return req.RootObject
	}
	return names.ToPascal(req.Library)
}

// LoadName is the name System.loadLibrary expects. Cargo builds a crate
// named my-lib as libmy_lib, so hyphens become underscores.
func (req *GenerateRequest) LoadName() string {
	return strings.ReplaceAll(req.Library, "-", "_")
}

// Generate renders the native stubs and the Kotlin declaration tree. Nothing
// is written; a failure in any function fails the whole run.
func Generate(ctx context.Context, req *GenerateRequest) (GenerateResult, error) {
	var result GenerateResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil || req.Manifest == nil {
		return result, fmt.Errorf("missing generate request")
	}
	if req.Package == "" {
		return result, fmt.Errorf("missing java package")
	}
	tracer := trace.FromContext(ctx)
	parent := trace.ParentID(ctx)

	fns, err := req.Manifest.Functions()
	if err != nil {
		return result, err
	}
	labels := make([]string, len(fns))
	for i, fn := range fns {
		labels[i] = fn.Name.String()
	}
	emitQueued(req.Progress, labels)

	genStart := time.Now()
	emitStage(req.Progress, StageGenerate, StatusWorking, nil, 0)
	span := trace.Begin(tracer, trace.ScopeStage, string(StageGenerate), parent)
	stubs, decls, err := generateAll(ctx, req, fns)
	span.WithExtra("functions", strconv.Itoa(len(fns))).End(errDetail(err))
	if err != nil {
		emitStage(req.Progress, StageGenerate, StatusError, err, time.Since(genStart))
		return result, err
	}
	result.Stubs = stubs
	result.Native = jni.File(fns, stubs)
	result.Timings.Set(StageGenerate, time.Since(genStart))
	emitStage(req.Progress, StageGenerate, StatusDone, nil, time.Since(genStart))

	treeStart := time.Now()
	emitStage(req.Progress, StageTree, StatusWorking, nil, 0)
	span = trace.Begin(tracer, trace.ScopeStage, string(StageTree), parent)
	entries := make([]bindtree.Entry, len(decls))
	for i, d := range decls {
		entries[i] = bindtree.Entry{Name: d.Name, Decl: d}
	}
	tree := bindtree.Builder{Containers: req.Containers}.Build(req.RootObjectName(), entries)
	result.Tree = tree
	result.Managed = bindtree.Serializer{Indent: req.Indent}.Render(tree, bindtree.RootInfo{
		Package: req.Package,
		Library: req.LoadName(),
	})
	if result.Functions, err = safecast.Conv[uint32](len(fns)); err != nil {
		return result, fmt.Errorf("function count: %w", err)
	}
	containers := 0
	tree.Walk(func(_ *bindtree.Node, depth int) {
		if depth > 0 {
			containers++
		}
	})
	if result.Containers, err = safecast.Conv[uint32](containers); err != nil {
		return result, fmt.Errorf("container count: %w", err)
	}
	span.WithExtra("containers", strconv.Itoa(containers)).
		WithExtra("depth", strconv.Itoa(tree.MaxDepth())).
		End("")
	result.Timings.Set(StageTree, time.Since(treeStart))
	emitStage(req.Progress, StageTree, StatusDone, nil, time.Since(treeStart))
	return result, nil
}

// generateAll renders every function into index-addressed slots. With
// parallel jobs the reported error is still the one of the first failing
// function in manifest order.
func generateAll(ctx context.Context, req *GenerateRequest, fns []manifest.Function) ([]jni.Stub, []kotlin.Declaration, error) {
	gen := jni.Generator{Package: req.Package}
	stubs := make([]jni.Stub, len(fns))
	decls := make([]kotlin.Declaration, len(fns))
	errs := make([]error, len(fns))
	tracer := trace.FromContext(ctx)
	parent := trace.ParentID(ctx)

	one := func(i int) {
		fn := fns[i]
		label := fn.Name.String()
		start := time.Now()
		emitFunction(req.Progress, label, StatusWorking, nil, 0)
		stub, err := gen.Stub(fn)
		if err == nil {
			decls[i], err = kotlin.Declare(fn)
		}
		if err != nil {
			errs[i] = err
			emitFunction(req.Progress, label, StatusError, err, time.Since(start))
			trace.Point(tracer, trace.ScopeFunction, label, err.Error(), parent)
			return
		}
		stubs[i] = stub
		emitFunction(req.Progress, label, StatusDone, nil, time.Since(start))
		trace.Point(tracer, trace.ScopeFunction, label, stub.Symbol, parent)
	}

	if req.Jobs < 2 {
		for i := range fns {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			one(i)
			if errs[i] != nil {
				return nil, nil, errs[i]
			}
		}
		return stubs, decls, nil
	}

	var g errgroup.Group
	g.SetLimit(req.Jobs)
	for i := range fns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			one(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}
	return stubs, decls, nil
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return "error: " + err.Error()
}
