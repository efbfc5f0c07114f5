// Package buildpipeline runs a generation: manifest in, Rust crate and
// Kotlin bindings out.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jnigen/internal/cache"
	"jnigen/internal/manifest"
	"jnigen/internal/trace"
)

// Toolchain scaffolds and tidies the native crate. *cargo.Cargo implements it.
type Toolchain interface {
	Clean(lib string) error
	NewLib(ctx context.Context, lib string) error
	Add(ctx context.Context, lib string, crates ...string) error
	Fix(ctx context.Context, lib string) error
	Format(ctx context.Context, lib string) error
}

// Cache stores generated sources between runs. *cache.DiskCache implements it.
type Cache interface {
	Get(key cache.Digest, out *cache.Payload) (bool, error)
	Put(key cache.Digest, payload *cache.Payload) error
}

// BuildRequest configures a full generation run.
type BuildRequest struct {
	GenerateRequest
	ManifestPath string
	// OutputRoot holds one directory per library.
	OutputRoot string
	Toolchain  Toolchain
	Cache      Cache
	// Version is mixed into cache keys so upgrades invalidate entries.
	Version string
	// EmitOnly writes the sources without running the toolchain.
	EmitOnly bool
	// Format runs clippy --fix and fmt after writing.
	Format bool
	// StrictFormat turns formatting failures into run failures.
	StrictFormat bool
}

// BuildResult reports what a run produced.
type BuildResult struct {
	CrateDir    string
	NativePath  string
	ManagedPath string
	Functions   uint32
	Containers  uint32
	CacheHit    bool
	// FormatErr is a non-fatal formatting failure.
	FormatErr error
	Timings   Timings
}

// NativePath is where lib.rs goes for lib under root.
func NativePath(root, lib string) string {
	return filepath.Join(root, lib, "src", "lib.rs")
}

// ManagedPath is where the Kotlin root object goes for lib under root.
func ManagedPath(root, lib, rootObject string) string {
	return filepath.Join(root, lib, "kotlin", rootObject+".kt")
}

// Build decodes the manifest, generates both sources, then scaffolds the
// crate, writes the files and formats them. Generation finishes before
// anything on disk is touched.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	reqCopy := *req
	req = &reqCopy
	if req.Library == "" {
		return result, fmt.Errorf("missing library name")
	}
	if req.OutputRoot == "" {
		req.OutputRoot = "codegen"
	}
	if req.Toolchain == nil && !req.EmitOnly {
		return result, fmt.Errorf("missing toolchain")
	}

	tracer := trace.FromContext(ctx)
	run := trace.Begin(tracer, trace.ScopeDriver, "build "+req.Library, trace.ParentID(ctx))
	ctx = trace.WithSpan(ctx, run)
	var runErr error
	defer func() { run.End(errDetail(runErr)) }()

	fail := func(stage Stage, err error, start time.Time) (BuildResult, error) {
		runErr = err
		emitStage(req.Progress, stage, StatusError, err, time.Since(start))
		return result, err
	}

	parseStart := time.Now()
	emitStage(req.Progress, StageParse, StatusWorking, nil, 0)
	span := trace.Begin(tracer, trace.ScopeStage, string(StageParse), run.ID())
	m, raw, err := manifest.Load(req.ManifestPath)
	span.End(errDetail(err))
	if err != nil {
		return fail(StageParse, err, parseStart)
	}
	req.Manifest = m
	result.Timings.Set(StageParse, time.Since(parseStart))
	emitStage(req.Progress, StageParse, StatusDone, nil, time.Since(parseStart))

	native, managed, err := generateCached(ctx, req, raw, &result)
	if err != nil {
		runErr = err
		return result, err
	}

	rootObject := req.RootObjectName()
	result.CrateDir = filepath.Join(req.OutputRoot, req.Library)
	result.NativePath = NativePath(req.OutputRoot, req.Library)
	result.ManagedPath = ManagedPath(req.OutputRoot, req.Library, rootObject)

	scaffoldStart := time.Now()
	if req.EmitOnly {
		emitStage(req.Progress, StageScaffold, StatusSkipped, nil, 0)
	} else {
		emitStage(req.Progress, StageScaffold, StatusWorking, nil, 0)
		span = trace.Begin(tracer, trace.ScopeStage, string(StageScaffold), run.ID())
		err = scaffold(ctx, req)
		span.End(errDetail(err))
		if err != nil {
			return fail(StageScaffold, err, scaffoldStart)
		}
		result.Timings.Set(StageScaffold, time.Since(scaffoldStart))
		emitStage(req.Progress, StageScaffold, StatusDone, nil, time.Since(scaffoldStart))
	}

	writeStart := time.Now()
	emitStage(req.Progress, StageWrite, StatusWorking, nil, 0)
	span = trace.Begin(tracer, trace.ScopeStage, string(StageWrite), run.ID())
	err = errors.Join(
		writeFile(result.NativePath, native),
		writeFile(result.ManagedPath, managed),
	)
	span.End(errDetail(err))
	if err != nil {
		return fail(StageWrite, err, writeStart)
	}
	result.Timings.Set(StageWrite, time.Since(writeStart))
	emitStage(req.Progress, StageWrite, StatusDone, nil, time.Since(writeStart))

	if req.EmitOnly || !req.Format {
		emitStage(req.Progress, StageFormat, StatusSkipped, nil, 0)
		return result, nil
	}
	formatStart := time.Now()
	emitStage(req.Progress, StageFormat, StatusWorking, nil, 0)
	span = trace.Begin(tracer, trace.ScopeStage, string(StageFormat), run.ID())
	err = format(ctx, req)
	span.End(errDetail(err))
	result.Timings.Set(StageFormat, time.Since(formatStart))
	if err != nil {
		if req.StrictFormat {
			return fail(StageFormat, err, formatStart)
		}
		result.FormatErr = err
		emitStage(req.Progress, StageFormat, StatusWarning, err, time.Since(formatStart))
		return result, nil
	}
	emitStage(req.Progress, StageFormat, StatusDone, nil, time.Since(formatStart))
	return result, nil
}

// generateCached serves generation from the cache when the inputs match a
// previous run.
func generateCached(ctx context.Context, req *BuildRequest, raw []byte, result *BuildResult) (string, string, error) {
	var key cache.Digest
	if req.Cache != nil {
		var err error
		key, err = cache.Key{
			Manifest:   raw,
			Package:    req.Package,
			Library:    req.Library,
			RootObject: req.RootObjectName(),
			Indent:     req.Indent,
			Containers: req.Containers.String(),
			Version:    req.Version,
		}.Digest()
		if err != nil {
			return "", "", err
		}
		var hit cache.Payload
		ok, err := req.Cache.Get(key, &hit)
		if err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeStage, "cache", "read failed: "+err.Error(), trace.ParentID(ctx))
		}
		if ok {
			result.CacheHit = true
			result.Functions = hit.Functions
			result.Containers = hit.Containers
			emitStage(req.Progress, StageGenerate, StatusSkipped, nil, 0)
			emitStage(req.Progress, StageTree, StatusSkipped, nil, 0)
			trace.Point(trace.FromContext(ctx), trace.ScopeStage, "cache", "hit "+key.String()[:12], trace.ParentID(ctx))
			return hit.Native, hit.Managed, nil
		}
	}

	gen, err := Generate(ctx, &req.GenerateRequest)
	result.Timings.Merge(gen.Timings)
	if err != nil {
		return "", "", err
	}
	result.Functions = gen.Functions
	result.Containers = gen.Containers

	if req.Cache != nil {
		err := req.Cache.Put(key, &cache.Payload{
			Native:     gen.Native,
			Managed:    gen.Managed,
			Functions:  gen.Functions,
			Containers: gen.Containers,
			Created:    time.Now().Unix(),
		})
		if err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeStage, "cache", "write failed: "+err.Error(), trace.ParentID(ctx))
		}
	}
	return gen.Native, gen.Managed, nil
}

func scaffold(ctx context.Context, req *BuildRequest) error {
	tc := req.Toolchain
	if err := tc.Clean(req.Library); err != nil {
		return err
	}
	if err := tc.NewLib(ctx, req.Library); err != nil {
		return fmt.Errorf("create crate %s: %w", req.Library, err)
	}
	crates := req.Manifest.CrateNames()
	if err := tc.Add(ctx, req.Library, crates...); err != nil {
		return fmt.Errorf("add dependencies of %s: %w", req.Library, err)
	}
	return nil
}

func format(ctx context.Context, req *BuildRequest) error {
	if err := req.Toolchain.Fix(ctx, req.Library); err != nil {
		return fmt.Errorf("clippy: %w", err)
	}
	if err := req.Toolchain.Format(ctx, req.Library); err != nil {
		return fmt.Errorf("fmt: %w", err)
	}
	return nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
