// Package cargo drives the cargo package manager to scaffold and tidy the
// generated Rust library.
package cargo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultBinary is the cargo executable looked up on PATH.
const DefaultBinary = "cargo"

// BindingCrate is the JNI crate every generated library depends on.
const BindingCrate = "jni"

const cdylibSection = "\n[lib]\ncrate-type = [\"cdylib\"]\n"

// Cargo runs cargo subcommands for libraries under Root.
type Cargo struct {
	Binary string
	Root   string
	Runner Runner
}

// New returns a Cargo rooted at root using r.
func New(root string, r Runner) *Cargo {
	return &Cargo{Binary: DefaultBinary, Root: root, Runner: r}
}

// Dir is the crate directory of lib.
func (c *Cargo) Dir(lib string) string {
	return filepath.Join(c.Root, lib)
}

func (c *Cargo) bin() string {
	if c.Binary == "" {
		return DefaultBinary
	}
	return c.Binary
}

func (c *Cargo) run(ctx context.Context, dir string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Runner.Run(ctx, dir, c.bin(), args...)
}

// Clean removes any previous output for lib.
func (c *Cargo) Clean(lib string) error {
	dir := c.Dir(lib)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clean %s: %w", dir, err)
	}
	return nil
}

// NewLib creates the crate and marks it as a cdylib.
func (c *Cargo) NewLib(ctx context.Context, lib string) error {
	if err := os.MkdirAll(c.Root, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", c.Root, err)
	}
	if err := c.run(ctx, c.Root, "new", "--lib", lib); err != nil {
		return err
	}
	return AppendCdylib(filepath.Join(c.Dir(lib), "Cargo.toml"))
}

// AppendCdylib adds the cdylib crate type to a Cargo.toml.
func AppendCdylib(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	_, werr := f.WriteString(cdylibSection)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	return nil
}

// Add adds each crate, then the JNI crate, as dependencies of lib.
func (c *Cargo) Add(ctx context.Context, lib string, crates ...string) error {
	dir := c.Dir(lib)
	seen := make(map[string]bool, len(crates)+1)
	for _, crate := range append(append([]string(nil), crates...), BindingCrate) {
		if seen[crate] {
			continue
		}
		seen[crate] = true
		if err := c.run(ctx, dir, "add", crate); err != nil {
			return err
		}
	}
	return nil
}

// Fix applies clippy suggestions to the generated sources.
func (c *Cargo) Fix(ctx context.Context, lib string) error {
	return c.run(ctx, c.Dir(lib), "clippy", "--fix", "--allow-dirty")
}

// Format runs rustfmt over the crate.
func (c *Cargo) Format(ctx context.Context, lib string) error {
	return c.run(ctx, c.Dir(lib), "fmt")
}
