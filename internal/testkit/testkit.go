// Package testkit holds invariant checks and fixtures shared by tests.
package testkit

import (
	"fmt"
	"math/rand"
	"strings"

	"jnigen/internal/abi"
	"jnigen/internal/bindtree"
	"jnigen/internal/manifest"
	"jnigen/internal/names"
)

// CheckTree verifies the placement invariants of a binding tree built from
// fns: every function appears exactly once, in the container reached by
// its converted module path, and no container has two children of the
// same name.
func CheckTree(root *bindtree.Node, fns []manifest.Function, conv names.Convention) error {
	if root == nil {
		return fmt.Errorf("nil tree")
	}
	placed := make(map[string]int)
	var walkErr error
	var walk func(n *bindtree.Node, path []string)
	walk = func(n *bindtree.Node, path []string) {
		seen := make(map[string]bool, len(n.Children))
		for _, c := range n.Children {
			if seen[c.Name] {
				walkErr = fmt.Errorf("duplicate container %q under %q", c.Name, strings.Join(path, "."))
				return
			}
			seen[c.Name] = true
		}
		for _, m := range n.Members {
			want := convert(m.Name.Modules, conv)
			if strings.Join(want, ".") != strings.Join(path, ".") {
				walkErr = fmt.Errorf("%s placed in %q, want %q", m.Name, strings.Join(path, "."), strings.Join(want, "."))
				return
			}
			placed[m.Name.String()]++
		}
		for _, c := range n.Children {
			walk(c, append(append([]string(nil), path...), c.Name))
			if walkErr != nil {
				return
			}
		}
	}
	walk(root, nil)
	if walkErr != nil {
		return walkErr
	}

	expected := make(map[string]int, len(fns))
	for _, fn := range fns {
		expected[fn.Name.String()]++
	}
	for name, n := range expected {
		if placed[name] != n {
			return fmt.Errorf("%s placed %d times, want %d", name, placed[name], n)
		}
	}
	for name := range placed {
		if _, ok := expected[name]; !ok {
			return fmt.Errorf("unexpected member %s", name)
		}
	}
	return nil
}

func convert(modules []string, conv names.Convention) []string {
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = conv.Apply(m)
	}
	return out
}

// RandomManifest builds a valid manifest of n functions with distinct
// names spread over a few nested modules. The same seed gives the same
// manifest.
func RandomManifest(seed int64, n int) *manifest.Manifest {
	r := rand.New(rand.NewSource(seed))
	scalars := abi.Scalars()
	modules := []string{"core", "net", "io_util", "math"}
	crates := []manifest.Crate{{Name: "alpha"}, {Name: "beta"}}

	for i := 0; i < n; i++ {
		depth := r.Intn(4)
		segs := make([]string, 0, depth+1)
		for d := 0; d < depth; d++ {
			segs = append(segs, modules[r.Intn(len(modules))])
		}
		segs = append(segs, fmt.Sprintf("fn_%d", i))

		mem := manifest.Member{Kind: manifest.KindFunction, Name: strings.Join(segs, names.PathSeparator)}
		params := r.Intn(4)
		for p := 0; p < params; p++ {
			mem.Inputs = append(mem.Inputs, manifest.Input{
				Name: fmt.Sprintf("p%d", p),
				Type: string(scalars[r.Intn(len(scalars))]),
			})
		}
		if r.Intn(2) == 0 {
			out := string(scalars[r.Intn(len(scalars))])
			mem.Output = &out
		}
		c := &crates[r.Intn(len(crates))]
		c.Members = append(c.Members, mem)
	}
	return &manifest.Manifest{Crates: crates}
}
