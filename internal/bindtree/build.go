package bindtree

import (
	"strings"

	"jnigen/internal/names"
)

// Builder turns declarations into a container tree.
type Builder struct {
	// Containers spells container names from module segments.
	Containers names.Convention
}

type group struct {
	path    []string
	entries []Entry
}

// Build places every entry exactly once. Top-level functions become root
// members; the rest are grouped by module path and appended, renamed to
// their leaf, to the container at the end of that path.
func (b Builder) Build(root string, entries []Entry) *Node {
	tree := newNode(root)

	var order []string
	groups := make(map[string]*group)
	for _, e := range entries {
		if e.Name.Depth() == 0 {
			tree.Members = append(tree.Members, Member{Name: e.Name, Text: e.Decl.Render()})
			continue
		}
		path := b.containerPath(e.Name.Modules)
		key := strings.Join(path, names.PathSeparator)
		g, ok := groups[key]
		if !ok {
			g = &group{path: path}
			groups[key] = g
			order = append(order, key)
		}
		g.entries = append(g.entries, e)
	}

	for _, key := range order {
		g := groups[key]
		node := tree.ensurePath(g.path)
		for _, e := range g.entries {
			node.Members = append(node.Members, Member{
				Name: e.Name,
				Text: e.Decl.RenderAs(names.ToCamel(e.Name.Leaf)),
			})
		}
	}
	return tree
}

func (b Builder) containerPath(modules []string) []string {
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = b.Containers.Apply(m)
	}
	return out
}

// Build is Builder{Containers: names.Pascal}.Build.
func Build(root string, entries []Entry) *Node {
	return Builder{Containers: names.Pascal}.Build(root, entries)
}
