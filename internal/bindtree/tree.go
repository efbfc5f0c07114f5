// Package bindtree regroups flat Kotlin declarations into nested objects that
// mirror the Rust module path of each function, and renders the result.
package bindtree

import (
	"jnigen/internal/names"
)

// Declaration is a managed declaration that can be rendered under the name
// it takes once nested.
type Declaration interface {
	Render() string
	RenderAs(name string) string
}

// Entry pairs a declaration with the qualified name it came from.
type Entry struct {
	Name names.QualifiedName
	Decl Declaration
}

// Member is a declaration placed in a container.
type Member struct {
	Name names.QualifiedName
	Text string
}

// Node is a namespace container. Children have unique names and, like
// Members, keep the order in which the manifest first mentioned them.
type Node struct {
	Name     string
	Members  []Member
	Children []*Node

	index map[string]int
}

func newNode(name string) *Node {
	return &Node{Name: name}
}

// Child returns the direct child called name.
func (n *Node) Child(name string) (*Node, bool) {
	if n == nil || n.index == nil {
		return nil, false
	}
	i, ok := n.index[name]
	if !ok {
		return nil, false
	}
	return n.Children[i], true
}

// ensurePath returns the descendant at path, creating missing containers.
func (n *Node) ensurePath(path []string) *Node {
	if len(path) == 0 {
		return n
	}
	child, ok := n.Child(path[0])
	if !ok {
		child = newNode(path[0])
		if n.index == nil {
			n.index = make(map[string]int)
		}
		n.index[path[0]] = len(n.Children)
		n.Children = append(n.Children, child)
	}
	return child.ensurePath(path[1:])
}

// Walk visits n and its descendants depth-first with their depth below n.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(0, fn)
}

func (n *Node) walk(depth int, fn func(*Node, int)) {
	if n == nil {
		return
	}
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(depth+1, fn)
	}
}

// MemberCount is the number of members in the subtree.
func (n *Node) MemberCount() int {
	total := 0
	n.Walk(func(node *Node, _ int) {
		total += len(node.Members)
	})
	return total
}

// MaxDepth is the deepest container level below n.
func (n *Node) MaxDepth() int {
	maxDepth := 0
	n.Walk(func(_ *Node, depth int) {
		if depth > maxDepth {
			maxDepth = depth
		}
	})
	return maxDepth
}
