package bindtree

import (
	"strings"

	"jnigen/internal/render"
)

// DefaultIndent is one nesting level.
const DefaultIndent = "    "

const rootTemplate = `package {%package%}

object {%name%} {
{%i%}init {
{%i%}{%i%}System.loadLibrary("{%library%}")
{%i%}}
{%contents%}}
`

const containerTemplate = `object {%name%} {
{%contents%}}`

// RootInfo carries the file-level metadata rendered around the root object.
type RootInfo struct {
	Package string
	Library string
}

// Serializer renders a tree as Kotlin source.
type Serializer struct {
	Indent string
}

func (s Serializer) unit() string {
	if s.Indent == "" {
		return DefaultIndent
	}
	return s.Indent
}

// Render produces the complete Kotlin file for root.
func (s Serializer) Render(root *Node, info RootInfo) string {
	contents := ""
	if body := s.body(root); body != "" {
		contents = "\n" + s.indent(body) + "\n"
	}
	return render.Render(rootTemplate, render.Bindings{
		"package":  info.Package,
		"name":     root.Name,
		"library":  info.Library,
		"i":        s.unit(),
		"contents": contents,
	})
}

// body lists members, then nested containers, one per line.
func (s Serializer) body(n *Node) string {
	parts := make([]string, 0, len(n.Members)+len(n.Children))
	for _, m := range n.Members {
		parts = append(parts, m.Text)
	}
	for _, c := range n.Children {
		parts = append(parts, s.container(c))
	}
	return strings.Join(parts, "\n")
}

func (s Serializer) container(n *Node) string {
	contents := ""
	if body := s.body(n); body != "" {
		contents = s.indent(body) + "\n"
	}
	return render.Render(containerTemplate, render.Bindings{
		"name":     n.Name,
		"contents": contents,
	})
}

// indent prefixes every non-empty line with one level.
func (s Serializer) indent(text string) string {
	lines := strings.Split(text, "\n")
	unit := s.unit()
	for i, l := range lines {
		if l != "" {
			lines[i] = unit + l
		}
	}
	return strings.Join(lines, "\n")
}
