package names

import "strings"

// ExportPrefix starts every JNI export symbol.
const ExportPrefix = "Java"

// EscapePackage rewrites a dotted JVM package for use inside a symbol. A
// literal '_' becomes "_1" so it cannot be confused with the '_' that
// replaces each '.'.
func EscapePackage(pkg string) string {
	return strings.ReplaceAll(strings.ReplaceAll(pkg, "_", "_1"), ".", "_")
}

// Mangle builds the export symbol for a function:
//
//	Java_<escaped package>[_<modules>]_<camelLeaf>
//
// modules are normalized with conv and joined by '_'. Distinct names that
// normalize to the same symbol are not detected.
func Mangle(pkg string, qn QualifiedName, conv Convention) string {
	parts := make([]string, 0, 4)
	parts = append(parts, ExportPrefix, EscapePackage(pkg))
	if mods := JoinModules(qn.Modules, conv); mods != "" {
		parts = append(parts, mods)
	}
	parts = append(parts, ToCamel(qn.Leaf))
	return strings.Join(parts, "_")
}

// JoinModules normalizes and joins module segments with '_'.
func JoinModules(modules []string, conv Convention) string {
	if len(modules) == 0 {
		return ""
	}
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = conv.Apply(m)
	}
	return strings.Join(out, "_")
}

// FlatName is the name a function carries before it is nested: the module
// segments and the camel leaf joined by '_'.
func FlatName(qn QualifiedName) string {
	leaf := ToCamel(qn.Leaf)
	if mods := JoinModules(qn.Modules, PassThrough); mods != "" {
		return mods + "_" + leaf
	}
	return leaf
}
