// Package render substitutes {%key%} markers in text templates.
//
// The marker syntax does not collide with the braces of the Rust and Kotlin
// code the templates produce, so template bodies can contain literal braces.
package render

import (
	"sort"
	"strings"
)

const (
	markerOpen  = "{%"
	markerClose = "%}"
)

// Bindings maps marker keys to replacement text.
type Bindings map[string]string

// Marker returns the placeholder text for key.
func Marker(key string) string {
	return markerOpen + key + markerClose
}

// Render replaces every bound marker in tmpl in a single pass. Replacement
// text is never rescanned, so the result does not depend on key order.
// Markers without a binding are left untouched.
func Render(tmpl string, b Bindings) string {
	if len(b) == 0 {
		return tmpl
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, Marker(k), b[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Markers lists the distinct keys referenced by tmpl in order of first use.
func Markers(tmpl string) []string {
	var keys []string
	seen := make(map[string]struct{})
	rest := tmpl
	for {
		i := strings.Index(rest, markerOpen)
		if i < 0 {
			return keys
		}
		rest = rest[i+len(markerOpen):]
		j := strings.Index(rest, markerClose)
		if j < 0 {
			return keys
		}
		key := rest[:j]
		rest = rest[j+len(markerClose):]
		if key == "" || strings.ContainsAny(key, " \t\n{}") {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
}

// Missing returns the keys tmpl declares that b does not bind.
func Missing(tmpl string, b Bindings) []string {
	var out []string
	for _, k := range Markers(tmpl) {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
