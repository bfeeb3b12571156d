// Package pathres rewrites relative path fields in a freshly loaded
// document so they are anchored at the directory containing the file they
// came from. Resolution happens before documents from different directories
// are merged, when the directory context still exists.
package pathres

import (
	"path/filepath"
	"strings"

	"github.com/hierconf/hierconf/pkg/merge"
)

// reservedSegments are dot-path segments that are never written. Dot paths
// originate in untrusted configuration files; refusing these names keeps
// resolved documents safe to hand to consumers in runtimes where such keys
// carry structural meaning.
var reservedSegments = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// Get navigates a dot-notation path through nested maps. The boolean result
// is false when any segment is missing or not a map.
func Get(doc map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")
	var cur any = doc
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes value at a dot-notation path, creating intermediate maps as
// needed. A path containing a reserved segment, or one that runs into a
// non-map intermediate value, is a silent no-op.
func Set(doc map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if reservedSegments[seg] {
			return
		}
	}

	cur := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg]
		if !ok {
			child := map[string]any{}
			cur[seg] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return
		}
		cur = child
	}
	cur[segments[len(segments)-1]] = value
}

// ResolvePaths returns a copy of doc in which the string values at
// pathFields, and the string elements of sequences at arrayFields, are
// joined to baseDir unless already absolute. Missing paths, absolute
// values, and non-string values pass through untouched.
func ResolvePaths(doc map[string]any, baseDir string, pathFields, arrayFields []string) map[string]any {
	out := merge.Clone(doc).(map[string]any)

	for _, field := range pathFields {
		v, ok := Get(out, field)
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr {
			Set(out, field, resolveOne(s, baseDir))
		}
	}

	for _, field := range arrayFields {
		v, ok := Get(out, field)
		if !ok {
			continue
		}
		seq, isSeq := v.([]any)
		if !isSeq {
			continue
		}
		resolved := make([]any, len(seq))
		for i, elem := range seq {
			if s, isStr := elem.(string); isStr {
				resolved[i] = resolveOne(s, baseDir)
			} else {
				resolved[i] = elem
			}
		}
		Set(out, field, resolved)
	}

	return out
}

func resolveOne(value, baseDir string) string {
	if filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(baseDir, value)
}
