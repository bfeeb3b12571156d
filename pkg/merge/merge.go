// Package merge folds ordered configuration documents into one. Documents
// are generic value trees as produced by the parsers (map[string]any,
// []any, scalars); the fold is deterministic, order-sensitive, and never
// mutates its inputs.
//
// Later documents take precedence. Two maps merge per key over the union of
// their keys; two sequences combine under the overlap mode configured for
// their field path (override by default); everything else is replaced
// wholesale by the later value. A key that is present with a nil value
// overwrites, while a key that is absent leaves the earlier value alone —
// parsers keep that distinction, so "key: null" in a nearer document really
// does clear an inherited value.
package merge

import "strings"

// Mode is a per-field sequence overlap policy.
type Mode string

const (
	// ModeOverride replaces the earlier sequence with the later one.
	ModeOverride Mode = "override"
	// ModeAppend keeps the earlier elements and appends the later ones.
	ModeAppend Mode = "append"
	// ModePrepend puts the later elements before the earlier ones.
	ModePrepend Mode = "prepend"
)

// OverlapModes maps dot-notation field paths to their sequence overlap
// mode. The most specific configured path wins; otherwise the nearest
// configured ancestor applies; otherwise ModeOverride.
type OverlapModes map[string]Mode

// Lookup resolves the mode for a field path.
func (m OverlapModes) Lookup(path string) Mode {
	for p := path; p != ""; p = parentPath(p) {
		if mode, ok := m[p]; ok {
			return mode
		}
	}
	return ModeOverride
}

func parentPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// Merge folds documents left to right; later documents win. An empty input
// yields an empty map, and a single document yields a distinct structural
// copy of it.
func Merge(docs []map[string]any, overlaps OverlapModes) map[string]any {
	out := map[string]any{}
	for _, doc := range docs {
		out = mergeMaps(out, doc, "", overlaps)
	}
	return out
}

// Clone returns a deep structural copy of a parsed value tree. Maps and
// sequences are copied; scalars are shared (they are immutable).
func Clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

func mergeMaps(target, source map[string]any, path string, overlaps OverlapModes) map[string]any {
	out := make(map[string]any, len(target)+len(source))
	for k, v := range target {
		out[k] = Clone(v)
	}
	for k, sv := range source {
		childPath := joinPath(path, k)
		if sv == nil {
			// Present-but-nil overwrites; only true absence is a no-op.
			out[k] = nil
			continue
		}
		tv, ok := out[k]
		if !ok || tv == nil {
			out[k] = Clone(sv)
			continue
		}
		out[k] = mergeValues(tv, sv, childPath, overlaps)
	}
	return out
}

// mergeValues combines two non-nil values at one field path.
func mergeValues(target, source any, path string, overlaps OverlapModes) any {
	switch sv := source.(type) {
	case map[string]any:
		if tv, ok := target.(map[string]any); ok {
			return mergeMaps(tv, sv, path, overlaps)
		}
	case []any:
		if tv, ok := target.([]any); ok {
			return mergeSequences(tv, sv, path, overlaps)
		}
	}
	// Primitives, and composite type mismatches, replace wholesale.
	return Clone(source)
}

func mergeSequences(target, source []any, path string, overlaps OverlapModes) []any {
	switch overlaps.Lookup(path) {
	case ModeAppend:
		out := make([]any, 0, len(target)+len(source))
		out = append(out, Clone(target).([]any)...)
		out = append(out, Clone(source).([]any)...)
		return out
	case ModePrepend:
		out := make([]any, 0, len(target)+len(source))
		out = append(out, Clone(source).([]any)...)
		out = append(out, Clone(target).([]any)...)
		return out
	default:
		return Clone(source).([]any)
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
