// Package parser provides the structured-data parsers the hierarchy loader
// delegates to. Parsers are keyed by file extension; each returns a generic
// value tree (map[string]any / []any / scalars) or an error. The loader
// treats any error, and any result that is not a map, as "no configuration
// at this level".
package parser

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Func parses raw document text into a generic value tree.
type Func func(data []byte) (any, error)

// Registry maps a file extension (without the leading dot, lower-case) to
// its parser.
type Registry map[string]Func

// Default returns a registry covering JSON, JSONC, YAML and TOML.
func Default() Registry {
	return Registry{
		"json":  ParseJSON,
		"jsonc": ParseJSONC,
		"yaml":  ParseYAML,
		"yml":   ParseYAML,
		"toml":  ParseTOML,
	}
}

// ForFile resolves the parser for a file path by its extension.
func (r Registry) ForFile(path string) (Func, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	fn, ok := r[ext]
	return fn, ok
}

// Extensions lists the registered extensions in the order they should be
// tried when generating filename candidates: the canonical ones first, any
// custom ones after, sorted so the order is stable across runs.
func (r Registry) Extensions() []string {
	ordered := []string{"yaml", "yml", "json", "jsonc", "toml"}
	out := make([]string, 0, len(r))
	for _, ext := range ordered {
		if _, ok := r[ext]; ok {
			out = append(out, ext)
		}
	}
	var extra []string
	for ext := range r {
		if !contains(ordered, ext) {
			extra = append(extra, ext)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// ParseJSON parses a standard JSON document.
func ParseJSON(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	return v, nil
}

// ParseJSONC parses JSON with comments and trailing commas by stripping
// them before decoding.
func ParseJSONC(data []byte) (any, error) {
	return ParseJSON(jsonc.ToJSON(data))
}

// ParseYAML parses a YAML document. String-keyed mappings decode to
// map[string]any, which is what the merge engine dispatches on.
func ParseYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	return v, nil
}

// ParseTOML parses a TOML document. TOML documents are always tables at the
// top level, so the result is a map[string]any.
func ParseTOML(data []byte) (any, error) {
	var v map[string]any
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing toml: %w", err)
	}
	return v, nil
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
