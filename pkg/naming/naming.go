// Package naming locates a directory's configuration file among several
// candidate filename templates. Templates carry {app} and {ext}
// placeholders; lower priority numbers win, and within one template the
// caller's extension order decides.
package naming

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/hierconf/hierconf/pkg/fsys"
)

// Pattern is one filename template.
type Pattern struct {
	// Template is a filename with {app} and optionally {ext} placeholders.
	Template string
	// Priority orders patterns; lower numbers are tried first.
	Priority int
	// Hidden patterns are skipped unless Options.SearchHidden is set.
	Hidden bool
}

// DefaultPatterns returns the filename templates recognized out of the box.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Template: "{app}.config.{ext}", Priority: 1},
		{Template: "{app}.conf.{ext}", Priority: 2},
		{Template: "{app}.{ext}", Priority: 3},
		{Template: ".{app}rc.{ext}", Priority: 4, Hidden: true},
		{Template: ".{app}rc", Priority: 5, Hidden: true},
	}
}

// Options controls one discovery pass.
type Options struct {
	// AppName replaces the {app} placeholder.
	AppName string
	// Patterns to consider; nil means DefaultPatterns.
	Patterns []Pattern
	// Extensions replace the {ext} placeholder, tried in order.
	Extensions []string
	// SearchHidden includes patterns marked Hidden.
	SearchHidden bool
	// WarnOnMultiple keeps scanning past the first match and reports every
	// other existing candidate as ignored.
	WarnOnMultiple bool
}

// FoundConfig identifies the winning candidate.
type FoundConfig struct {
	// Path is the full path of the file.
	Path string
	// Pattern is the template that produced it.
	Pattern Pattern
	// Extension is the extension that matched, empty for extension-less
	// templates.
	Extension string
}

// Discovery is the result of one pass over a directory.
type Discovery struct {
	// Config is the highest-priority existing candidate, or nil when the
	// directory holds none. Nil is not an error.
	Config *FoundConfig
	// MultipleWarning describes ignored lower-priority candidates, when
	// requested and present.
	MultipleWarning string
}

// Discover scans dir for the highest-priority configuration file.
func Discover(fs afero.Fs, dir string, opts Options) Discovery {
	patterns := opts.Patterns
	if patterns == nil {
		patterns = DefaultPatterns()
	}

	active := make([]Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Hidden && !opts.SearchHidden {
			continue
		}
		active = append(active, p)
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Priority < active[j].Priority })

	var winner *FoundConfig
	var ignored []string
	for _, p := range active {
		for _, c := range expandPattern(p, opts.AppName, opts.Extensions) {
			path := filepath.Join(dir, c.name)
			// Only regular files count; a directory with a matching name
			// is not a configuration file.
			if !fsys.IsRegularFile(fs, path) {
				continue
			}
			if winner == nil {
				winner = &FoundConfig{Path: path, Pattern: p, Extension: c.ext}
				if !opts.WarnOnMultiple {
					return Discovery{Config: winner}
				}
				continue
			}
			ignored = append(ignored, c.name)
		}
	}

	d := Discovery{Config: winner}
	if winner != nil && len(ignored) > 0 {
		d.MultipleWarning = fmt.Sprintf(
			"multiple configuration files in %s: using %s, ignoring %s",
			dir, filepath.Base(winner.Path), strings.Join(ignored, ", "))
	}
	return d
}

type candidate struct {
	name string
	ext  string
}

// expandPattern produces candidate filenames for one pattern. Templates
// without {ext} yield exactly one candidate.
func expandPattern(p Pattern, app string, exts []string) []candidate {
	base := strings.ReplaceAll(p.Template, "{app}", app)
	if !strings.Contains(base, "{ext}") {
		return []candidate{{name: base}}
	}
	out := make([]candidate, 0, len(exts))
	for _, ext := range exts {
		out = append(out, candidate{
			name: strings.ReplaceAll(base, "{ext}", ext),
			ext:  ext,
		})
	}
	return out
}
