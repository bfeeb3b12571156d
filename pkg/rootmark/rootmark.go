// Package rootmark detects project roots by marker files or directories and
// walks directory trees upward toward them.
package rootmark

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/hierconf/hierconf/pkg/fsys"
)

// MarkerKind distinguishes file markers from directory markers.
type MarkerKind int

const (
	// MarkerFile matches a regular file with the marker name.
	MarkerFile MarkerKind = iota
	// MarkerDir matches a directory with the marker name.
	MarkerDir
)

// String returns a human-readable kind name.
func (k MarkerKind) String() string {
	switch k {
	case MarkerFile:
		return "file"
	case MarkerDir:
		return "directory"
	default:
		return "unknown"
	}
}

// Marker names a file or directory whose presence signals a project root.
type Marker struct {
	Kind MarkerKind
	Name string
}

// RootInfo describes a found project root.
type RootInfo struct {
	// Path is the root directory.
	Path string
	// Matched is the marker that identified it.
	Matched Marker
}

// DefaultMarkers returns the markers recognized out of the box.
func DefaultMarkers() []Marker {
	return []Marker{
		{Kind: MarkerDir, Name: ".git"},
		{Kind: MarkerFile, Name: "go.mod"},
		{Kind: MarkerFile, Name: "package.json"},
	}
}

// DefaultStopAt returns directory basenames that halt an upward walk even
// when no root marker has matched: walking out of a dependency cache is
// never useful.
func DefaultStopAt() []string {
	return []string{"node_modules", "vendor", ".cache"}
}

// IsRoot reports whether dir contains any of the markers, each checked with
// its declared kind. An empty marker set never matches.
func IsRoot(fs afero.Fs, dir string, markers []Marker) bool {
	_, ok := matchMarker(fs, dir, markers)
	return ok
}

// FindRoot walks upward from start looking for the first directory matching
// any marker. maxDepth caps the number of directories examined; zero or
// negative means the package default. The boolean result is false when no
// root was found within the limit, which is not an error.
func FindRoot(fs afero.Fs, start string, markers []Marker, maxDepth int) (RootInfo, bool) {
	walk := WalkUp(fs, start, WalkOptions{MaxDepth: maxDepth})
	for dir, ok := walk.Next(); ok; dir, ok = walk.Next() {
		if m, found := matchMarker(fs, dir, markers); found {
			return RootInfo{Path: dir, Matched: m}, true
		}
	}
	return RootInfo{}, false
}

func matchMarker(fs afero.Fs, dir string, markers []Marker) (Marker, bool) {
	for _, m := range markers {
		candidate := filepath.Join(dir, m.Name)
		switch m.Kind {
		case MarkerFile:
			if fsys.IsRegularFile(fs, candidate) {
				return m, true
			}
		case MarkerDir:
			if fsys.IsDir(fs, candidate) {
				return m, true
			}
		}
	}
	return Marker{}, false
}
