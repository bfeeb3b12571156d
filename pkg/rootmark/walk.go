package rootmark

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// defaultMaxDepth bounds a walk when the caller does not.
const defaultMaxDepth = 64

// WalkOptions controls an upward walk.
type WalkOptions struct {
	// MaxDepth caps the number of directories yielded. Zero or negative
	// means the package default.
	MaxDepth int
	// RootMarkers, together with StopAtRoot, halts the walk after yielding
	// a directory that matches one of them.
	RootMarkers []Marker
	// StopAt lists directory basenames that halt the walk before the
	// directory is yielded.
	StopAt []string
	// StopAtRoot halts after the first root-marker match.
	StopAtRoot bool
}

// Walk yields successive ancestor directories, nearest first. It is finite
// and not restartable: each WalkUp call produces a fresh walk. A visited set
// of normalized paths guards against symlink loops.
type Walk struct {
	fs      afero.Fs
	opts    WalkOptions
	current string
	visited map[string]bool
	yielded int
	done    bool
}

// WalkUp starts an upward walk at start. The start path is resolved to a
// cleaned absolute path before the first step.
func WalkUp(fs afero.Fs, start string, opts WalkOptions) *Walk {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	resolved, err := filepath.Abs(start)
	if err != nil {
		resolved = filepath.Clean(start)
	}
	return &Walk{
		fs:      fs,
		opts:    opts,
		current: resolved,
		visited: make(map[string]bool),
	}
}

// Next returns the next directory of the walk, or ok=false when exhausted.
func (w *Walk) Next() (string, bool) {
	if w.done || w.yielded >= w.opts.MaxDepth {
		w.done = true
		return "", false
	}

	dir := w.current

	// Stop-at basenames halt before yielding the directory itself.
	for _, name := range w.opts.StopAt {
		if filepath.Base(dir) == name {
			w.done = true
			return "", false
		}
	}

	w.visited[dir] = true
	w.yielded++

	if w.opts.StopAtRoot && IsRoot(w.fs, dir, w.opts.RootMarkers) {
		w.done = true
		return dir, true
	}

	parent := filepath.Dir(dir)
	if parent == dir || w.visited[parent] {
		w.done = true
	} else {
		w.current = parent
	}
	return dir, true
}
