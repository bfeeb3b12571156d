package hierarchy

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/hierconf/hierconf/internal/logging"
	"github.com/hierconf/hierconf/pkg/boundary"
	"github.com/hierconf/hierconf/pkg/fsys"
	"github.com/hierconf/hierconf/pkg/merge"
	"github.com/hierconf/hierconf/pkg/naming"
	"github.com/hierconf/hierconf/pkg/parser"
	"github.com/hierconf/hierconf/pkg/pathres"
	"github.com/hierconf/hierconf/pkg/rootmark"
)

const (
	// DefaultConfigDirName is the configuration subdirectory looked for at
	// every level when the caller names none.
	DefaultConfigDirName = ".hierconf"
	// DefaultMaxLevels bounds the upward walk when the caller does not.
	DefaultMaxLevels = 32
)

// ConfigDir is one discovered configuration directory.
type ConfigDir struct {
	// Path is the absolute path of the configuration directory.
	Path string `json:"path"`
	// Level is the distance in directory hops from the starting directory;
	// 0 is nearest and takes the highest precedence.
	Level int `json:"level"`
}

// Result is the outcome of one hierarchical load. It is built once per
// invocation and never raises: a partial hierarchy is still useful.
type Result struct {
	// Config is the merged configuration document.
	Config map[string]any `json:"config"`
	// DiscoveredDirs lists every configuration directory found, nearest
	// first, including levels that contributed no document.
	DiscoveredDirs []ConfigDir `json:"discoveredDirs"`
	// Errors collects non-fatal diagnostics gathered during the walk.
	Errors []string `json:"errors,omitempty"`
}

// Options configures one hierarchical load.
type Options struct {
	// FS is the filesystem to walk. Nil means the OS filesystem.
	FS afero.Fs
	// ConfigDirName is the subdirectory checked at every level. Empty
	// means DefaultConfigDirName.
	ConfigDirName string
	// ConfigFileName, when set, names the exact file loaded inside each
	// discovered directory.
	ConfigFileName string
	// Naming, when ConfigFileName is empty, discovers each directory's
	// file by filename patterns instead.
	Naming *naming.Options
	// StartingDir is where the walk begins.
	StartingDir string
	// MaxLevels caps the number of levels examined. Zero or negative
	// means DefaultMaxLevels.
	MaxLevels int
	// Parsers maps file extensions to parsers. Nil means parser.Default.
	Parsers parser.Registry
	// PathFields are dot-paths whose relative string values are resolved
	// against the directory their document was loaded from.
	PathFields []string
	// ResolvePathArrayFields are dot-paths of sequences resolved
	// element-wise the same way.
	ResolvePathArrayFields []string
	// FieldOverlaps selects the sequence overlap mode per field path.
	FieldOverlaps merge.OverlapModes
	// Boundary, when set, is consulted before each level is entered.
	Boundary *boundary.Boundary
	// StopAt lists directory basenames that halt the walk.
	StopAt []string
	// RootMarkers, with StopAtRoot, halts the walk after the project root.
	RootMarkers []rootmark.Marker
	// StopAtRoot halts the walk once a root marker matches.
	StopAtRoot bool
}

// Load discovers, loads, path-resolves and merges the configuration
// hierarchy above Options.StartingDir.
func Load(opts Options) Result {
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	parsers := opts.Parsers
	if parsers == nil {
		parsers = parser.Default()
	}
	dirName := opts.ConfigDirName
	if dirName == "" {
		dirName = DefaultConfigDirName
	}
	maxLevels := opts.MaxLevels
	if maxLevels <= 0 {
		maxLevels = DefaultMaxLevels
	}

	start, err := filepath.Abs(opts.StartingDir)
	if err != nil {
		start = filepath.Clean(opts.StartingDir)
	}

	result := Result{Config: map[string]any{}}

	// Discovery phase: walk ancestors nearest-first, recording levels that
	// hold a readable configuration subdirectory.
	walk := rootmark.WalkUp(fs, start, rootmark.WalkOptions{
		MaxDepth:    maxLevels,
		StopAt:      opts.StopAt,
		RootMarkers: opts.RootMarkers,
		StopAtRoot:  opts.StopAtRoot,
	})
	level := 0
	for dir, ok := walk.Next(); ok; dir, ok = walk.Next() {
		softStop := false
		if opts.Boundary != nil {
			v := opts.Boundary.Check(dir, start)
			if !v.Allowed {
				result.Errors = append(result.Errors,
					fmt.Sprintf("traversal stopped at %s: %s", dir, v.Reason))
				logging.Debug().Str("dir", dir).Str("reason", v.Reason).Msg("boundary refused traversal")
				break
			}
			softStop = v.SoftStop
		}

		cfgDir := filepath.Join(dir, dirName)
		if fsys.IsDirReadable(fs, cfgDir) {
			result.DiscoveredDirs = append(result.DiscoveredDirs, ConfigDir{Path: cfgDir, Level: level})
			logging.Debug().Str("dir", cfgDir).Int("level", level).Msg("discovered config dir")
		}

		if softStop {
			logging.Debug().Str("dir", dir).Msg("soft boundary reached, stopping walk")
			break
		}
		level++
	}

	// Load phase: farthest first, so the nearest level is merged last and
	// its values win.
	var docs []map[string]any
	for i := len(result.DiscoveredDirs) - 1; i >= 0; i-- {
		dir := result.DiscoveredDirs[i]
		doc, ok := loadDir(fs, dir, opts, parsers)
		if !ok {
			continue
		}
		doc = pathres.ResolvePaths(doc, dir.Path, opts.PathFields, opts.ResolvePathArrayFields)
		docs = append(docs, doc)
	}

	result.Config = merge.Merge(docs, opts.FieldOverlaps)
	return result
}

// loadDir reads and parses one directory's document. Every failure mode
// degrades to "no contribution from this level".
func loadDir(fs afero.Fs, dir ConfigDir, opts Options, parsers parser.Registry) (map[string]any, bool) {
	path := ""
	switch {
	case opts.ConfigFileName != "":
		path = filepath.Join(dir.Path, opts.ConfigFileName)
	case opts.Naming != nil:
		found := naming.Discover(fs, dir.Path, *opts.Naming)
		if found.MultipleWarning != "" {
			logging.Warn().Msg(found.MultipleWarning)
		}
		if found.Config == nil {
			logging.Debug().Str("dir", dir.Path).Msg("no config file at this level")
			return nil, false
		}
		path = found.Config.Path
	default:
		logging.Debug().Str("dir", dir.Path).Msg("no file name or naming patterns configured")
		return nil, false
	}

	if !fsys.IsFileReadable(fs, path) {
		logging.Debug().Str("file", path).Msg("config file missing or unreadable")
		return nil, false
	}

	parse, ok := parsers.ForFile(path)
	if !ok {
		logging.Debug().Str("file", path).Msg("no parser registered for extension")
		return nil, false
	}

	data, err := fsys.ReadFile(fs, path)
	if err != nil {
		logging.Debug().Str("file", path).Err(err).Msg("reading config file failed")
		return nil, false
	}

	v, err := parse(data)
	if err != nil {
		logging.Debug().Str("file", path).Err(err).Msg("parsing config file failed")
		return nil, false
	}

	doc, ok := v.(map[string]any)
	if !ok || doc == nil {
		logging.Debug().Str("file", path).Msg("config document is not a map, ignoring")
		return nil, false
	}
	return doc, true
}
