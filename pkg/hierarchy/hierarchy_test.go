package hierarchy

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hierconf/hierconf/pkg/boundary"
	"github.com/hierconf/hierconf/pkg/merge"
	"github.com/hierconf/hierconf/pkg/naming"
	"github.com/hierconf/hierconf/pkg/rootmark"
)

func writeConfig(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestLoadMergesNearestWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/a/b/c/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/a/.hierconf", 0o755))
	writeConfig(t, fs, "/a/.hierconf/app.yaml", "name: root\nshared: from-root\n")
	writeConfig(t, fs, "/a/b/c/.hierconf/app.yaml", "name: leaf\n")

	r := Load(Options{
		FS:             fs,
		StartingDir:    "/a/b/c",
		ConfigFileName: "app.yaml",
	})

	assert.Equal(t, "leaf", r.Config["name"], "nearest level wins")
	assert.Equal(t, "from-root", r.Config["shared"], "values only set farther up survive")
	assert.Empty(t, r.Errors)

	require.Len(t, r.DiscoveredDirs, 2)
	assert.Equal(t, ConfigDir{Path: "/a/b/c/.hierconf", Level: 0}, r.DiscoveredDirs[0])
	assert.Equal(t, ConfigDir{Path: "/a/.hierconf", Level: 2}, r.DiscoveredDirs[1])
}

func TestLoadLevelsMonotonic(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, dir := range []string{"/x/.hierconf", "/x/y/.hierconf", "/x/y/z/.hierconf"} {
		require.NoError(t, fs.MkdirAll(dir, 0o755))
	}

	r := Load(Options{FS: fs, StartingDir: "/x/y/z", ConfigFileName: "app.yaml"})

	require.Len(t, r.DiscoveredDirs, 3)
	seen := map[string]bool{}
	for i, d := range r.DiscoveredDirs {
		assert.False(t, seen[d.Path], "no path repeats")
		seen[d.Path] = true
		if i > 0 {
			assert.Greater(t, d.Level, r.DiscoveredDirs[i-1].Level)
		}
	}
}

func TestLoadFieldOverlaps(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p/sub/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/p/.hierconf", 0o755))
	writeConfig(t, fs, "/p/.hierconf/app.yaml", "plugins:\n  - base\n")
	writeConfig(t, fs, "/p/sub/.hierconf/app.yaml", "plugins:\n  - local\n")

	r := Load(Options{
		FS:             fs,
		StartingDir:    "/p/sub",
		ConfigFileName: "app.yaml",
		FieldOverlaps:  merge.OverlapModes{"plugins": merge.ModeAppend},
	})

	assert.Equal(t, []any{"base", "local"}, r.Config["plugins"])
}

func TestLoadResolvesPathsPerLevel(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p/sub/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/p/.hierconf", 0o755))
	writeConfig(t, fs, "/p/.hierconf/app.yaml", "out: ./dist\n")
	writeConfig(t, fs, "/p/sub/.hierconf/app.yaml", "other: 1\n")

	r := Load(Options{
		FS:             fs,
		StartingDir:    "/p/sub",
		ConfigFileName: "app.yaml",
		PathFields:     []string{"out"},
	})

	// Resolved against the directory the value was loaded from, not the
	// starting directory.
	assert.Equal(t, "/p/.hierconf/dist", r.Config["out"])
}

func TestLoadSkipsBrokenLevels(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p/sub/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/p/.hierconf", 0o755))
	writeConfig(t, fs, "/p/.hierconf/app.yaml", "a: 1\n")
	writeConfig(t, fs, "/p/sub/.hierconf/app.yaml", "a: [1,\n")

	r := Load(Options{FS: fs, StartingDir: "/p/sub", ConfigFileName: "app.yaml"})

	assert.Equal(t, 1, r.Config["a"], "broken level contributes nothing but the rest survives")
	assert.Len(t, r.DiscoveredDirs, 2, "the broken level is still listed")
}

func TestLoadSkipsNonMapDocuments(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p/.hierconf", 0o755))
	writeConfig(t, fs, "/p/.hierconf/app.yaml", "- just\n- a\n- list\n")

	r := Load(Options{FS: fs, StartingDir: "/p", ConfigFileName: "app.yaml"})
	assert.Empty(t, r.Config)
}

func TestLoadMissingFileIsNoContribution(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p/.hierconf", 0o755))

	r := Load(Options{FS: fs, StartingDir: "/p", ConfigFileName: "app.yaml"})

	assert.Empty(t, r.Config)
	assert.Len(t, r.DiscoveredDirs, 1)
	assert.Empty(t, r.Errors)
}

func TestLoadWithNamingPatterns(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p/.hierconf", 0o755))
	writeConfig(t, fs, "/p/.hierconf/myapp.config.json", `{"from": "json"}`)

	r := Load(Options{
		FS:          fs,
		StartingDir: "/p",
		Naming: &naming.Options{
			AppName:    "myapp",
			Extensions: []string{"yaml", "json"},
		},
	})

	assert.Equal(t, "json", r.Config["from"])
}

func TestLoadMixedFormats(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p/sub/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/p/.hierconf", 0o755))
	writeConfig(t, fs, "/p/.hierconf/myapp.toml", "a = \"toml\"\nb = \"kept\"\n")
	writeConfig(t, fs, "/p/sub/.hierconf/myapp.config.yaml", "a: yaml\n")

	r := Load(Options{
		FS:          fs,
		StartingDir: "/p/sub",
		Naming: &naming.Options{
			AppName:    "myapp",
			Extensions: []string{"yaml", "toml"},
		},
	})

	assert.Equal(t, "yaml", r.Config["a"])
	assert.Equal(t, "kept", r.Config["b"])
}

func TestLoadBoundaryRefusalRecorded(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/a/b/c/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/a/.hierconf", 0o755))
	writeConfig(t, fs, "/a/b/c/.hierconf/app.yaml", "near: 1\n")
	writeConfig(t, fs, "/a/.hierconf/app.yaml", "far: 1\n")

	b := boundary.New(boundary.Config{
		MaxRelativeDepth: 1,
		Env:              boundary.Env{Home: "/home/dev", User: "dev", TmpDir: "/tmp"},
	})

	r := Load(Options{
		FS:             fs,
		StartingDir:    "/a/b/c",
		ConfigFileName: "app.yaml",
		Boundary:       b,
	})

	assert.Equal(t, 1, r.Config["near"])
	assert.NotContains(t, r.Config, "far", "level beyond the boundary is never loaded")
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "traversal stopped")
}

func TestLoadSoftBoundaryProcessesStopLevel(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/dev/proj/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/home/dev/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/home/.hierconf", 0o755))
	writeConfig(t, fs, "/home/dev/proj/.hierconf/app.yaml", "a: proj\n")
	writeConfig(t, fs, "/home/dev/.hierconf/app.yaml", "b: home\n")
	writeConfig(t, fs, "/home/.hierconf/app.yaml", "c: beyond\n")

	b := boundary.New(boundary.Config{
		SoftBoundaries: []string{"$HOME"},
		Env:            boundary.Env{Home: "/home/dev", User: "dev", TmpDir: "/tmp"},
	})

	r := Load(Options{
		FS:             fs,
		StartingDir:    "/home/dev/proj",
		ConfigFileName: "app.yaml",
		Boundary:       b,
	})

	assert.Equal(t, "proj", r.Config["a"])
	assert.Equal(t, "home", r.Config["b"], "the soft-stop level itself is processed")
	assert.NotContains(t, r.Config, "c", "nothing beyond the soft boundary is visited")
	assert.Empty(t, r.Errors)
}

func TestLoadStopAtRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/w/repo/pkg/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/w/repo/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/w/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/w/repo/.git", 0o755))
	writeConfig(t, fs, "/w/repo/pkg/.hierconf/app.yaml", "a: pkg\n")
	writeConfig(t, fs, "/w/repo/.hierconf/app.yaml", "b: repo\n")
	writeConfig(t, fs, "/w/.hierconf/app.yaml", "c: outside\n")

	r := Load(Options{
		FS:             fs,
		StartingDir:    "/w/repo/pkg",
		ConfigFileName: "app.yaml",
		RootMarkers:    []rootmark.Marker{{Kind: rootmark.MarkerDir, Name: ".git"}},
		StopAtRoot:     true,
	})

	assert.Equal(t, "pkg", r.Config["a"])
	assert.Equal(t, "repo", r.Config["b"], "the root level itself contributes")
	assert.NotContains(t, r.Config, "c", "nothing above the project root is loaded")
}

func TestLoadMaxLevels(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/1/2/3/.hierconf", 0o755))
	require.NoError(t, fs.MkdirAll("/1/.hierconf", 0o755))

	r := Load(Options{
		FS:             fs,
		StartingDir:    "/1/2/3",
		ConfigFileName: "app.yaml",
		MaxLevels:      2,
	})

	require.Len(t, r.DiscoveredDirs, 1)
	assert.Equal(t, "/1/2/3/.hierconf", r.DiscoveredDirs[0].Path)
}
