package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testEnv = Env{Home: "/home/dev", User: "dev", TmpDir: "/tmp"}

func defaultForTest() *Boundary {
	cfg := DefaultConfig()
	cfg.Env = testEnv
	return New(cfg)
}

func TestCheckForbiddenSystemPaths(t *testing.T) {
	b := defaultForTest()

	tests := []struct {
		path    string
		allowed bool
	}{
		{"/etc/passwd", false},
		{"/etc", false},
		{"/proc/1/cmdline", false},
		{"/sys/kernel", false},
		{"/dev/null", false},
		{"/boot/grub", false},
		{"/home/dev/projects/app", true},
		{"/srv/data", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v := b.Check(tt.path, "")
			assert.Equal(t, tt.allowed, v.Allowed, "reason: %s", v.Reason)
			if !tt.allowed {
				assert.NotEmpty(t, v.Reason)
			}
		})
	}
}

func TestHomeDirectoryEntriesAreFiltered(t *testing.T) {
	// A user whose home is /root must not be locked out of it even though
	// /root/** is forbidden by default.
	cfg := DefaultConfig()
	cfg.Env = Env{Home: "/root", User: "root", TmpDir: "/tmp"}
	b := New(cfg)

	v := b.Check("/root/work/project", "")
	assert.True(t, v.Allowed, "reason: %s", v.Reason)

	// Other system paths stay forbidden.
	assert.False(t, b.Check("/etc/hosts", "").Allowed)
}

func TestPlaceholderExpansion(t *testing.T) {
	b := New(Config{
		Forbidden: []string{"$TMPDIR/secrets"},
		Env:       testEnv,
	})

	assert.False(t, b.Check("/tmp/secrets/key", "").Allowed)
	assert.True(t, b.Check("/tmp/other", "").Allowed)
}

func TestCheckExpandsCandidatePlaceholders(t *testing.T) {
	b := New(Config{
		Forbidden: []string{"$TMPDIR/secrets"},
		Env:       testEnv,
	})

	// Placeholders in the checked path expand against the same captured
	// environment as the boundary patterns.
	assert.False(t, b.Check("$TMPDIR/secrets/key", "").Allowed)
	assert.True(t, b.Check("$HOME/project", "").Allowed)

	// The start path expands too, so the relative-depth rule applies.
	rel := New(Config{MaxRelativeDepth: 1, Env: testEnv})
	v := rel.Check("/home", "$HOME/project")
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "levels above start")
}

func TestSoftBoundaryStopsWithoutRefusing(t *testing.T) {
	b := defaultForTest()

	v := b.Check("/home/dev", "/home/dev/projects/app")
	assert.True(t, v.Allowed)
	assert.True(t, v.SoftStop)
	assert.NotEmpty(t, v.Violated)

	// Below home: no stop.
	v = b.Check("/home/dev/projects", "/home/dev/projects/app")
	assert.True(t, v.Allowed)
	assert.False(t, v.SoftStop)
}

func TestAbsoluteDepthLimit(t *testing.T) {
	b := New(Config{MaxAbsoluteDepth: 3, Env: testEnv})

	assert.True(t, b.Check("/a/b/c", "").Allowed)
	v := b.Check("/a/b/c/d", "")
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "absolute limit")
}

func TestRelativeDepthLimit(t *testing.T) {
	b := New(Config{MaxRelativeDepth: 2, Env: testEnv})

	start := "/a/b/c/d/e"
	assert.True(t, b.Check("/a/b/c", start).Allowed)

	v := b.Check("/a/b", start)
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "levels above start")

	// The relative rule only applies to ancestors of the start path.
	assert.True(t, b.Check("/x", "").Allowed)
}

func TestAllowUnsafeBypassesEverything(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Env = testEnv
	cfg.AllowUnsafe = true
	b := New(cfg)

	assert.True(t, b.Check("/etc/passwd", "").Allowed)
	assert.True(t, b.Check("/proc/self", "").Allowed)
}

func TestDepth(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/", 0},
		{"/a", 1},
		{"/a/b/c", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, depth(tt.path), tt.path)
	}
}

func TestGlobEntryCoversItsBase(t *testing.T) {
	b := New(Config{Forbidden: []string{"/etc/**"}, Env: testEnv})

	assert.False(t, b.Check("/etc", "").Allowed)
	assert.False(t, b.Check("/etc/ssl/certs", "").Allowed)
	assert.True(t, b.Check("/etcetera", "").Allowed)
}
