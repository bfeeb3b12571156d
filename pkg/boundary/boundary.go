// Package boundary decides whether an upward directory traversal may visit a
// given path. A Boundary is built once per traversal session: placeholder
// tokens ($HOME, $USER, $TMPDIR) in its patterns are expanded against the
// environment at construction time, so Check stays a pure function of the
// boundary value and its arguments.
package boundary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hierconf/hierconf/internal/logging"
)

// Env holds the environment values used for placeholder expansion. The zero
// value means "read from the process environment".
type Env struct {
	Home   string
	User   string
	TmpDir string
}

// Config describes a traversal boundary before expansion.
type Config struct {
	// Forbidden paths or doublestar glob patterns. A candidate equal to,
	// under, or matched by an entry is refused.
	Forbidden []string
	// SoftBoundaries are stop points: the candidate itself is allowed but
	// the walk should not continue past it.
	SoftBoundaries []string
	// MaxAbsoluteDepth caps the segment count from the filesystem root.
	// Zero means no cap.
	MaxAbsoluteDepth int
	// MaxRelativeDepth caps how many levels above the start path a
	// candidate may sit. Zero means no cap.
	MaxRelativeDepth int
	// AllowUnsafe disables all checks. Trusted and test contexts only.
	AllowUnsafe bool
	// Env overrides the process environment for placeholder expansion.
	Env Env
}

// Boundary is an immutable, expanded traversal boundary.
type Boundary struct {
	forbidden   []string
	soft        []string
	maxAbs      int
	maxRel      int
	allowUnsafe bool
	env         Env
	warnOnce    sync.Once
}

// Verdict is the outcome of a boundary check.
type Verdict struct {
	// Allowed reports whether traversal to the path is permitted.
	Allowed bool
	// Reason explains a refusal or a soft stop.
	Reason string
	// Violated names the boundary entry that matched, if any.
	Violated string
	// SoftStop is set when the path is allowed but the walk should not
	// continue past it.
	SoftStop bool
}

// DefaultConfig returns the boundary applied when callers supply none:
// system locations are forbidden, the home directory and the temp directory
// are soft stop points, and generous depth caps guard against runaway trees.
func DefaultConfig() Config {
	return Config{
		Forbidden: []string{
			"/etc/**",
			"/proc/**",
			"/sys/**",
			"/dev/**",
			"/boot/**",
			"/root/**",
		},
		SoftBoundaries:   []string{"$HOME", "$TMPDIR"},
		MaxAbsoluteDepth: 64,
		MaxRelativeDepth: 32,
	}
}

// Default builds the default boundary against the current environment.
func Default() *Boundary {
	return New(DefaultConfig())
}

// New expands and normalizes cfg into a Boundary. Forbidden entries that
// resolve to the current user's home directory (or an ancestor of it) are
// dropped, so a user working from inside a normally forbidden location such
// as /root is never locked out of their own tree.
func New(cfg Config) *Boundary {
	env := cfg.Env
	if env == (Env{}) {
		env = systemEnv()
	}

	b := &Boundary{
		maxAbs:      cfg.MaxAbsoluteDepth,
		maxRel:      cfg.MaxRelativeDepth,
		allowUnsafe: cfg.AllowUnsafe,
		env:         env,
	}

	home := normalize(env.Home)
	for _, raw := range cfg.Forbidden {
		entry := normalize(expand(raw, env))
		if home != "" && (home == patternBase(entry) || isUnder(home, patternBase(entry))) {
			logging.Debug().Str("entry", raw).Msg("dropping forbidden entry covering home directory")
			continue
		}
		b.forbidden = append(b.forbidden, entry)
	}
	for _, raw := range cfg.SoftBoundaries {
		b.soft = append(b.soft, normalize(expand(raw, env)))
	}
	return b
}

// Check decides whether traversal to path is permitted. Placeholder tokens
// in path are expanded against the environment captured at construction, so
// the candidate and the boundary patterns compare in the same textual form.
// startPath, when non-empty, enables the relative-depth rule for candidates
// that are ancestors of it.
func (b *Boundary) Check(path, startPath string) Verdict {
	if b.allowUnsafe {
		b.warnOnce.Do(func() {
			logging.Warn().Msg("unsafe traversal enabled: boundary checks skipped")
		})
		return Verdict{Allowed: true}
	}

	candidate := normalize(expand(path, b.env))

	if b.maxAbs > 0 && depth(candidate) > b.maxAbs {
		return Verdict{
			Allowed: false,
			Reason:  fmt.Sprintf("path depth %d exceeds absolute limit %d", depth(candidate), b.maxAbs),
		}
	}

	if startPath != "" {
		start := normalize(expand(startPath, b.env))
		if candidate == start || isUnder(start, candidate) {
			if rel := depth(start) - depth(candidate); b.maxRel > 0 && rel > b.maxRel {
				return Verdict{
					Allowed: false,
					Reason:  fmt.Sprintf("path is %d levels above start, limit is %d", rel, b.maxRel),
				}
			}
		}
	}

	for _, entry := range b.forbidden {
		if matches(entry, candidate) {
			return Verdict{
				Allowed:  false,
				Reason:   fmt.Sprintf("path is inside forbidden location %s", entry),
				Violated: entry,
			}
		}
	}

	for _, entry := range b.soft {
		if matchesStop(entry, candidate) {
			return Verdict{
				Allowed:  true,
				Reason:   fmt.Sprintf("path reached boundary %s", entry),
				Violated: entry,
				SoftStop: true,
			}
		}
	}

	return Verdict{Allowed: true}
}

func systemEnv() Env {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return Env{
		Home:   home,
		User:   os.Getenv("USER"),
		TmpDir: os.TempDir(),
	}
}

// expand replaces the supported placeholder tokens in a pattern.
func expand(s string, env Env) string {
	r := strings.NewReplacer(
		"$HOME", env.Home,
		"$USER", env.User,
		"$TMPDIR", env.TmpDir,
	)
	return r.Replace(s)
}

// normalize produces a cleaned, slash-separated absolute form for
// comparison. Relative input is resolved against the working directory.
func normalize(path string) string {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// patternBase returns the static prefix of a glob pattern: everything before
// the first metacharacter, cleaned. A literal path is its own base.
func patternBase(pattern string) string {
	if i := strings.IndexAny(pattern, "*?[{"); i >= 0 {
		pattern = pattern[:i]
	}
	return strings.TrimSuffix(pattern, "/")
}

// matches reports whether candidate equals entry, sits under it, or is
// matched by it as a doublestar glob.
func matches(entry, candidate string) bool {
	if entry == "" {
		return false
	}
	if strings.ContainsAny(entry, "*?[{") {
		ok, err := doublestar.Match(entry, candidate)
		if err != nil {
			logging.Debug().Str("pattern", entry).Err(err).Msg("invalid boundary pattern")
			return false
		}
		if ok {
			return true
		}
		// "/etc/**" should also cover /etc itself.
		return candidate == patternBase(entry)
	}
	return candidate == entry || isUnder(candidate, entry)
}

// matchesStop reports whether candidate is at a soft stop point. Unlike
// forbidden entries, a soft boundary only triggers when the walk reaches the
// boundary path itself; its descendants are inside it and unaffected.
func matchesStop(entry, candidate string) bool {
	if entry == "" {
		return false
	}
	if strings.ContainsAny(entry, "*?[{") {
		ok, err := doublestar.Match(entry, candidate)
		return err == nil && ok
	}
	return candidate == entry
}

// isUnder reports whether path is a strict descendant of ancestor.
func isUnder(path, ancestor string) bool {
	if ancestor == "" || ancestor == "/" {
		return ancestor == "/" && path != "/"
	}
	return strings.HasPrefix(path, ancestor+"/")
}

// depth counts the path segments from the filesystem root.
func depth(path string) int {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "/") + 1
}
