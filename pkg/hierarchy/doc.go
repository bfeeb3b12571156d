// Package hierarchy discovers configuration directories along a directory
// tree's ancestry and folds their documents into one effective
// configuration.
//
// # Discovery
//
// Load walks upward from a starting directory, one ancestor per level,
// recording every level whose configuration subdirectory (ConfigDirName)
// exists and is readable. Level 0 is the starting directory; levels
// increase toward the filesystem root. The walk is bounded by MaxLevels, a
// visited set of normalized paths (symlink-loop defense), optional stop-at
// basenames and root markers, and an optional traversal boundary that keeps
// the walk out of sensitive system locations.
//
// # Loading and merging
//
// Each discovered directory contributes at most one document: either the
// file named by ConfigFileName, or the highest-priority match of the naming
// patterns in Naming. Documents are parsed by the extension-keyed parser
// registry, have their declared path fields resolved against their own
// directory, and are then merged farthest-first so nearer directories win.
//
// A missing file, an unreadable file, or a document that fails to parse is
// "no contribution from this level", logged at debug. A broken ancestor
// never aborts the walk: Load prefers a best-effort degraded result, and
// collects the reasons in Result.Errors.
package hierarchy
