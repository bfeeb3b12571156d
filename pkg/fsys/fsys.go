// Package fsys wraps an injectable afero filesystem with the small set of
// fallible probes the traversal core needs. Every helper swallows I/O errors
// into a negative answer; callers that need the underlying error use ReadFile.
package fsys

import (
	"errors"
	"io"

	"github.com/spf13/afero"
)

// Exists reports whether path exists on fs, regardless of its kind.
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path exists and is a directory.
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.IsDir()
}

// IsDirReadable reports whether path is a directory whose entries can be
// listed. A stat that succeeds but a listing that fails (permissions) counts
// as unreadable.
func IsDirReadable(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := fs.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	// Readdirnames returns io.EOF for an empty directory, which still
	// counts as readable.
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return true
}

// IsFileReadable reports whether path is a regular file that can be opened
// for reading.
func IsFileReadable(fs afero.Fs, path string) bool {
	if !IsRegularFile(fs, path) {
		return false
	}
	f, err := fs.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// ReadFile reads the whole file at path.
func ReadFile(fs afero.Fs, path string) ([]byte, error) {
	return afero.ReadFile(fs, path)
}
