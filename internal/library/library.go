// Package library resolves sound names against a single flat directory.
//
// The directory is the only source of truth: nothing is cached, every call
// reads the filesystem again.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when a name does not resolve to a regular file.
	ErrNotFound = errors.New("sound not found")
	// ErrEmpty is returned by First when the directory holds no sounds.
	ErrEmpty = errors.New("no sound files found")
	// ErrUnreadable is returned when the directory itself cannot be listed.
	ErrUnreadable = errors.New("unable to read sounds directory")
)

// Library is a read-only view over a sounds directory.
type Library struct {
	dir string
}

// New returns a Library rooted at dir. The directory is not checked until used.
func New(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the root directory.
func (l *Library) Dir() string {
	return l.dir
}

// List returns the names of the regular files in the directory, in the order
// the filesystem enumerates them. Symlinks count when their target is a
// regular file. The result is never nil.
func (l *Library) List() ([]string, error) {
	f, err := os.Open(l.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	// File.ReadDir keeps directory order; os.ReadDir would sort by name.
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if l.isRegular(e) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// First returns the first name List would return.
func (l *Library) First() (string, error) {
	names, err := l.List()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrEmpty
	}
	return names[0], nil
}

// Resolve maps a sound name to its path inside the directory. Names that are
// not a single path segment are reported as not found, so a caller can never
// reach outside the directory.
func (l *Library) Resolve(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	path := filepath.Join(l.dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return path, nil
}

// ValidName reports whether name is a single, non-special path segment.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	return filepath.Base(name) == name
}

func (l *Library) isRegular(e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(l.dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}
