// Package confkit holds the small pieces shared by every config loader in the
// service: split-file sections, path resolution and .env bootstrapping.
package confkit

import (
	"os"
	"path/filepath"
)

// Section is a config block that lives in its own file. The main config only
// carries the File reference; Value is populated by Hydrate.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Loaded reports whether the section has been hydrated.
func (s *Section[T]) Loaded() bool { return s != nil && s.Value != nil }

// Hydrate resolves File against base and fills Value with the loader result.
// An empty File is left untouched so callers can fall back to defaults.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	path := ResolvePath(base, s.File)
	value, err := loader(path)
	if err != nil {
		return err
	}
	s.File = path
	s.Value = value
	return nil
}

// ResolvePath expands environment references in file and joins it onto base
// unless it is already absolute.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir returns the directory holding the main config file.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}
