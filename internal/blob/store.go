// Package blob implements the filesystem tree backing the catalog: one level
// of subdirectories for collections, flat files at the root for uncategorized
// entries. The directory tree is the source of truth for existence; the
// relational catalog is a derived index over it.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store is a filesystem tree rooted at a configured directory
type Store struct {
	root string
}

// New creates a store rooted at root, creating the directory if needed
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the absolute root directory of the store
func (s *Store) Root() string {
	return s.root
}

// Abs resolves a store-relative forward-slash path against the root
func (s *Store) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// DirExists reports whether a collection directory with the given name exists
func (s *Store) DirExists(name string) bool {
	info, err := os.Stat(filepath.Join(s.root, name))
	return err == nil && info.IsDir()
}

// FileExists reports whether a regular file exists at the given relative path
func (s *Store) FileExists(rel string) bool {
	info, err := os.Stat(s.Abs(rel))
	return err == nil && info.Mode().IsRegular()
}

// FileSize returns the on-disk size of the file at the given relative path
func (s *Store) FileSize(rel string) (int64, error) {
	info, err := os.Stat(s.Abs(rel))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// MakeDir creates a collection directory; it fails if the directory exists
func (s *Store) MakeDir(name string) error {
	return os.Mkdir(filepath.Join(s.root, name), 0755)
}

// MakeDirAll creates a collection directory, succeeding if it already exists
func (s *Store) MakeDirAll(name string) error {
	return os.MkdirAll(filepath.Join(s.root, name), 0755)
}

// RemoveDir recursively removes a collection directory and its contents
func (s *Store) RemoveDir(name string) error {
	return os.RemoveAll(filepath.Join(s.root, name))
}

// RenameDir renames a collection directory
func (s *Store) RenameDir(oldName, newName string) error {
	return os.Rename(filepath.Join(s.root, oldName), filepath.Join(s.root, newName))
}

// WriteFile streams r into the file at the given relative path and returns
// the number of bytes written. The parent directory must already exist.
func (s *Store) WriteFile(rel string, r io.Reader) (int64, error) {
	f, err := os.Create(s.Abs(rel))
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(s.Abs(rel))
		return 0, err
	}
	return n, nil
}

// RemoveFile removes the file at the given relative path
func (s *Store) RemoveFile(rel string) error {
	return os.Remove(s.Abs(rel))
}
