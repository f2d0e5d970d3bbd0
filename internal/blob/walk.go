package blob

import (
	"fmt"
	"os"
	"path/filepath"
)

// Entry is a regular file found during a walk, keyed by its owning
// collection (empty for root-level files) and basename.
type Entry struct {
	Collection string
	Name       string
	Size       int64
}

// RelPath returns the store-relative forward-slash path of the entry
func (e Entry) RelPath() string {
	if e.Collection == "" {
		return e.Name
	}
	return e.Collection + "/" + e.Name
}

// Snapshot is the result of a one-level walk of the store
type Snapshot struct {
	Collections []string
	Files       []Entry
	// Skipped lists entries whose metadata could not be read; they are
	// excluded from Files rather than failing the whole walk.
	Skipped []string
}

// Walk scans the blob root one level deep: every subdirectory is a
// collection, every regular file at the root or directly inside a
// subdirectory is an entry. Per-file stat failures are accumulated in
// Snapshot.Skipped and never abort the scan.
func (s *Store) Walk() (*Snapshot, error) {
	top, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob root: %w", err)
	}

	snap := &Snapshot{}

	for _, de := range top {
		if de.IsDir() {
			snap.Collections = append(snap.Collections, de.Name())
			s.walkCollection(de.Name(), snap)
			continue
		}
		s.appendEntry("", de, snap)
	}

	return snap, nil
}

func (s *Store) walkCollection(name string, snap *Snapshot) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if err != nil {
		snap.Skipped = append(snap.Skipped, name)
		return
	}

	for _, de := range entries {
		if de.IsDir() {
			// Nested directories are outside the one-level layout.
			continue
		}
		s.appendEntry(name, de, snap)
	}
}

func (s *Store) appendEntry(collection string, de os.DirEntry, snap *Snapshot) {
	info, err := de.Info()
	if err != nil || !info.Mode().IsRegular() {
		if err != nil {
			rel := de.Name()
			if collection != "" {
				rel = collection + "/" + rel
			}
			snap.Skipped = append(snap.Skipped, rel)
		}
		return
	}

	snap.Files = append(snap.Files, Entry{
		Collection: collection,
		Name:       de.Name(),
		Size:       info.Size(),
	})
}
