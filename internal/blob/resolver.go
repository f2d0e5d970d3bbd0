package blob

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
)

// ResolveName returns a basename guaranteed not to collide with any existing
// entry in the given collection directory (empty dir means the root),
// preferring the desired name. Collisions get a numeric suffix before the
// extension: name.ext, name_1.ext, name_2.ext, ...
//
// The sequential search costs one existence check per collision. That is fine
// for the small collision counts uploads produce in practice; it is a known
// scaling limit, not something to redesign.
func (s *Store) ResolveName(dir, desired string) string {
	target := s.root
	if dir != "" {
		target = filepath.Join(s.root, dir)
	}

	candidate := desired
	ext := path.Ext(desired)
	stem := strings.TrimSuffix(desired, ext)

	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(target, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, counter, ext)
	}
}

// ValidateRelPath rejects caller-supplied paths that would escape the blob
// root: any value whose normalized form starts with a parent-directory
// segment fails with an InvalidName error.
func ValidateRelPath(p string) error {
	if p == "" {
		return apperrors.New(apperrors.ErrInvalidName, "path is empty")
	}

	normalized := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if normalized == ".." || strings.HasPrefix(normalized, "../") || path.IsAbs(normalized) {
		return apperrors.Newf(apperrors.ErrInvalidName, "path %q escapes the storage root", p)
	}
	return nil
}

// ValidateCollectionName rejects collection names that are empty, traverse
// upward, or contain any path separator.
func ValidateCollectionName(name string) error {
	if name == "" {
		return apperrors.New(apperrors.ErrInvalidName, "collection name is empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return apperrors.Newf(apperrors.ErrInvalidName, "collection name %q contains a path separator", name)
	}
	// With separators excluded only the dot names can still traverse.
	if name == "." || name == ".." {
		return apperrors.Newf(apperrors.ErrInvalidName, "collection name %q is not allowed", name)
	}
	return nil
}
