// Package safepath resolves user-supplied filenames to paths guaranteed to
// stay inside a designated root directory.
package safepath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyName    = errors.New("no filename supplied")
	ErrNotContained = errors.New("path escapes root")
	ErrNotFound     = errors.New("file not found")
)

// Resolve maps name to an absolute path under root. Directory components are
// stripped first (basename semantics), then the joined path is canonicalized
// and checked for prefix containment in root. The file does not have to
// exist.
func Resolve(root, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	rootAbs = filepath.Clean(rootAbs)

	base := filepath.Base(filepath.FromSlash(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", ErrNotContained
	}

	joined := filepath.Clean(filepath.Join(rootAbs, base))
	if !contained(rootAbs, joined) {
		return "", ErrNotContained
	}
	return joined, nil
}

// ResolveExisting resolves name under root and requires the file to exist.
// When withSuffixFallback is set and no exact match exists, the root is
// scanned for an entry whose name ends with the requested basename; capture
// clients may prefix stored names with a device identifier, so the database
// name can be a suffix of the on-disk name.
func ResolveExisting(root, name string, withSuffixFallback bool) (string, error) {
	resolved, err := Resolve(root, name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(resolved); err == nil {
		return resolved, nil
	}
	if !withSuffixFallback {
		return "", ErrNotFound
	}

	base := filepath.Base(resolved)
	entries, err := os.ReadDir(filepath.Dir(resolved))
	if err != nil {
		return "", ErrNotFound
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), base) {
			return filepath.Join(filepath.Dir(resolved), entry.Name()), nil
		}
	}
	return "", ErrNotFound
}

func contained(root, candidate string) bool {
	if root == candidate {
		return true
	}
	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(candidate, root)
}
