package hash

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// NormalizeSeparators replaces backslashes with forward slashes.
func NormalizeSeparators(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// NormalizePath folds a container or archive path into its lookup form:
// backslashes become forward slashes, letters are lowercased and a leading
// "./" or "/" is dropped.
func NormalizePath(path string) string {
	p := strings.ToLower(NormalizeSeparators(path))
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimLeft(p, "/")

	return p
}

// PathKey returns the hash of the normalized form of path.
func PathKey(path string) uint64 {
	return ID(NormalizePath(path))
}
