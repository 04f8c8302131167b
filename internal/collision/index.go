package collision

import (
	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/internal/hash"
)

// Index maps normalized entry paths to positions in an entry table.
//
// Paths are keyed by their xxHash64. Distinct paths sharing a hash are kept in
// a per-hash bucket and told apart by string comparison, so lookups stay
// correct when collisions occur.
type Index struct {
	buckets      map[uint64][]slot
	count        int
	hasCollision bool
}

type slot struct {
	path string
	pos  int
}

// NewIndex creates an index with room for capacity paths.
func NewIndex(capacity int) *Index {
	return &Index{
		buckets: make(map[uint64][]slot, capacity),
	}
}

// Add records path at position pos.
// Returns errs.ErrDuplicateEntry if the normalized path was already added.
func (x *Index) Add(path string, pos int) error {
	norm := hash.NormalizePath(path)
	key := hash.ID(norm)

	bucket := x.buckets[key]
	for _, s := range bucket {
		if s.path == norm {
			return errs.ErrDuplicateEntry
		}
	}
	if len(bucket) > 0 {
		x.hasCollision = true
	}

	x.buckets[key] = append(bucket, slot{path: norm, pos: pos})
	x.count++

	return nil
}

// Lookup returns the position recorded for path.
func (x *Index) Lookup(path string) (int, bool) {
	norm := hash.NormalizePath(path)
	for _, s := range x.buckets[hash.ID(norm)] {
		if s.path == norm {
			return s.pos, true
		}
	}

	return 0, false
}

// HasCollision reports whether two distinct paths hashed to the same key.
func (x *Index) HasCollision() bool {
	return x.hasCollision
}

// Count returns the number of indexed paths.
func (x *Index) Count() int {
	return x.count
}

// Reset clears the index while keeping its allocated map.
func (x *Index) Reset() {
	clear(x.buckets)
	x.count = 0
	x.hasCollision = false
}
