package node

import (
	"errors"
	"fmt"
	"iter"

	"github.com/arloliu/gbx/errs"
)

type chunkEntry struct {
	chunk    Chunk
	raw      []byte
	trailing []byte
	heavy    bool
}

// ChunkSet is an ordered collection of chunks with unique IDs.
//
// Iteration order is insertion order, which is also the write order. The zero
// value is an empty set ready for use. A ChunkSet is not safe for concurrent
// use.
type ChunkSet struct {
	entries []chunkEntry
	index   map[uint32]int
}

// Len returns the number of chunks.
func (s *ChunkSet) Len() int {
	return len(s.entries)
}

// Add appends c. Returns errs.ErrDuplicateChunk if its ID is present.
func (s *ChunkSet) Add(c Chunk) error {
	return s.AddRaw(c, nil, false)
}

// AddRaw appends c together with the raw bytes it was decoded from and its
// heavy flag as read from the user-data table.
func (s *ChunkSet) AddRaw(c Chunk, raw []byte, heavy bool) error {
	id := c.ID()
	if _, ok := s.index[id]; ok {
		return fmt.Errorf("%w: 0x%08X", errs.ErrDuplicateChunk, id)
	}
	if s.index == nil {
		s.index = make(map[uint32]int)
	}
	s.index[id] = len(s.entries)
	s.entries = append(s.entries, chunkEntry{chunk: c, raw: raw, heavy: heavy})

	return nil
}

// Get returns the chunk with the given ID.
func (s *ChunkSet) Get(id uint32) (Chunk, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}

	return s.entries[i].chunk, true
}

// Has reports whether id is present.
func (s *ChunkSet) Has(id uint32) bool {
	_, ok := s.index[id]
	return ok
}

// Raw returns the bytes the chunk was decoded from, if recorded.
func (s *ChunkSet) Raw(id uint32) []byte {
	i, ok := s.index[id]
	if !ok {
		return nil
	}

	return s.entries[i].raw
}

// IsHeavy reports whether the chunk was flagged heavy when read.
func (s *ChunkSet) IsHeavy(id uint32) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}

	return s.entries[i].heavy
}

// SetTrailing records bytes left unread after decoding the chunk. They are
// appended after the chunk when it is written again.
func (s *ChunkSet) SetTrailing(id uint32, b []byte) {
	if i, ok := s.index[id]; ok {
		s.entries[i].trailing = b
	}
}

// Trailing returns the bytes recorded with SetTrailing.
func (s *ChunkSet) Trailing(id uint32) []byte {
	i, ok := s.index[id]
	if !ok {
		return nil
	}

	return s.entries[i].trailing
}

// Replace swaps the chunk stored under c.ID() keeping its position, or
// appends c if absent.
func (s *ChunkSet) Replace(c Chunk) {
	if i, ok := s.index[c.ID()]; ok {
		s.entries[i].chunk = c
		return
	}
	_ = s.Add(c)
}

// ReplaceRaw is Replace for a chunk read from the user-data table. The new
// raw bytes and heavy flag replace the old ones and recorded trailing bytes
// are dropped.
func (s *ChunkSet) ReplaceRaw(c Chunk, raw []byte, heavy bool) {
	if i, ok := s.index[c.ID()]; ok {
		s.entries[i] = chunkEntry{chunk: c, raw: raw, heavy: heavy}
		return
	}
	_ = s.AddRaw(c, raw, heavy)
}

// Remove deletes the chunk with the given ID.
func (s *ChunkSet) Remove(id uint32) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.entries); j++ {
		s.index[s.entries[j].chunk.ID()] = j
	}

	return true
}

// All iterates chunks in write order.
func (s *ChunkSet) All() iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		for _, e := range s.entries {
			if !yield(e.chunk) {
				return
			}
		}
	}
}

// IDs returns the chunk IDs in write order.
func (s *ChunkSet) IDs() []uint32 {
	ids := make([]uint32, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.chunk.ID()
	}

	return ids
}

// Discover decodes the chunk with the given ID if it is a deferred skippable
// chunk and returns the typed chunk. Other chunks are returned as stored.
func (s *ChunkSet) Discover(id uint32) (Chunk, error) {
	c, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%08X not in set", errs.ErrUnknownChunk, id)
	}

	sc, ok := c.(*SkippableChunk)
	if !ok {
		return c, nil
	}
	if err := sc.Discover(); err != nil {
		return nil, err
	}

	return sc.Decoded(), nil
}

// DiscoverAll decodes every deferred skippable chunk. Chunks that fail stay
// raw; the failures are joined into the returned error.
func (s *ChunkSet) DiscoverAll() error {
	var errList []error
	for _, e := range s.entries {
		if sc, ok := e.chunk.(*SkippableChunk); ok {
			if err := sc.Discover(); err != nil {
				errList = append(errList, err)
			}
		}
	}

	return errors.Join(errList...)
}

// Find returns the first chunk of type T, looking through decoded
// skippable chunks. It never triggers discovery.
func Find[T Chunk](s *ChunkSet) (T, bool) {
	for _, e := range s.entries {
		c := e.chunk
		if sc, ok := c.(*SkippableChunk); ok && sc.State() == StateDecoded {
			c = sc.Decoded()
		}
		if t, ok := c.(T); ok {
			return t, true
		}
	}

	var zero T

	return zero, false
}
