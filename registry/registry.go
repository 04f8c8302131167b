// Package registry maps class and chunk identifiers to names, parent links,
// historical remaps and the factories that decode them.
//
// A Registry is assembled with a Builder and frozen once. A frozen Registry
// is immutable and safe for concurrent use; all of its lookups are pure.
//
//	b := registry.NewBuilder()
//	if err := b.LoadYAML(bytes.NewReader(registry.ClassTable())); err != nil { ... }
//	_ = b.RegisterChunk(registry.ChunkInfo{ID: 0x09047002, New: newChunk})
//	reg, err := b.Freeze()
//
// Unknown IDs are a normal outcome: lookups report absence, Remap returns its
// input unchanged.
package registry

import (
	"github.com/arloliu/gbx/node"
)

// ChunkFactory creates an empty chunk ready to be decoded.
type ChunkFactory func() node.Chunk

// NodeFactory creates an empty node of a registered class.
type NodeFactory func() node.Node

// ChunkInfo describes a registered body or header chunk.
type ChunkInfo struct {
	// ID is the full chunk ID in its current (remapped) form.
	ID  uint32
	New ChunkFactory
	// Skippable chunks are framed with a "PIKS" marker and a length prefix.
	Skippable bool
	// Heavy chunks have the top bit of their user-data size set.
	Heavy bool
	// Versioned chunks start with an inline format version.
	Versioned bool
}

// Class is a registered class descriptor.
type Class struct {
	ID     uint32
	Name   string
	Parent uint32
}

// Registry is a frozen set of class and chunk descriptors.
type Registry struct {
	classes map[uint32]Class
	remaps  map[uint32]uint32
	nodes   map[uint32]NodeFactory
	chunks  map[uint32]ChunkInfo
	headers map[uint32]ChunkInfo
}

// Empty returns a frozen registry without registrations. Every class parsed
// with it decodes into opaque chunks.
func Empty() *Registry {
	return &Registry{
		classes: map[uint32]Class{},
		remaps:  map[uint32]uint32{},
		nodes:   map[uint32]NodeFactory{},
		chunks:  map[uint32]ChunkInfo{},
		headers: map[uint32]ChunkInfo{},
	}
}

// Remap returns the current ID for a class ID, or id itself when no remap is
// registered. Remap is idempotent.
func (r *Registry) Remap(id uint32) uint32 {
	if to, ok := r.remaps[id]; ok {
		return to
	}

	return id
}

// RemapChunk remaps the class part of chunkID and keeps its chunk index.
func (r *Registry) RemapChunk(chunkID uint32) uint32 {
	return r.Remap(node.ClassOf(chunkID)) | node.ChunkIndex(chunkID)
}

// ClassName returns the name of a class ID, accepting deprecated IDs.
func (r *Registry) ClassName(id uint32) (string, bool) {
	c, ok := r.classes[r.Remap(id)]
	if !ok {
		return "", false
	}

	return c.Name, true
}

// Class returns the full class descriptor.
func (r *Registry) Class(id uint32) (Class, bool) {
	c, ok := r.classes[r.Remap(id)]
	return c, ok
}

// Node returns the node factory of a class.
func (r *Registry) Node(classID uint32) (NodeFactory, bool) {
	f, ok := r.nodes[r.Remap(classID)]
	return f, ok
}

// Chunk returns the descriptor of a body chunk.
func (r *Registry) Chunk(chunkID uint32) (ChunkInfo, bool) {
	info, ok := r.chunks[r.RemapChunk(chunkID)]
	return info, ok
}

// HeaderChunk returns the descriptor of a user-data header chunk.
func (r *Registry) HeaderChunk(chunkID uint32) (ChunkInfo, bool) {
	info, ok := r.headers[r.RemapChunk(chunkID)]
	return info, ok
}

// IsA reports whether classID equals ancestorID or descends from it.
func (r *Registry) IsA(classID, ancestorID uint32) bool {
	cur := r.Remap(classID)
	target := r.Remap(ancestorID)

	// Parent cycles are rejected at freeze, the bound only guards the walk.
	for range len(r.classes) + 1 {
		if cur == target {
			return true
		}
		c, ok := r.classes[cur]
		if !ok || c.Parent == 0 {
			return false
		}
		cur = c.Parent
	}

	return false
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	return len(r.classes)
}
