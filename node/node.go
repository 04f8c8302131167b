package node

// ClassMask selects the class part of a chunk ID.
const ClassMask uint32 = 0xFFFFF000

// ClassOf returns the class ID owning chunkID.
func ClassOf(chunkID uint32) uint32 {
	return chunkID & ClassMask
}

// ChunkIndex returns the low 12 bits of chunkID.
func ChunkIndex(chunkID uint32) uint32 {
	return chunkID &^ ClassMask
}

// Node is a typed object of the container graph.
type Node interface {
	// ClassID returns the current (remapped) class ID of the node.
	ClassID() uint32
	// Chunks returns the body chunk set.
	Chunks() *ChunkSet
	// HeaderChunks returns the user-data header chunk set.
	HeaderChunks() *ChunkSet
}

// Base implements Node and is embedded by every concrete variant.
type Base struct {
	classID uint32
	chunks  ChunkSet
	header  ChunkSet
}

// NewBase returns a Base for classID.
func NewBase(classID uint32) Base {
	return Base{classID: classID}
}

// ClassID implements Node.
func (b *Base) ClassID() uint32 {
	return b.classID
}

// Chunks implements Node.
func (b *Base) Chunks() *ChunkSet {
	return &b.chunks
}

// HeaderChunks implements Node.
func (b *Base) HeaderChunks() *ChunkSet {
	return &b.header
}

// Generic is the node produced for classes without a registered variant.
// All of its chunks are opaque.
type Generic struct {
	Base
}

// NewGeneric returns a Generic node of classID.
func NewGeneric(classID uint32) *Generic {
	return &Generic{Base: NewBase(classID)}
}
