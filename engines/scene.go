package engines

import (
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/stream"
)

// CSceneObject chunks.
const (
	ChunkSceneObjectID      uint32 = 0x0A005001
	ChunkSceneObjectVisible uint32 = 0x0A005002
	ChunkSceneObjectMotion  uint32 = 0x0A005003
	ChunkSceneObjectFlags   uint32 = 0x0A005004
)

// SceneObject is the CSceneObject node. Its chunks keep their own fields.
type SceneObject struct {
	node.Base
}

// NewSceneObject returns an empty CSceneObject node.
func NewSceneObject() *SceneObject {
	return &SceneObject{Base: node.NewBase(ClassSceneObject)}
}

// SceneObjectIDChunk names the object.
type SceneObjectIDChunk struct {
	Name stream.Ident
}

// ID implements node.Chunk.
func (c *SceneObjectIDChunk) ID() uint32 { return ChunkSceneObjectID }

// ReadWrite implements node.Chunk.
func (c *SceneObjectIDChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	rw.Id(&c.Name)
	return rw.Err()
}

// SceneObjectVisibleChunk is chunk 0x002.
type SceneObjectVisibleChunk struct {
	Visible bool
}

// ID implements node.Chunk.
func (c *SceneObjectVisibleChunk) ID() uint32 { return ChunkSceneObjectVisible }

// ReadWrite implements node.Chunk.
func (c *SceneObjectVisibleChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	rw.Bool(&c.Visible)
	return rw.Err()
}

// SceneObjectMotionChunk references the motion of the object, if any.
type SceneObjectMotionChunk struct {
	Motion node.Ref
}

// ID implements node.Chunk.
func (c *SceneObjectMotionChunk) ID() uint32 { return ChunkSceneObjectMotion }

// ReadWrite implements node.Chunk.
func (c *SceneObjectMotionChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	rw.NodeRef(&c.Motion)
	return rw.Err()
}

// SceneObjectFlagsChunk is chunk 0x004.
type SceneObjectFlagsChunk struct {
	Flags int32
}

// ID implements node.Chunk.
func (c *SceneObjectFlagsChunk) ID() uint32 { return ChunkSceneObjectFlags }

// ReadWrite implements node.Chunk.
func (c *SceneObjectFlagsChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	rw.Int32(&c.Flags)
	return rw.Err()
}
