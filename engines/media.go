package engines

import "github.com/arloliu/gbx/node"

// ChunkDirtyLensKeys carries the version and keys of a dirty lens block.
const ChunkDirtyLensKeys uint32 = 0x03165000

// Key is the part shared by every media block key.
type Key struct {
	Time float32
}

// KeyHolder is implemented by media blocks made of timed keys.
type KeyHolder interface {
	node.Node
	BlockKeys() []Key
}

// Duration returns the time between the first and the last key.
func Duration(h KeyHolder) float32 {
	keys := h.BlockKeys()
	if len(keys) < 2 {
		return 0
	}

	return keys[len(keys)-1].Time - keys[0].Time
}

// DirtyLensKey is a key of the dirty lens effect.
type DirtyLensKey struct {
	Key
	Intensity float32
}

// DirtyLens is the CGameCtnMediaBlockDirtyLens media block.
type DirtyLens struct {
	node.Base
	Keys []DirtyLensKey
}

var _ KeyHolder = (*DirtyLens)(nil)

// NewDirtyLens returns an empty dirty lens block.
func NewDirtyLens() *DirtyLens {
	return &DirtyLens{Base: node.NewBase(ClassMediaBlockDirtyLens)}
}

// BlockKeys implements KeyHolder.
func (d *DirtyLens) BlockKeys() []Key {
	keys := make([]Key, len(d.Keys))
	for i, k := range d.Keys {
		keys[i] = k.Key
	}

	return keys
}

// DirtyLensKeysChunk holds the keys of a dirty lens block on the node.
// Version is the chunk version read before the keys.
type DirtyLensKeysChunk struct {
	Version int32
}

// ID implements node.Chunk.
func (c *DirtyLensKeysChunk) ID() uint32 { return ChunkDirtyLensKeys }

// ChunkVersion implements node.Versioned.
func (c *DirtyLensKeysChunk) ChunkVersion() int { return int(c.Version) }

// ReadWrite implements node.Chunk.
func (c *DirtyLensKeysChunk) ReadWrite(n node.Node, rw *node.ReaderWriter) error {
	d, err := nodeAs[*DirtyLens](n)
	if err != nil {
		return err
	}

	rw.Int32(&c.Version)
	node.List(rw, &d.Keys, func(rw *node.ReaderWriter, k *DirtyLensKey) {
		rw.Float32(&k.Time)
		rw.Float32(&k.Intensity)
	})

	return rw.Err()
}
