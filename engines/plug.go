package engines

import (
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/stream"
)

// CPlugBitmapAddress chunks.
const (
	ChunkBitmapAddressPack    uint32 = 0x09047002
	ChunkBitmapAddressRaw     uint32 = 0x09047005
	ChunkBitmapAddressSampler uint32 = 0x09047007
	ChunkBitmapAddressScale   uint32 = 0x09047008
)

// BitmapAddressRawSize is the payload size of the 0x005 chunk.
const BitmapAddressRawSize = 21

// CPlugMaterialCustom chunks.
const (
	ChunkMaterialParams   uint32 = 0x0903A004
	ChunkMaterialTextures uint32 = 0x0903A006
	ChunkMaterialFilter   uint32 = 0x0903A00D
)

// ChunkIndexBufferIndices carries the flags and indices of an index buffer.
const ChunkIndexBufferIndices uint32 = 0x09057000

// Bitmap is the CPlugBitmap node. None of its chunks are catalogued.
type Bitmap struct {
	node.Base
}

// NewBitmap returns an empty CPlugBitmap node.
func NewBitmap() *Bitmap {
	return &Bitmap{Base: node.NewBase(ClassPlugBitmap)}
}

// BitmapAddress is the CPlugBitmapAddress node. Its chunks keep their own
// fields.
type BitmapAddress struct {
	node.Base
}

// NewBitmapAddress returns an empty CPlugBitmapAddress node.
func NewBitmapAddress() *BitmapAddress {
	return &BitmapAddress{Base: node.NewBase(ClassPlugBitmapAddress)}
}

// BitmapAddressPackChunk is chunk 0x002.
type BitmapAddressPackChunk struct {
	Count int32
}

// ID implements node.Chunk.
func (c *BitmapAddressPackChunk) ID() uint32 { return ChunkBitmapAddressPack }

// ReadWrite implements node.Chunk.
func (c *BitmapAddressPackChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	rw.Int32(&c.Count)
	return rw.Err()
}

// BitmapAddressRawChunk is chunk 0x005, a fixed BitmapAddressRawSize
// payload kept as-is.
type BitmapAddressRawChunk struct {
	Data []byte
}

// ID implements node.Chunk.
func (c *BitmapAddressRawChunk) ID() uint32 { return ChunkBitmapAddressRaw }

// ReadWrite implements node.Chunk.
func (c *BitmapAddressRawChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	rw.Bytes(&c.Data, BitmapAddressRawSize)
	return rw.Err()
}

// BitmapAddressSamplerChunk is chunk 0x007.
type BitmapAddressSamplerChunk struct {
	U01  int32
	U02  int32
	Mode byte
}

// ID implements node.Chunk.
func (c *BitmapAddressSamplerChunk) ID() uint32 { return ChunkBitmapAddressSampler }

// ReadWrite implements node.Chunk.
func (c *BitmapAddressSamplerChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	rw.Int32(&c.U01)
	rw.Int32(&c.U02)
	rw.Byte(&c.Mode)

	return rw.Err()
}

// BitmapAddressScaleChunk is chunk 0x008.
type BitmapAddressScaleChunk struct {
	Count int32
	Scale float32
}

// ID implements node.Chunk.
func (c *BitmapAddressScaleChunk) ID() uint32 { return ChunkBitmapAddressScale }

// ReadWrite implements node.Chunk.
func (c *BitmapAddressScaleChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	rw.Int32(&c.Count)
	rw.Float32(&c.Scale)

	return rw.Err()
}

// IndexBuffer is the CPlugIndexBuffer node.
type IndexBuffer struct {
	node.Base
	Flags   int32
	Indices []uint16
}

// NewIndexBuffer returns an empty index buffer.
func NewIndexBuffer() *IndexBuffer {
	return &IndexBuffer{Base: node.NewBase(ClassPlugIndexBuffer)}
}

// IndexBufferIndicesChunk stores Flags and Indices on the IndexBuffer.
type IndexBufferIndicesChunk struct{}

// ID implements node.Chunk.
func (c *IndexBufferIndicesChunk) ID() uint32 { return ChunkIndexBufferIndices }

// ReadWrite implements node.Chunk.
func (c *IndexBufferIndicesChunk) ReadWrite(n node.Node, rw *node.ReaderWriter) error {
	b, err := nodeAs[*IndexBuffer](n)
	if err != nil {
		return err
	}

	rw.Int32(&b.Flags)
	node.List(rw, &b.Indices, func(rw *node.ReaderWriter, v *uint16) {
		rw.UInt16(v)
	})

	return rw.Err()
}

// MaterialTexture binds a texture slot to a bitmap, usually an external one.
type MaterialTexture struct {
	Name   stream.Ident
	U01    int32
	Bitmap node.Ref
}

// MaterialCustom is the CPlugMaterialCustom node.
type MaterialCustom struct {
	node.Base
	Textures []MaterialTexture
}

// NewMaterialCustom returns a material without textures.
func NewMaterialCustom() *MaterialCustom {
	return &MaterialCustom{Base: node.NewBase(ClassPlugMaterialCustom)}
}

// MaterialParamsChunk is chunk 0x004, a list of integer parameters.
type MaterialParamsChunk struct {
	Params []int32
}

// ID implements node.Chunk.
func (c *MaterialParamsChunk) ID() uint32 { return ChunkMaterialParams }

// ReadWrite implements node.Chunk.
func (c *MaterialParamsChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	node.List(rw, &c.Params, func(rw *node.ReaderWriter, v *int32) {
		rw.Int32(v)
	})

	return rw.Err()
}

// MaterialTexturesChunk stores the texture slots on the MaterialCustom.
type MaterialTexturesChunk struct{}

// ID implements node.Chunk.
func (c *MaterialTexturesChunk) ID() uint32 { return ChunkMaterialTextures }

// ReadWrite implements node.Chunk.
func (c *MaterialTexturesChunk) ReadWrite(n node.Node, rw *node.ReaderWriter) error {
	m, err := nodeAs[*MaterialCustom](n)
	if err != nil {
		return err
	}

	node.List(rw, &m.Textures, func(rw *node.ReaderWriter, t *MaterialTexture) {
		rw.Id(&t.Name)
		rw.Int32(&t.U01)
		rw.NodeRef(&t.Bitmap)
	})

	return rw.Err()
}

// MaterialFilterChunk holds the visibility filter, present when bit 0 of
// Flags is set.
type MaterialFilterChunk struct {
	Flags  uint64
	U02    uint64
	Filter [2]int16
}

// ID implements node.Chunk.
func (c *MaterialFilterChunk) ID() uint32 { return ChunkMaterialFilter }

// ReadWrite implements node.Chunk.
func (c *MaterialFilterChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	rw.UInt64(&c.Flags)
	rw.UInt64(&c.U02)
	if c.Flags&1 != 0 {
		rw.Int16(&c.Filter[0])
		rw.Int16(&c.Filter[1])
	}

	return rw.Err()
}
