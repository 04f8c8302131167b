package engines

import (
	"errors"
	"fmt"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/registry"
)

// Class IDs of the catalogue.
const (
	ClassMediaBlockDirtyLens uint32 = 0x03165000
	ClassPlugBitmap          uint32 = 0x09011000
	ClassPlugMaterialCustom  uint32 = 0x0903A000
	ClassPlugBitmapAddress   uint32 = 0x09047000
	ClassPlugIndexBuffer     uint32 = 0x09057000
	ClassSceneObject         uint32 = 0x0A005000
)

type schema struct {
	class  uint32
	node   registry.NodeFactory
	chunks []registry.ChunkInfo
}

func chunk[T node.Chunk](id uint32, factory func() T) registry.ChunkInfo {
	return registry.ChunkInfo{ID: id, New: func() node.Chunk { return factory() }}
}

func versioned(info registry.ChunkInfo) registry.ChunkInfo {
	info.Versioned = true
	return info
}

func catalogue() []schema {
	return []schema{
		{
			class: ClassMediaBlockDirtyLens,
			node:  func() node.Node { return NewDirtyLens() },
			chunks: []registry.ChunkInfo{
				versioned(chunk(ChunkDirtyLensKeys, func() *DirtyLensKeysChunk { return &DirtyLensKeysChunk{} })),
			},
		},
		{
			class: ClassPlugBitmap,
			node:  func() node.Node { return NewBitmap() },
		},
		{
			class: ClassPlugMaterialCustom,
			node:  func() node.Node { return NewMaterialCustom() },
			chunks: []registry.ChunkInfo{
				chunk(ChunkMaterialParams, func() *MaterialParamsChunk { return &MaterialParamsChunk{} }),
				chunk(ChunkMaterialTextures, func() *MaterialTexturesChunk { return &MaterialTexturesChunk{} }),
				chunk(ChunkMaterialFilter, func() *MaterialFilterChunk { return &MaterialFilterChunk{} }),
			},
		},
		{
			class: ClassPlugBitmapAddress,
			node:  func() node.Node { return NewBitmapAddress() },
			chunks: []registry.ChunkInfo{
				chunk(ChunkBitmapAddressPack, func() *BitmapAddressPackChunk { return &BitmapAddressPackChunk{} }),
				chunk(ChunkBitmapAddressRaw, func() *BitmapAddressRawChunk { return &BitmapAddressRawChunk{} }),
				chunk(ChunkBitmapAddressSampler, func() *BitmapAddressSamplerChunk { return &BitmapAddressSamplerChunk{} }),
				chunk(ChunkBitmapAddressScale, func() *BitmapAddressScaleChunk { return &BitmapAddressScaleChunk{} }),
			},
		},
		{
			class: ClassPlugIndexBuffer,
			node:  func() node.Node { return NewIndexBuffer() },
			chunks: []registry.ChunkInfo{
				chunk(ChunkIndexBufferIndices, func() *IndexBufferIndicesChunk { return &IndexBufferIndicesChunk{} }),
			},
		},
		{
			class: ClassSceneObject,
			node:  func() node.Node { return NewSceneObject() },
			chunks: []registry.ChunkInfo{
				chunk(ChunkSceneObjectID, func() *SceneObjectIDChunk { return &SceneObjectIDChunk{} }),
				chunk(ChunkSceneObjectVisible, func() *SceneObjectVisibleChunk { return &SceneObjectVisibleChunk{} }),
				chunk(ChunkSceneObjectMotion, func() *SceneObjectMotionChunk { return &SceneObjectMotionChunk{} }),
				chunk(ChunkSceneObjectFlags, func() *SceneObjectFlagsChunk { return &SceneObjectFlagsChunk{} }),
			},
		},
	}
}

// Register adds the node variants and chunk codecs of the catalogue to b.
// The classes themselves must already be registered, usually from
// registry.ClassTable.
func Register(b *registry.Builder) error {
	var errList []error
	for _, s := range catalogue() {
		if err := b.RegisterNode(s.class, s.node); err != nil {
			errList = append(errList, err)
		}
		for _, info := range s.chunks {
			if err := b.RegisterChunk(info); err != nil {
				errList = append(errList, err)
			}
		}
	}

	return errors.Join(errList...)
}

// nodeAs returns n as the variant a chunk stores its fields on.
func nodeAs[T node.Node](n node.Node) (T, error) {
	var zero T
	if n == nil {
		return zero, errs.ErrNodeRequired
	}
	t, ok := n.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", errs.ErrNodeCapability, n)
	}

	return t, nil
}
