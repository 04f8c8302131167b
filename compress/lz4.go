package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor provides LZ4 block compression.
//
// LZ4 blocks do not record their decoded length, so the compressed form
// produced by Compress is prefixed with the decoded length as a little-endian
// uint32. DecompressSize accepts the same framing.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 block compression.
//
// Returns:
//   - []byte: Length-prefixed compressed block (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, 4+lz4.CompressBlockBound(len(data)))
	putUint32(dst, uint32(len(data))) //nolint:gosec

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[4:])
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	if n == 0 {
		return nil, fmt.Errorf("lz4 compress: incompressible input of %d bytes", len(data))
	}

	return dst[:4+n], nil
}

// Decompress decompresses a length-prefixed LZ4 block.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if len(data) < 4 {
		return nil, fmt.Errorf("lz4 decompress: block of %d bytes has no length prefix", len(data))
	}

	return c.DecompressSize(data, int(getUint32(data)))
}

// DecompressSize decompresses a length-prefixed LZ4 block that must expand to size bytes.
func (c LZ4Compressor) DecompressSize(data []byte, size int) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("lz4 decompress: block of %d bytes has no length prefix", len(data))
	}

	if prefix := int(getUint32(data)); prefix != size {
		return nil, fmt.Errorf("%w: lz4 block holds %d bytes, want %d", errDecompressedLength, prefix, size)
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data[4:], out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}

	if n != size {
		return nil, fmt.Errorf("%w: lz4 produced %d bytes, want %d", errDecompressedLength, n, size)
	}

	return out, nil
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
