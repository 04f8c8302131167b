package compress

import (
	"bytes"
	"fmt"

	"github.com/rasky/go-lzo"
)

// LZOCompressor provides LZO1X, the compression used by container bodies.
//
// LZO1X streams do not carry the decoded length; containers store it next to
// the payload, so DecompressSize is the normal entry point.
type LZOCompressor struct{}

var _ Codec = (*LZOCompressor)(nil)

// NewLZOCompressor creates a new LZO1X compressor.
func NewLZOCompressor() LZOCompressor {
	return LZOCompressor{}
}

// Compress compresses the input data using LZO1X-1.
func (c LZOCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return lzo.Compress1X(data), nil
}

// Decompress decompresses an LZO1X stream of unknown decoded length.
func (c LZOCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, err := lzo.Decompress1X(bytes.NewReader(data), len(data), 0)
	if err != nil {
		return nil, fmt.Errorf("lzo decompression failed: %w", err)
	}

	return out, nil
}

// DecompressSize decompresses an LZO1X stream that must expand to exactly size bytes.
func (c LZOCompressor) DecompressSize(data []byte, size int) ([]byte, error) {
	out, err := lzo.Decompress1X(bytes.NewReader(data), len(data), size)
	if err != nil {
		return nil, fmt.Errorf("lzo decompression failed: %w", err)
	}

	if len(out) != size {
		return nil, fmt.Errorf("%w: lzo produced %d bytes, want %d", errDecompressedLength, len(out), size)
	}

	return out, nil
}
