package compress

import (
	"fmt"
)

// NoOpCompressor passes data through unchanged.
//
// It backs uncompressed extraction caches and stored archive entries.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input slice as-is, without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is, without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressSize returns the input if it is exactly size bytes long.
func (c NoOpCompressor) DecompressSize(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, fmt.Errorf("%w: stored payload is %d bytes, want %d", errDecompressedLength, len(data), size)
	}

	return data, nil
}
