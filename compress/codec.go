package compress

import (
	"fmt"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/format"
)

var errDecompressedLength = errs.ErrDecompressedLength

// Compressor compresses a complete payload.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller, except for the
//     no-op codec which returns its input
//   - Input slice is not modified
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a complete payload produced by the matching Compressor.
//
// Thread Safety: Decompressor implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Returns an error if the input is corrupted or was produced by a different
	// algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// SizedDecompressor is implemented by codecs whose stream does not record the
// decompressed length itself. Container bodies and archive entries always carry
// the expected length next to the compressed payload.
type SizedDecompressor interface {
	// DecompressSize decompresses data that is expected to expand to exactly size bytes.
	//
	// Returns errs.ErrDecompressedLength if the output length differs from size.
	DecompressSize(data []byte, size int) ([]byte, error)
}

// CreateCodec is a factory function that creates a Codec based on the specified codec type.
//
// Parameters:
//   - codecType: Type of codec (None, Deflate, LZO, Zstd, S2, or LZ4)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: Invalid codec type error
func CreateCodec(codecType format.CodecType, target string) (Codec, error) {
	switch codecType {
	case format.CodecNone:
		return NewNoOpCompressor(), nil
	case format.CodecDeflate:
		return NewDeflateCompressor(), nil
	case format.CodecLZO:
		return NewLZOCompressor(), nil
	case format.CodecZstd:
		return NewZstdCompressor(), nil
	case format.CodecS2:
		return NewS2Compressor(), nil
	case format.CodecLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: invalid %s codec %s", errs.ErrUnsupportedCodec, target, codecType)
	}
}

var builtinCodecs = map[format.CodecType]Codec{
	format.CodecNone:    NewNoOpCompressor(),
	format.CodecDeflate: NewDeflateCompressor(),
	format.CodecLZO:     NewLZOCompressor(),
	format.CodecZstd:    NewZstdCompressor(),
	format.CodecS2:      NewS2Compressor(),
	format.CodecLZ4:     NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified codec type.
func GetCodec(codecType format.CodecType) (Codec, error) {
	if codec, ok := builtinCodecs[codecType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCodec, codecType)
}

// DecompressSize decompresses data with the codec of the given type and checks
// that the result is exactly size bytes long. Codecs implementing
// SizedDecompressor receive the size hint directly.
func DecompressSize(codecType format.CodecType, data []byte, size int) ([]byte, error) {
	codec, err := GetCodec(codecType)
	if err != nil {
		return nil, err
	}

	if sized, ok := codec.(SizedDecompressor); ok {
		return sized.DecompressSize(data, size)
	}

	out, err := codec.Decompress(data)
	if err != nil {
		return nil, err
	}

	if len(out) != size {
		return nil, fmt.Errorf("%w: %s produced %d bytes, want %d", errs.ErrDecompressedLength, codecType, len(out), size)
	}

	return out, nil
}
