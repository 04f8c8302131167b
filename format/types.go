package format

import "fmt"

type (
	// Format is the storage format byte of a container envelope.
	Format uint8
	// Compression is the per-section compression flag of a container envelope.
	Compression uint8
	// CodecType identifies a compression codec implementation.
	CodecType uint8
)

const (
	FormatBinary Format = 'B' // FormatBinary represents binary-encoded containers, the only supported format.
	FormatText   Format = 'T' // FormatText represents textual containers, which are rejected.

	Uncompressed Compression = 'U' // Uncompressed marks a section stored as-is.
	Compressed   Compression = 'C' // Compressed marks a section framed and compressed with LZO.
)

const (
	CodecNone    CodecType = 0x1 // CodecNone represents no compression.
	CodecDeflate CodecType = 0x2 // CodecDeflate represents zlib-framed deflate, used by archive entries.
	CodecLZO     CodecType = 0x3 // CodecLZO represents LZO1X, used by container bodies.
	CodecZstd    CodecType = 0x4 // CodecZstd represents Zstandard compression.
	CodecS2      CodecType = 0x5 // CodecS2 represents S2 compression.
	CodecLZ4     CodecType = 0x6 // CodecLZ4 represents LZ4 block compression.
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "Binary"
	case FormatText:
		return "Text"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(f))
	}
}

func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "Uncompressed"
	case Compressed:
		return "Compressed"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(c))
	}
}

// IsCompressed reports whether the flag selects the compressed framing.
func (c Compression) IsCompressed() bool {
	return c == Compressed
}

func (c CodecType) String() string {
	switch c {
	case CodecNone:
		return "None"
	case CodecDeflate:
		return "Deflate"
	case CodecLZO:
		return "LZO"
	case CodecZstd:
		return "Zstd"
	case CodecS2:
		return "S2"
	case CodecLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
