// Package compress provides the compression codecs used by gbx containers,
// Pak archives and the archive extraction cache.
//
// # Overview
//
// Two codecs are dictated by the file formats:
//   - LZO1X (format.CodecLZO): compressed container bodies and reference tables
//   - Deflate (format.CodecDeflate): zlib-framed archive entries
//
// The remaining codecs are available to the archive extraction cache, which
// keeps decoded entries resident in compressed form:
//   - None: No compression (fastest, largest)
//   - Zstd: Best ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fast decompression, moderate compression
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Codecs whose stream does not record its decoded length also implement
// SizedDecompressor. Both gbx formats store the decoded length next to the
// payload, so callers use DecompressSize:
//
//	body, err := compress.DecompressSize(format.CodecLZO, payload, uncompressedSize)
//
// # Partial data
//
// Archive entries are sometimes followed by garbage or cut short. The deflate
// codec exposes InflatePrefix, which returns the bytes inflated before the
// failure together with an error wrapping errs.ErrPartialData instead of
// discarding them.
//
// # Thread Safety
//
// All codec implementations are stateless values backed by sync.Pool where
// useful, and can be shared across goroutines.
package compress
