package compress

// ZstdCompressor provides Zstandard compression.
//
// It is one of the codecs available for the archive extraction cache, where
// ratio matters more than speed because cached entries may stay resident for
// the lifetime of an archive.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
