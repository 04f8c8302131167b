package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/gbx/errs"
)

// DeflateCompressor provides zlib-framed deflate, the compression used by Pak
// archive entries.
type DeflateCompressor struct{}

var _ Codec = (*DeflateCompressor)(nil)

// NewDeflateCompressor creates a new zlib deflate compressor.
func NewDeflateCompressor() DeflateCompressor {
	return DeflateCompressor{}
}

// Compress compresses the input data into a zlib stream.
func (c DeflateCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("zlib compress: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates a complete zlib stream.
func (c DeflateCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}

	return out, nil
}

// DecompressSize inflates a zlib stream that must expand to exactly size bytes.
func (c DeflateCompressor) DecompressSize(data []byte, size int) ([]byte, error) {
	out, err := c.InflatePrefix(bytes.NewReader(data), size)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// InflatePrefix reads up to size inflated bytes from a zlib stream.
//
// Unlike DecompressSize, a truncated or corrupt stream is not fatal: the
// inflated prefix is returned together with an error wrapping
// errs.ErrPartialData. Historical archives carry trailing garbage after the
// deflate stream, so reading stops as soon as size bytes are produced and the
// remainder of the input is ignored.
//
// Returns:
//   - []byte: Inflated bytes (exactly size bytes when err is nil)
//   - error: nil, or an error wrapping errs.ErrPartialData with a usable prefix
func (c DeflateCompressor) InflatePrefix(src io.Reader, size int) ([]byte, error) {
	r, err := zlib.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib header: %w", errs.ErrPartialData, err)
	}
	defer r.Close()

	return ReadPrefix(r, size)
}

// prefixGrowStep caps the buffer reserved before any byte is read.
const prefixGrowStep = 64 << 10

// ReadPrefix reads up to size bytes from r. The buffer grows with the data
// actually read, so a corrupt size does not allocate up front. A short read
// returns the prefix together with an error wrapping errs.ErrPartialData.
func ReadPrefix(r io.Reader, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", errs.ErrDecompressedLength, size)
	}

	var buf bytes.Buffer
	buf.Grow(min(size, prefixGrowStep))
	n, err := io.CopyN(&buf, r, int64(size))
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			err = fmt.Errorf("%w: read %d of %d bytes", errs.ErrPartialData, n, size)
		} else {
			err = fmt.Errorf("%w: read %d of %d bytes: %w", errs.ErrPartialData, n, size, err)
		}

		return buf.Bytes(), err
	}

	return buf.Bytes(), nil
}
