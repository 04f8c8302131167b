package container

import (
	"fmt"

	"github.com/arloliu/gbx/compress"
	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/format"
	"github.com/arloliu/gbx/stream"
)

// maxSectionSize bounds the declared uncompressed size of a section.
const maxSectionSize = 1 << 30

// readCompressed reads a "uint32 uncompressed, uint32 compressed, data"
// frame and returns the LZO-decompressed section.
func readCompressed(r *stream.Reader) ([]byte, error) {
	size, err := r.UInt32()
	if err != nil {
		return nil, err
	}
	compSize, err := r.UInt32()
	if err != nil {
		return nil, err
	}
	if size > maxSectionSize {
		return nil, fmt.Errorf("%w: section of %d bytes", errs.ErrInvalidCompression, size)
	}
	payload, err := r.Bytes(int(compSize))
	if err != nil {
		return nil, err
	}

	data, err := compress.DecompressSize(format.CodecLZO, payload, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCompression, err)
	}

	return data, nil
}

func writeCompressed(w *stream.Writer, data []byte) error {
	codec, err := compress.GetCodec(format.CodecLZO)
	if err != nil {
		return err
	}
	comp, err := codec.Compress(data)
	if err != nil {
		return err
	}

	w.UInt32(uint32(len(data))) //nolint:gosec
	w.UInt32(uint32(len(comp))) //nolint:gosec
	_, _ = w.Write(comp)

	return nil
}
