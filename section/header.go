package section

import (
	"fmt"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/format"
	"github.com/arloliu/gbx/stream"
)

// RemapFunc translates a deprecated class ID into its current form.
type RemapFunc func(uint32) uint32

// Header is the container envelope.
type Header struct {
	Version             int16
	Format              format.Format
	RefTableCompression format.Compression
	BodyCompression     format.Compression
	// Unknown is only present for version >= 4.
	Unknown byte
	// ClassID is the remapped class ID of the root node.
	ClassID uint32
	// UserData is the raw header chunk table, version >= 6 only.
	UserData []byte
	NumNodes int32
}

// NewHeader returns a version 6 binary header for classID with both sections
// uncompressed.
func NewHeader(classID uint32) Header {
	return Header{
		Version:             MaxVersion,
		Format:              format.FormatBinary,
		RefTableCompression: format.Uncompressed,
		BodyCompression:     format.Uncompressed,
		Unknown:             UnknownByte,
		ClassID:             classID,
		NumNodes:            NoNodeCount,
	}
}

// ParseHeader decodes the envelope at the start of data and returns it with
// the number of bytes consumed. remap may be nil.
//
// Returns an error wrapping:
//   - errs.ErrNotAContainer for a bad magic
//   - errs.ErrUnsupportedVersion for versions outside 3..6
//   - errs.ErrUnsupportedFormat for text containers
//   - errs.ErrInvalidCompression for compression bytes other than 'U' and 'C'
//   - errs.ErrTruncatedStream when data ends early
func ParseHeader(data []byte, remap RemapFunc) (Header, int, error) {
	r := stream.NewReader(data)

	magic, err := r.Bytes(len(Magic))
	if err != nil {
		return Header{}, 0, fmt.Errorf("%w: %w", errs.ErrNotAContainer, err)
	}
	if string(magic) != Magic {
		return Header{}, 0, fmt.Errorf("%w: magic %q", errs.ErrNotAContainer, magic)
	}

	var h Header
	if h.Version, err = r.Int16(); err != nil {
		return Header{}, 0, err
	}
	if h.Version < MinVersion || h.Version > MaxVersion {
		return Header{}, 0, fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, h.Version)
	}

	b, err := r.Byte()
	if err != nil {
		return Header{}, 0, err
	}
	h.Format = format.Format(b)
	if h.Format != format.FormatBinary {
		return Header{}, 0, fmt.Errorf("%w: format %s", errs.ErrUnsupportedFormat, h.Format)
	}

	if h.RefTableCompression, err = readCompression(r); err != nil {
		return Header{}, 0, err
	}
	if h.BodyCompression, err = readCompression(r); err != nil {
		return Header{}, 0, err
	}

	if h.Version >= UnknownByteVersion {
		if h.Unknown, err = r.Byte(); err != nil {
			return Header{}, 0, err
		}
	}

	if h.ClassID, err = r.UInt32(); err != nil {
		return Header{}, 0, err
	}
	if remap != nil {
		h.ClassID = remap(h.ClassID)
	}

	if h.Version >= UserDataVersion {
		n, err := r.Int32()
		if err != nil {
			return Header{}, 0, err
		}
		ud, err := r.Bytes(int(n))
		if err != nil {
			return Header{}, 0, err
		}
		h.UserData = ud
	}

	if h.NumNodes, err = r.Int32(); err != nil {
		return Header{}, 0, err
	}

	return h, r.Pos(), nil
}

func readCompression(r *stream.Reader) (format.Compression, error) {
	b, err := r.Byte()
	if err != nil {
		return 0, err
	}
	c := format.Compression(b)
	if c != format.Uncompressed && c != format.Compressed {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidCompression, c)
	}

	return c, nil
}

// Validate checks that h can be written.
func (h *Header) Validate() error {
	if h.Version < MinVersion || h.Version > MaxVersion {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, h.Version)
	}
	if h.Format != format.FormatBinary {
		return fmt.Errorf("%w: format %s", errs.ErrUnsupportedFormat, h.Format)
	}
	for _, c := range []format.Compression{h.RefTableCompression, h.BodyCompression} {
		if c != format.Uncompressed && c != format.Compressed {
			return fmt.Errorf("%w: %s", errs.ErrInvalidCompression, c)
		}
	}
	if h.Version < UserDataVersion && len(h.UserData) > 0 {
		return fmt.Errorf("%w: version %d cannot carry user data", errs.ErrUnsupportedVersion, h.Version)
	}

	return nil
}

// WriteTo appends the encoded envelope to w. remap may be nil.
func (h *Header) WriteTo(w *stream.Writer, remap RemapFunc) error {
	if err := h.Validate(); err != nil {
		return err
	}

	_, _ = w.Write([]byte(Magic))
	w.Int16(h.Version)
	w.Byte(byte(h.Format))
	w.Byte(byte(h.RefTableCompression))
	w.Byte(byte(h.BodyCompression))
	if h.Version >= UnknownByteVersion {
		w.Byte(h.Unknown)
	}

	classID := h.ClassID
	if remap != nil {
		classID = remap(classID)
	}
	w.UInt32(classID)

	if h.Version >= UserDataVersion {
		w.Int32(int32(len(h.UserData))) //nolint:gosec
		_, _ = w.Write(h.UserData)
	}
	w.Int32(h.NumNodes)

	return nil
}

// Bytes serializes the envelope without remapping.
func (h *Header) Bytes() ([]byte, error) {
	w := stream.NewWriter()
	if err := h.WriteTo(w, nil); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}
