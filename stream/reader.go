package stream

import (
	"fmt"
	"math"

	"github.com/arloliu/gbx/endian"
	"github.com/arloliu/gbx/errs"
)

var engine = endian.GetLittleEndianEngine()

// MaxStringLength bounds the declared length of a length-prefixed string.
const MaxStringLength = 0x10000000

// Reader is a cursor over an in-memory byte slice.
type Reader struct {
	data []byte
	pos  int
	ids  *IdState
}

// NewReader creates a Reader over data with a fresh lookback state.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, ids: NewIdState()}
}

// NewReaderWithState creates a Reader over data sharing the given lookback state.
func NewReaderWithState(data []byte, ids *IdState) *Reader {
	if ids == nil {
		ids = NewIdState()
	}

	return &Reader{data: data, ids: ids}
}

// IdState returns the lookback state used by Ident.
func (r *Reader) IdState() *IdState {
	return r.ids
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Remaining returns the unread bytes without consuming them.
func (r *Reader) Remaining() []byte {
	return r.data[r.pos:]
}

func (r *Reader) need(n int) error {
	if n < 0 || r.Len() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", errs.ErrTruncatedStream, n, r.pos, r.Len())
	}

	return nil
}

// Bytes consumes n bytes and returns them as a sub-slice of the input.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n

	return b, nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n

	return nil
}

// Byte reads one byte.
func (r *Reader) Byte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++

	return b, nil
}

// Int16 reads a little-endian int16.
func (r *Reader) Int16() (int16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := engine.Uint16(r.data[r.pos:])
	r.pos += 2

	return int16(v), nil //nolint:gosec
}

// UInt16 reads a little-endian uint16.
func (r *Reader) UInt16() (uint16, error) {
	v, err := r.Int16()
	return uint16(v), err //nolint:gosec
}

// UInt32 reads a little-endian uint32.
func (r *Reader) UInt32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := engine.Uint32(r.data[r.pos:])
	r.pos += 4

	return v, nil
}

// PeekUInt32 reads a uint32 without advancing the cursor.
func (r *Reader) PeekUInt32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}

	return engine.Uint32(r.data[r.pos:]), nil
}

// Int32 reads a little-endian int32.
func (r *Reader) Int32() (int32, error) {
	v, err := r.UInt32()
	return int32(v), err //nolint:gosec
}

// UInt64 reads a little-endian uint64.
func (r *Reader) UInt64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := engine.Uint64(r.data[r.pos:])
	r.pos += 8

	return v, nil
}

// Float32 reads an IEEE-754 single.
func (r *Reader) Float32() (float32, error) {
	v, err := r.UInt32()
	return math.Float32frombits(v), err
}

// Bool reads a 32-bit boolean; any non-zero value is true.
func (r *Reader) Bool() (bool, error) {
	v, err := r.UInt32()
	return v != 0, err
}

// String reads an int32 length followed by that many bytes.
func (r *Reader) String() (string, error) {
	start := r.pos
	n, err := r.Int32()
	if err != nil {
		return "", err
	}
	if n < 0 || n > MaxStringLength {
		r.pos = start
		return "", fmt.Errorf("%w: invalid string length %d at offset %d", errs.ErrTruncatedStream, n, start)
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		r.pos = start
		return "", err
	}

	return string(b), nil
}

// Ident reads a lookback identifier.
func (r *Reader) Ident() (Ident, error) {
	start, started, version := r.pos, r.ids.started, r.ids.version
	id, err := r.ids.read(r)
	if err != nil {
		r.pos = start
		r.ids.started, r.ids.version = started, version
	}

	return id, err
}
