package node

import (
	"fmt"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/stream"
)

// ReaderWriter drives a chunk's ReadWrite method in either direction.
//
// In read mode every method decodes into the pointed-to value; in write mode
// it encodes the pointed-to value. The first error is sticky: later calls
// become no-ops and Err reports it.
type ReaderWriter struct {
	r    *stream.Reader
	w    *stream.Writer
	refs RefCodec
	err  error
}

// NewReadMode returns a ReaderWriter decoding from r.
func NewReadMode(r *stream.Reader, refs RefCodec) *ReaderWriter {
	return &ReaderWriter{r: r, refs: refs}
}

// NewWriteMode returns a ReaderWriter encoding into w.
func NewWriteMode(w *stream.Writer, refs RefCodec) *ReaderWriter {
	return &ReaderWriter{w: w, refs: refs}
}

// Reading reports whether rw decodes.
func (rw *ReaderWriter) Reading() bool {
	return rw.r != nil
}

// Reader returns the underlying reader, nil in write mode.
func (rw *ReaderWriter) Reader() *stream.Reader {
	return rw.r
}

// Writer returns the underlying writer, nil in read mode.
func (rw *ReaderWriter) Writer() *stream.Writer {
	return rw.w
}

// Err returns the first error encountered.
func (rw *ReaderWriter) Err() error {
	return rw.err
}

// Fail records err unless an error is already recorded.
func (rw *ReaderWriter) Fail(err error) {
	if rw.err == nil && err != nil {
		rw.err = err
	}
}

// InRange reports whether version lies in [since, upTo]. A negative upTo
// leaves the range open.
func (rw *ReaderWriter) InRange(version, since, upTo int) bool {
	if version < since {
		return false
	}

	return upTo < 0 || version <= upTo
}

// Byte reads or writes one byte.
func (rw *ReaderWriter) Byte(v *byte) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		rw.w.Byte(*v)
		return
	}
	b, err := rw.r.Byte()
	rw.Fail(err)
	*v = b
}

// Int16 reads or writes a 16-bit integer.
func (rw *ReaderWriter) Int16(v *int16) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		rw.w.Int16(*v)
		return
	}
	x, err := rw.r.Int16()
	rw.Fail(err)
	*v = x
}

// UInt16 reads or writes an unsigned 16-bit integer.
func (rw *ReaderWriter) UInt16(v *uint16) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		rw.w.UInt16(*v)
		return
	}
	x, err := rw.r.UInt16()
	rw.Fail(err)
	*v = x
}

// Int32 reads or writes a 32-bit integer.
func (rw *ReaderWriter) Int32(v *int32) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		rw.w.Int32(*v)
		return
	}
	x, err := rw.r.Int32()
	rw.Fail(err)
	*v = x
}

// UInt32 reads or writes an unsigned 32-bit integer.
func (rw *ReaderWriter) UInt32(v *uint32) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		rw.w.UInt32(*v)
		return
	}
	x, err := rw.r.UInt32()
	rw.Fail(err)
	*v = x
}

// UInt64 reads or writes an unsigned 64-bit integer.
func (rw *ReaderWriter) UInt64(v *uint64) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		rw.w.UInt64(*v)
		return
	}
	x, err := rw.r.UInt64()
	rw.Fail(err)
	*v = x
}

// Float32 reads or writes a single-precision float.
func (rw *ReaderWriter) Float32(v *float32) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		rw.w.Float32(*v)
		return
	}
	x, err := rw.r.Float32()
	rw.Fail(err)
	*v = x
}

// Bool reads or writes a 32-bit boolean.
func (rw *ReaderWriter) Bool(v *bool) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		rw.w.Bool(*v)
		return
	}
	x, err := rw.r.Bool()
	rw.Fail(err)
	*v = x
}

// String reads or writes a length-prefixed string.
func (rw *ReaderWriter) String(v *string) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		rw.w.String(*v)
		return
	}
	x, err := rw.r.String()
	rw.Fail(err)
	*v = x
}

// Id reads or writes a lookback identifier.
func (rw *ReaderWriter) Id(v *stream.Ident) { //nolint:revive
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		rw.Fail(rw.w.Ident(*v))
		return
	}
	x, err := rw.r.Ident()
	rw.Fail(err)
	*v = x
}

// Bytes reads or writes exactly n bytes. Writing a slice of another length
// is an error.
func (rw *ReaderWriter) Bytes(v *[]byte, n int) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		if len(*v) != n {
			rw.Fail(fmt.Errorf("%w: expected %d bytes, have %d", errs.ErrChunkDecode, n, len(*v)))
			return
		}
		_, _ = rw.w.Write(*v)

		return
	}
	b, err := rw.r.Bytes(n)
	if err != nil {
		rw.Fail(err)
		return
	}
	*v = append([]byte(nil), b...)
}

// Rest reads all remaining input or writes v in full.
func (rw *ReaderWriter) Rest(v *[]byte) {
	if rw.err != nil {
		return
	}
	if rw.r == nil {
		_, _ = rw.w.Write(*v)
		return
	}
	b, _ := rw.r.Bytes(rw.r.Len())
	*v = append([]byte(nil), b...)
}

// NodeRef reads or writes a node reference through the attached RefCodec.
func (rw *ReaderWriter) NodeRef(v *Ref) {
	if rw.err != nil {
		return
	}
	if rw.refs == nil {
		rw.Fail(fmt.Errorf("%w: node references are not available here", errs.ErrInvalidNodeIndex))
		return
	}
	if rw.r == nil {
		rw.Fail(rw.refs.WriteRef(rw, *v))
		return
	}
	ref, err := rw.refs.ReadRef(rw)
	rw.Fail(err)
	*v = ref
}

// List reads or writes an int32 count followed by that many elements.
func List[T any](rw *ReaderWriter, items *[]T, elem func(rw *ReaderWriter, item *T)) {
	if rw.err != nil {
		return
	}

	n := int32(len(*items)) //nolint:gosec
	rw.Int32(&n)
	if rw.err != nil {
		return
	}
	if rw.Reading() {
		if n < 0 || int(n) > rw.r.Len() {
			rw.Fail(fmt.Errorf("%w: list count %d", errs.ErrTruncatedStream, n))
			return
		}
		*items = make([]T, n)
	}
	for i := range *items {
		elem(rw, &(*items)[i])
		if rw.err != nil {
			return
		}
	}
}
