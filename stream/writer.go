package stream

import (
	"io"
	"math"

	"github.com/arloliu/gbx/internal/pool"
)

// Writer appends little-endian values to a byte buffer.
type Writer struct {
	buf *pool.ByteBuffer
	ids *IdState
	put func(*pool.ByteBuffer)
}

// NewWriter creates a Writer backed by a private buffer.
func NewWriter() *Writer {
	return &Writer{buf: pool.NewByteBuffer(pool.ChunkBufferDefaultSize), ids: NewIdState()}
}

// NewPooledWriter creates a Writer backed by a pooled chunk scratch buffer.
// Release must be called once the written bytes are no longer referenced.
func NewPooledWriter(ids *IdState) *Writer {
	if ids == nil {
		ids = NewIdState()
	}

	return &Writer{buf: pool.GetChunkBuffer(), ids: ids, put: pool.PutChunkBuffer}
}

// NewBodyWriter creates a Writer backed by a pooled body-sized buffer.
// Release must be called once the written bytes are no longer referenced.
func NewBodyWriter(ids *IdState) *Writer {
	if ids == nil {
		ids = NewIdState()
	}

	return &Writer{buf: pool.GetBodyBuffer(), ids: ids, put: pool.PutBodyBuffer}
}

// NewWriterWithState creates a Writer with a private buffer sharing the given lookback state.
func NewWriterWithState(ids *IdState) *Writer {
	w := NewWriter()
	if ids != nil {
		w.ids = ids
	}

	return w
}

// Release returns a pooled buffer. The Writer must not be used afterwards.
func (w *Writer) Release() {
	if w.put != nil {
		w.put(w.buf)
		w.buf = nil
		w.put = nil
	}
}

// IdState returns the lookback state used by Ident.
func (w *Writer) IdState() *IdState {
	return w.ids
}

// Bytes returns the written bytes. The slice aliases the internal buffer.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of written bytes.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Reset discards the written bytes but keeps the lookback state.
func (w *Writer) Reset() {
	w.buf.Reset()
}

// Write appends p. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

// WriteTo writes the buffered bytes to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	return w.buf.WriteTo(dst)
}

// Byte appends one byte.
func (w *Writer) Byte(v byte) {
	_ = w.buf.WriteByte(v)
}

// Int16 appends a little-endian int16.
func (w *Writer) Int16(v int16) {
	w.buf.B = engine.AppendUint16(w.buf.B, uint16(v)) //nolint:gosec
}

// UInt16 appends a little-endian uint16.
func (w *Writer) UInt16(v uint16) {
	w.buf.B = engine.AppendUint16(w.buf.B, v)
}

// UInt32 appends a little-endian uint32.
func (w *Writer) UInt32(v uint32) {
	w.buf.B = engine.AppendUint32(w.buf.B, v)
}

// Int32 appends a little-endian int32.
func (w *Writer) Int32(v int32) {
	w.UInt32(uint32(v)) //nolint:gosec
}

// UInt64 appends a little-endian uint64.
func (w *Writer) UInt64(v uint64) {
	w.buf.B = engine.AppendUint64(w.buf.B, v)
}

// Float32 appends an IEEE-754 single.
func (w *Writer) Float32(v float32) {
	w.UInt32(math.Float32bits(v))
}

// Bool appends a 32-bit boolean.
func (w *Writer) Bool(v bool) {
	if v {
		w.UInt32(1)
		return
	}
	w.UInt32(0)
}

// String appends an int32 length followed by the string bytes.
func (w *Writer) String(s string) {
	w.Int32(int32(len(s))) //nolint:gosec
	w.buf.B = append(w.buf.B, s...)
}

// Ident appends a lookback identifier.
func (w *Writer) Ident(id Ident) error {
	return w.ids.write(w, id)
}

// PutUInt32At overwrites four bytes at offset off.
func (w *Writer) PutUInt32At(off int, v uint32) {
	engine.PutUint32(w.buf.B[off:], v)
}
