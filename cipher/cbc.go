package cipher

import (
	"crypto/cipher"
	"crypto/md5" //nolint:gosec
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/blowfish"

	"github.com/arloliu/gbx/errs"
)

// BlockSize is the Blowfish block size.
const BlockSize = blowfish.BlockSize

// KeySuffix is appended to the archive secret before hashing.
const KeySuffix = "NadeoPak"

// readChunk is the ciphertext read granularity, a multiple of BlockSize.
const readChunk = 4 * 1024

// DeriveKey returns MD5(secret || "NadeoPak").
func DeriveKey(secret []byte) []byte {
	h := md5.New() //nolint:gosec
	h.Write(secret)
	h.Write([]byte(KeySuffix))

	return h.Sum(nil)
}

// RoundUp returns n rounded up to a multiple of BlockSize.
func RoundUp(n int) int {
	return (n + BlockSize - 1) &^ (BlockSize - 1)
}

func newBlock(key []byte) (cipher.Block, error) {
	block, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidKey, err)
	}

	return block, nil
}

func ivBytes(iv uint64) []byte {
	b := make([]byte, BlockSize)
	binary.LittleEndian.PutUint64(b, iv)

	return b
}

type cbcReader struct {
	src   io.Reader
	mode  cipher.BlockMode
	buf   []byte
	plain []byte
	err   error
}

// NewCBCReader returns a reader decrypting src. A trailing partial block is
// dropped and reported as io.ErrUnexpectedEOF once the full blocks before it
// have been read.
func NewCBCReader(src io.Reader, key []byte, iv uint64) (io.Reader, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	return &cbcReader{
		src:  src,
		mode: cipher.NewCBCDecrypter(block, ivBytes(iv)),
		buf:  make([]byte, readChunk),
	}, nil
}

func (r *cbcReader) fill() {
	n, err := io.ReadFull(r.src, r.buf)
	full := n &^ (BlockSize - 1)
	if full > 0 {
		r.plain = r.buf[:full]
		r.mode.CryptBlocks(r.plain, r.plain)
	}

	switch {
	case err == nil:
	case n != full:
		r.err = fmt.Errorf("%w: %d bytes of a partial block", io.ErrUnexpectedEOF, n-full)
	case err == io.ErrUnexpectedEOF:
		r.err = io.EOF
	default:
		r.err = err
	}
}

func (r *cbcReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(r.plain) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.fill()
	}

	n := copy(p, r.plain)
	r.plain = r.plain[n:]

	return n, nil
}

// CBCWriter encrypts everything written to it.
type CBCWriter struct {
	dst     io.Writer
	mode    cipher.BlockMode
	pending []byte
	closed  bool
}

// NewCBCWriter returns a writer encrypting into dst.
func NewCBCWriter(dst io.Writer, key []byte, iv uint64) (*CBCWriter, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	return &CBCWriter{dst: dst, mode: cipher.NewCBCEncrypter(block, ivBytes(iv))}, nil
}

// Write buffers p and encrypts every complete block.
func (w *CBCWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}

	w.pending = append(w.pending, p...)
	full := len(w.pending) &^ (BlockSize - 1)
	if full == 0 {
		return len(p), nil
	}

	out := make([]byte, full)
	w.mode.CryptBlocks(out, w.pending[:full])
	w.pending = append(w.pending[:0], w.pending[full:]...)
	if _, err := w.dst.Write(out); err != nil {
		return 0, err
	}

	return len(p), nil
}

// Close zero-pads and flushes the last partial block. It does not close dst.
func (w *CBCWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if len(w.pending) == 0 {
		return nil
	}

	block := make([]byte, BlockSize)
	copy(block, w.pending)
	w.mode.CryptBlocks(block, block)
	w.pending = nil
	_, err := w.dst.Write(block)

	return err
}
