package archive

import (
	"bytes"
	"crypto/md5" //nolint:gosec
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/arloliu/gbx/cipher"
	"github.com/arloliu/gbx/compress"
	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/internal/collision"
)

// Builder assembles a pak archive in memory.
type Builder struct {
	Version int32
	Flags   int32

	key      []byte
	iv       uint64
	folders  []*Folder
	entries  []*Entry
	payloads [][]byte
	names    *collision.Index
	offset   int64
}

// NewBuilder returns a Builder encrypting with key.
func NewBuilder(key []byte) *Builder {
	return &Builder{
		Version: DefaultVersion,
		key:     key,
		iv:      rand.Uint64(), //nolint:gosec
		names:   collision.NewIndex(0),
	}
}

// AddFolder adds a folder under parent, or at the root when parent is nil.
func (b *Builder) AddFolder(name string, parent *Folder) (*Folder, error) {
	if parent != nil && !slices.Contains(b.folders, parent) {
		return nil, fmt.Errorf("%w: parent folder %q is not part of the archive", errs.ErrInvalidArchive, parent.Name)
	}
	f := &Folder{Name: name, Parent: parent}
	b.folders = append(b.folders, f)

	return f, nil
}

// Add appends a file. With deflate set the payload is stored zlib-deflated.
//
// Returns errs.ErrDuplicateEntry when the full name is already taken.
func (b *Builder) Add(folder *Folder, name string, data []byte, classID uint32, deflate bool) (*Entry, error) {
	if folder != nil && !slices.Contains(b.folders, folder) {
		return nil, fmt.Errorf("%w: folder %q is not part of the archive", errs.ErrInvalidArchive, folder.Name)
	}

	e := newEntry(name)
	e.Folder = folder
	e.ClassID = classID
	if err := b.names.Add(e.FullName(), len(b.entries)); err != nil {
		return nil, fmt.Errorf("%w: %s", err, e.FullName())
	}

	payload, err := b.payload(e, data, deflate)
	if err != nil {
		return nil, err
	}
	e.Offset = int32(b.offset) //nolint:gosec
	e.pos = len(b.entries)
	b.offset += int64(cipher.RoundUp(8 + len(payload)))

	b.entries = append(b.entries, e)
	b.payloads = append(b.payloads, payload)

	return e, nil
}

func (b *Builder) payload(e *Entry, data []byte, deflate bool) ([]byte, error) {
	e.UncompressedSize = int32(len(data)) //nolint:gosec
	if !deflate {
		e.CompressedSize = e.UncompressedSize
		return data, nil
	}

	comp, err := compress.NewDeflateCompressor().Compress(data)
	if err != nil {
		return nil, err
	}
	e.Flags |= FlagDeflate
	e.CompressedSize = int32(len(comp)) //nolint:gosec

	return comp, nil
}

// Bytes serializes the archive.
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteTo writes the archive to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	body := encodeIndex(b.Flags, b.folders, b.entries)
	body = append(body, make([]byte, cipher.RoundUp(len(body))-len(body))...)
	dataStart := envelopeSize + checksumSize + len(body)
	binary.LittleEndian.PutUint32(body, uint32(dataStart)) //nolint:gosec
	sum := md5.Sum(body)                                   //nolint:gosec

	var out bytes.Buffer
	out.WriteString(Magic)
	out.Write(binary.LittleEndian.AppendUint32(nil, uint32(b.Version))) //nolint:gosec
	out.Write(binary.LittleEndian.AppendUint64(nil, b.iv))

	if err := b.encrypt(&out, b.iv, sum[:], body); err != nil {
		return 0, err
	}

	for i, payload := range b.payloads {
		iv := b.iv + uint64(i) + 1 //nolint:gosec
		out.Write(binary.LittleEndian.AppendUint64(nil, iv))
		if err := b.encrypt(&out, iv, payload); err != nil {
			return 0, err
		}
	}

	return out.WriteTo(w)
}

func (b *Builder) encrypt(dst io.Writer, iv uint64, parts ...[]byte) error {
	cw, err := cipher.NewCBCWriter(dst, b.key, iv)
	if err != nil {
		return err
	}
	for _, p := range parts {
		if _, err := cw.Write(p); err != nil {
			return err
		}
	}

	return cw.Close()
}
