package archive

import (
	"bytes"
	"crypto/md5" //nolint:gosec
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/gbx/cipher"
	"github.com/arloliu/gbx/compress"
	"github.com/arloliu/gbx/container"
	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/internal/collision"
	"github.com/arloliu/gbx/internal/options"
	"github.com/arloliu/gbx/node"
)

// Archive is an opened pak archive. Extraction reads through the underlying
// io.ReaderAt and may be called concurrently.
type Archive struct {
	Version int32
	Flags   int32
	Folders []*Folder
	Entries []*Entry

	r         io.ReaderAt
	size      int64
	key       []byte
	dataStart int64
	names     *collision.Index
	cache     *extractionCache
	cfg       *config
}

// Extraction is the decoded payload of an entry.
type Extraction struct {
	Data []byte
	// Partial is set when the payload was truncated or corrupt and Data
	// holds the prefix that could be decoded.
	Partial bool
}

// Open parses the envelope and the encrypted index of the archive held by r.
// key is the Blowfish key, see cipher.DeriveKey.
//
// Returns an error wrapping errs.ErrInvalidArchive for a malformed envelope
// or index and errs.ErrInvalidKey when the index checksum does not match.
func Open(r io.ReaderAt, size int64, key []byte, opts ...Option) (*Archive, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	head := make([]byte, envelopeSize)
	if size < int64(envelopeSize+indexPrefix) {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrInvalidArchive, size)
	}
	if _, err := r.ReadAt(head, 0); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidArchive, err)
	}
	if string(head[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("%w: magic %q", errs.ErrInvalidArchive, head[:len(Magic)])
	}

	a := &Archive{
		Version: int32(binary.LittleEndian.Uint32(head[len(Magic):])), //nolint:gosec
		r:       r,
		size:    size,
		key:     key,
		cfg:     cfg,
	}
	iv := binary.LittleEndian.Uint64(head[len(Magic)+4:])

	cr, err := cipher.NewCBCReader(io.NewSectionReader(r, int64(envelopeSize), size-int64(envelopeSize)), key, iv)
	if err != nil {
		return nil, err
	}

	prefix := make([]byte, indexPrefix)
	if _, err := io.ReadFull(cr, prefix); err != nil {
		return nil, fmt.Errorf("%w: index: %w", errs.ErrInvalidArchive, err)
	}
	dataStart := int64(int32(binary.LittleEndian.Uint32(prefix[checksumSize:]))) //nolint:gosec
	indexLen := dataStart - int64(envelopeSize)
	if indexLen < indexPrefix || dataStart > size || indexLen%cipher.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %w: data start %d", errs.ErrInvalidArchive, errs.ErrInvalidKey, dataStart)
	}

	body := make([]byte, indexLen-checksumSize)
	copy(body, prefix[checksumSize:])
	if _, err := io.ReadFull(cr, body[indexPrefix-checksumSize:]); err != nil {
		return nil, fmt.Errorf("%w: index: %w", errs.ErrInvalidArchive, err)
	}
	if sum := md5.Sum(body); !bytes.Equal(sum[:], prefix[:checksumSize]) { //nolint:gosec
		return nil, fmt.Errorf("%w: index checksum mismatch", errs.ErrInvalidKey)
	}

	idx, err := parseIndex(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidArchive, err)
	}

	a.Flags = idx.flags
	a.Folders = idx.folders
	a.Entries = idx.entries
	a.dataStart = dataStart
	a.names = collision.NewIndex(len(idx.entries))
	for i, e := range a.Entries {
		if err := a.names.Add(e.FullName(), i); err != nil {
			// the first entry of a path wins
			cfg.logger.Warn("pak duplicate entry", "path", e.FullName(), "error", err)
		}
	}
	if cfg.cache {
		if a.cache, err = newExtractionCache(cfg.cacheCodec); err != nil {
			return nil, err
		}
	}

	cfg.logger.Debug("pak archive opened",
		"version", a.Version,
		"folders", len(a.Folders),
		"entries", len(a.Entries),
		"dataStart", dataStart,
	)

	return a, nil
}

// Lookup returns the entry at path. Matching ignores case and accepts both
// separators.
func (a *Archive) Lookup(path string) (*Entry, bool) {
	i, ok := a.names.Lookup(path)
	if !ok {
		return nil, false
	}

	return a.Entries[i], true
}

// Extract decrypts and, when compressed, inflates the payload of e.
func (a *Archive) Extract(e *Entry) (Extraction, error) {
	if a.cache != nil {
		if ex, ok, err := a.cache.get(e.pos); err != nil || ok {
			return ex, err
		}
	}

	ex, err := a.extract(e)
	if err != nil {
		return Extraction{}, err
	}
	if a.cache != nil {
		a.cache.put(e.pos, ex)
	}

	return ex, nil
}

func (a *Archive) extract(e *Entry) (Extraction, error) {
	start := a.dataStart + int64(e.Offset)
	if start > a.size {
		return Extraction{}, fmt.Errorf("%w: %s starts past the end", errs.ErrInvalidArchive, e.FullName())
	}
	region := min(int64(cipher.RoundUp(8+int(e.CompressedSize))), a.size-start)

	sr := io.NewSectionReader(a.r, start, region)
	var iv [8]byte
	if _, err := io.ReadFull(sr, iv[:]); err != nil {
		a.partial(e, err)
		return Extraction{Partial: true}, nil
	}

	cr, err := cipher.NewCBCReader(sr, a.key, binary.LittleEndian.Uint64(iv[:]))
	if err != nil {
		return Extraction{}, err
	}

	size := int(e.UncompressedSize)
	if e.IsCompressed() {
		data, err := compress.NewDeflateCompressor().InflatePrefix(cr, size)
		if err != nil {
			if !errors.Is(err, errs.ErrPartialData) {
				return Extraction{}, err
			}
			a.partial(e, err)

			return Extraction{Data: data, Partial: true}, nil
		}

		return Extraction{Data: data}, nil
	}

	data, err := compress.ReadPrefix(cr, size)
	if err != nil {
		a.partial(e, err)
		return Extraction{Data: data, Partial: true}, nil
	}

	return Extraction{Data: data}, nil
}

func (a *Archive) partial(e *Entry, err error) {
	a.cfg.logger.Warn("pak entry decoded partially", "entry", e.FullName(), "error", err)
}

// Header extracts e and parses its container header.
func (a *Archive) Header(e *Entry, opts ...container.Option) (*container.Container, error) {
	ex, err := a.Extract(e)
	if err != nil {
		return nil, err
	}

	return container.ParseHeader(ex.Data, opts...)
}

// Node extracts e and parses it as a whole container.
func (a *Archive) Node(e *Entry, opts ...container.Option) (node.Node, error) {
	ex, err := a.Extract(e)
	if err != nil {
		return nil, err
	}

	c, err := container.Parse(ex.Data, opts...)
	if err != nil {
		return nil, err
	}

	return c.Node, nil
}
