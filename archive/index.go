package archive

import (
	"crypto/md5" //nolint:gosec
	"fmt"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/stream"
)

// Envelope layout.
const (
	Magic          = "NadeoPak"
	DefaultVersion = 18

	envelopeSize = len(Magic) + 4 + 8
	checksumSize = md5.Size
	// indexPrefix is the checksum plus the data start and flags words.
	indexPrefix = checksumSize + 8
)

type index struct {
	checksum  [checksumSize]byte
	dataStart int32
	flags     int32
	folders   []*Folder
	entries   []*Entry
}

// parseIndex decodes the decrypted index. body is the plaintext following
// the checksum.
func parseIndex(body []byte) (*index, error) {
	r := stream.NewReader(body)
	idx := &index{}

	var err error
	if idx.dataStart, err = r.Int32(); err != nil {
		return nil, err
	}
	if idx.flags, err = r.Int32(); err != nil {
		return nil, err
	}

	numFolders, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if numFolders < 0 || int(numFolders) > r.Len()/8 {
		return nil, fmt.Errorf("%w: %d folders", errs.ErrInvalidArchive, numFolders)
	}

	parents := make([]int32, numFolders)
	idx.folders = make([]*Folder, numFolders)
	for i := range idx.folders {
		if parents[i], err = r.Int32(); err != nil {
			return nil, err
		}
		name, err := r.String()
		if err != nil {
			return nil, err
		}
		idx.folders[i] = &Folder{Name: name}
	}
	for i, p := range parents {
		if p < 0 {
			continue
		}
		if int(p) >= len(idx.folders) {
			return nil, fmt.Errorf("%w: folder %d has parent %d of %d", errs.ErrInvalidArchive, i, p, len(idx.folders))
		}
		idx.folders[i].Parent = idx.folders[p]
	}
	if err := checkFolderCycles(idx.folders); err != nil {
		return nil, err
	}

	numFiles, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if numFiles < 0 || int(numFiles) > r.Len()/36 {
		return nil, fmt.Errorf("%w: %d files", errs.ErrInvalidArchive, numFiles)
	}

	idx.entries = make([]*Entry, numFiles)
	for i := range idx.entries {
		e, err := readEntry(r, idx.folders)
		if err != nil {
			return nil, fmt.Errorf("archive entry %d: %w", i, err)
		}
		e.pos = i
		idx.entries[i] = e
	}

	return idx, nil
}

func checkFolderCycles(folders []*Folder) error {
	for i, f := range folders {
		depth := 0
		for cur := f.Parent; cur != nil; cur = cur.Parent {
			depth++
			if depth > len(folders) {
				return fmt.Errorf("%w: folder %d is its own ancestor", errs.ErrInvalidArchive, i)
			}
		}
	}

	return nil
}

func readEntry(r *stream.Reader, folders []*Folder) (*Entry, error) {
	folder, err := r.Int32()
	if err != nil {
		return nil, err
	}
	name, err := r.String()
	if err != nil {
		return nil, err
	}

	e := newEntry(name)
	if folder >= 0 {
		if int(folder) >= len(folders) {
			return nil, fmt.Errorf("%w: folder %d of %d", errs.ErrInvalidArchive, folder, len(folders))
		}
		e.Folder = folders[folder]
	}

	for _, v := range []*int32{&e.U01, &e.UncompressedSize, &e.CompressedSize, &e.Offset} {
		if *v, err = r.Int32(); err != nil {
			return nil, err
		}
	}
	if e.UncompressedSize < 0 || e.CompressedSize < 0 || e.Offset < 0 {
		return nil, fmt.Errorf("%w: negative size or offset for %q", errs.ErrInvalidArchive, name)
	}
	if e.ClassID, err = r.UInt32(); err != nil {
		return nil, err
	}
	if e.Flags, err = r.UInt64(); err != nil {
		return nil, err
	}

	return e, nil
}

// encodeIndex returns the index body (everything after the checksum) with
// the data start word left at zero.
func encodeIndex(flags int32, folders []*Folder, entries []*Entry) []byte {
	pos := make(map[*Folder]int32, len(folders))
	for i, f := range folders {
		pos[f] = int32(i) //nolint:gosec
	}
	ref := func(f *Folder) int32 {
		if f == nil {
			return -1
		}
		return pos[f]
	}

	w := stream.NewWriter()
	w.Int32(0)
	w.Int32(flags)

	w.Int32(int32(len(folders))) //nolint:gosec
	for _, f := range folders {
		w.Int32(ref(f.Parent))
		w.String(f.Name)
	}

	w.Int32(int32(len(entries))) //nolint:gosec
	for _, e := range entries {
		w.Int32(ref(e.Folder))
		w.String(e.Name)
		w.Int32(e.U01)
		w.Int32(e.UncompressedSize)
		w.Int32(e.CompressedSize)
		w.Int32(e.Offset)
		w.UInt32(e.ClassID)
		w.UInt64(e.Flags)
	}

	return w.Bytes()
}
