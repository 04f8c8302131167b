package archive

import (
	"regexp"
	"strconv"
	"strings"
)

// CompressionMask selects the flag bits marking a zlib-compressed entry.
const CompressionMask uint64 = 0x7C

// FlagDeflate is the compression flag written by Builder.
const FlagDeflate uint64 = 0x04

var hashedName = regexp.MustCompile(`^[0-9a-fA-F]{34}$`)

// Folder is a directory of the archive.
type Folder struct {
	Name string
	// Parent is nil for root folders.
	Parent *Folder
}

// Path returns the folder names from the root down to f, joined with "/".
func (f *Folder) Path() string {
	var names []string
	for cur := f; cur != nil; cur = cur.Parent {
		names = append(names, strings.Trim(strings.ReplaceAll(cur.Name, "\\", "/"), "/"))
	}

	var b strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		if names[i] == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(names[i])
	}

	return b.String()
}

// Entry is a file of the archive index.
type Entry struct {
	Name string
	// Folder is nil for entries at the archive root.
	Folder           *Folder
	U01              int32
	UncompressedSize int32
	CompressedSize   int32
	// Offset is relative to the start of the entry data.
	Offset  int32
	ClassID uint32
	Flags   uint64

	pos    int
	hashed bool
}

func newEntry(name string) *Entry {
	return &Entry{Name: name, hashed: hashedName.MatchString(name)}
}

// IsCompressed reports whether the payload is zlib-compressed.
func (e *Entry) IsCompressed() bool {
	return e.Flags&CompressionMask != 0
}

// IsHashed reports whether Name is a 34 hex digit hashed name.
func (e *Entry) IsHashed() bool {
	return e.hashed
}

// HashedNameLength returns the length of the original name of a hashed
// entry, encoded by its first two hex digits in reverse order.
func (e *Entry) HashedNameLength() (byte, bool) {
	if !e.hashed {
		return 0, false
	}

	v, err := strconv.ParseUint(string([]byte{e.Name[1], e.Name[0]}), 16, 8)
	if err != nil {
		return 0, false
	}

	return byte(v), true
}

// FullName returns the entry path from the archive root with "/" separators.
func (e *Entry) FullName() string {
	name := strings.ReplaceAll(e.Name, "\\", "/")
	if e.Folder == nil {
		return name
	}
	dir := e.Folder.Path()
	if dir == "" {
		return name
	}

	return dir + "/" + name
}

func (e *Entry) String() string {
	return e.FullName()
}
