package archive

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gbx/cipher"
	"github.com/arloliu/gbx/container"
	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/format"
	"github.com/arloliu/gbx/node"
)

var testKey = cipher.DeriveKey([]byte("test secret"))

func textPayload(lines int) []byte {
	var b strings.Builder
	for i := range lines {
		fmt.Fprintf(&b, "line %d: block %d at %d\n", i, i*31%97, i*i)
	}

	return []byte(b.String())
}

type fixture struct {
	data     []byte
	dds      []byte
	mapData  []byte
	readme   []byte
	hashName string
}

func buildFixture(t *testing.T) fixture {
	t.Helper()

	f := fixture{
		dds:      bytes.Repeat([]byte{0xDD, 0x53}, 300),
		mapData:  textPayload(500),
		readme:   []byte("hello pak"),
		hashName: "A1" + strings.Repeat("0f", 16),
	}

	b := NewBuilder(testKey)
	b.Flags = 3
	media, err := b.AddFolder("Media\\", nil)
	require.NoError(t, err)
	textures, err := b.AddFolder("Textures", media)
	require.NoError(t, err)
	maps, err := b.AddFolder("Maps", nil)
	require.NoError(t, err)

	_, err = b.Add(textures, "Grass.dds", f.dds, 0x09011000, false)
	require.NoError(t, err)
	_, err = b.Add(maps, "A01.Map.Gbx", f.mapData, 0x03043000, true)
	require.NoError(t, err)
	_, err = b.Add(nil, "readme.txt", f.readme, 0, false)
	require.NoError(t, err)
	_, err = b.Add(media, f.hashName, []byte{1, 2, 3}, 0, true)
	require.NoError(t, err)

	f.data, err = b.Bytes()
	require.NoError(t, err)

	return f
}

func open(t *testing.T, data []byte, opts ...Option) *Archive {
	t.Helper()

	a, err := Open(bytes.NewReader(data), int64(len(data)), testKey, opts...)
	require.NoError(t, err)

	return a
}

func TestOpenRoundTrip(t *testing.T) {
	f := buildFixture(t)
	a := open(t, f.data)

	require.Equal(t, int32(DefaultVersion), a.Version)
	require.Equal(t, int32(3), a.Flags)
	require.Len(t, a.Folders, 3)
	require.Len(t, a.Entries, 4)

	names := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		names = append(names, e.FullName())
	}
	require.Equal(t, []string{
		"Media/Textures/Grass.dds",
		"Maps/A01.Map.Gbx",
		"readme.txt",
		"Media/" + f.hashName,
	}, names)

	tests := []struct {
		path       string
		want       []byte
		compressed bool
	}{
		{path: "media\\textures\\GRASS.dds", want: f.dds},
		{path: "Maps/A01.Map.Gbx", want: f.mapData, compressed: true},
		{path: "/readme.txt", want: f.readme},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e, ok := a.Lookup(tt.path)
			require.True(t, ok)
			require.Equal(t, tt.compressed, e.IsCompressed())
			require.Equal(t, int32(len(tt.want)), e.UncompressedSize)

			ex, err := a.Extract(e)
			require.NoError(t, err)
			require.False(t, ex.Partial)
			require.Equal(t, tt.want, ex.Data)
		})
	}

	mapEntry, _ := a.Lookup("maps/a01.map.gbx")
	require.Less(t, mapEntry.CompressedSize, mapEntry.UncompressedSize)
	require.Equal(t, uint32(0x03043000), mapEntry.ClassID)

	_, ok := a.Lookup("Media/missing.dds")
	require.False(t, ok)
}

func TestHashedNames(t *testing.T) {
	f := buildFixture(t)
	a := open(t, f.data)

	e, ok := a.Lookup("media/" + f.hashName)
	require.True(t, ok)
	require.True(t, e.IsHashed())
	n, ok := e.HashedNameLength()
	require.True(t, ok)
	require.Equal(t, byte(0x1A), n)

	plain, _ := a.Lookup("readme.txt")
	require.False(t, plain.IsHashed())
	_, ok = plain.HashedNameLength()
	require.False(t, ok)

	require.False(t, newEntry(strings.Repeat("g", 34)).IsHashed())
	require.False(t, newEntry(strings.Repeat("a", 33)).IsHashed())
}

func TestFolderPath(t *testing.T) {
	root := &Folder{Name: "Media\\"}
	sub := &Folder{Name: "\\Textures\\", Parent: root}
	require.Equal(t, "Media/Textures", sub.Path())

	e := &Entry{Name: "Sub\\File.dds", Folder: sub}
	require.Equal(t, "Media/Textures/Sub/File.dds", e.FullName())
	require.Equal(t, "x.txt", (&Entry{Name: "x.txt", Folder: &Folder{}}).FullName())
}

func TestTruncatedEntries(t *testing.T) {
	f := buildFixture(t)
	a := open(t, f.data)

	t.Run("stored", func(t *testing.T) {
		e, _ := a.Lookup("Media/Textures/Grass.dds")
		start := int(a.dataStart) + int(e.Offset)
		// IV, two full blocks and three bytes of the third
		cut := f.data[:start+8+16+3]

		b := open(t, cut)
		ex, err := b.Extract(b.Entries[0])
		require.NoError(t, err)
		require.True(t, ex.Partial)
		require.Equal(t, f.dds[:16], ex.Data)
	})

	t.Run("compressed", func(t *testing.T) {
		e, _ := a.Lookup("Maps/A01.Map.Gbx")
		start := int(a.dataStart) + int(e.Offset)
		cut := f.data[:start+8+int(e.CompressedSize)/2]

		var logs bytes.Buffer
		b := open(t, cut, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		ex, err := b.Extract(b.Entries[1])
		require.NoError(t, err)
		require.True(t, ex.Partial)
		require.Less(t, len(ex.Data), len(f.mapData))
		require.Equal(t, f.mapData[:len(ex.Data)], ex.Data)
		require.Contains(t, logs.String(), "pak entry decoded partially")
	})

	t.Run("missing iv", func(t *testing.T) {
		e, _ := a.Lookup("Maps/A01.Map.Gbx")
		cut := f.data[:int(a.dataStart)+int(e.Offset)+4]

		b := open(t, cut)
		ex, err := b.Extract(b.Entries[1])
		require.NoError(t, err)
		require.True(t, ex.Partial)
		require.Empty(t, ex.Data)
	})

	t.Run("past the end", func(t *testing.T) {
		cut := f.data[:a.dataStart]
		b := open(t, cut)
		_, err := b.Extract(b.Entries[3])
		require.ErrorIs(t, err, errs.ErrInvalidArchive)
	})
}

func TestOpenErrors(t *testing.T) {
	f := buildFixture(t)

	t.Run("wrong key", func(t *testing.T) {
		_, err := Open(bytes.NewReader(f.data), int64(len(f.data)), cipher.DeriveKey([]byte("other")))
		require.ErrorIs(t, err, errs.ErrInvalidKey)
	})

	t.Run("bad magic", func(t *testing.T) {
		d := bytes.Clone(f.data)
		d[0] = 'X'
		_, err := Open(bytes.NewReader(d), int64(len(d)), testKey)
		require.ErrorIs(t, err, errs.ErrInvalidArchive)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := Open(bytes.NewReader(f.data[:30]), 30, testKey)
		require.ErrorIs(t, err, errs.ErrInvalidArchive)
	})

	t.Run("truncated index", func(t *testing.T) {
		d := f.data[:envelopeSize+indexPrefix+8]
		_, err := Open(bytes.NewReader(d), int64(len(d)), testKey)
		require.ErrorIs(t, err, errs.ErrInvalidArchive)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := Open(bytes.NewReader(f.data), int64(len(f.data)), nil)
		require.ErrorIs(t, err, errs.ErrInvalidKey)
	})

	t.Run("unknown cache codec", func(t *testing.T) {
		_, err := Open(bytes.NewReader(f.data), int64(len(f.data)), testKey, WithCache(format.CodecType(99)))
		require.ErrorIs(t, err, errs.ErrUnsupportedCodec)
	})
}

func TestExtractionCache(t *testing.T) {
	f := buildFixture(t)

	for _, codec := range []format.CodecType{format.CodecNone, format.CodecS2, format.CodecZstd, format.CodecLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			a := open(t, f.data, WithCache(codec))
			e, _ := a.Lookup("Maps/A01.Map.Gbx")

			first, err := a.Extract(e)
			require.NoError(t, err)
			second, err := a.Extract(e)
			require.NoError(t, err)
			require.Equal(t, f.mapData, second.Data)
			require.Equal(t, first, second)

			hashed := a.Entries[3]
			small, err := a.Extract(hashed)
			require.NoError(t, err)
			require.Equal(t, []byte{1, 2, 3}, small.Data)
			require.Equal(t, 2, a.cache.len())
		})
	}
}

func TestBuilderErrors(t *testing.T) {
	b := NewBuilder(testKey)
	_, err := b.Add(nil, "a.txt", nil, 0, false)
	require.NoError(t, err)
	_, err = b.Add(nil, "A.TXT", nil, 0, false)
	require.ErrorIs(t, err, errs.ErrDuplicateEntry)

	stray := &Folder{Name: "stray"}
	_, err = b.AddFolder("x", stray)
	require.ErrorIs(t, err, errs.ErrInvalidArchive)
	_, err = b.Add(stray, "b.txt", nil, 0, false)
	require.ErrorIs(t, err, errs.ErrInvalidArchive)

	_, err = NewBuilder(nil).Bytes()
	require.ErrorIs(t, err, errs.ErrInvalidKey)
}

func TestEmptyArchive(t *testing.T) {
	data, err := NewBuilder(testKey).Bytes()
	require.NoError(t, err)

	a := open(t, data)
	require.Empty(t, a.Entries)
	require.Empty(t, a.Folders)
}

func TestContainerEntries(t *testing.T) {
	c, err := container.New(node.NewGeneric(0x03043000))
	require.NoError(t, err)
	gbx, err := c.Bytes()
	require.NoError(t, err)

	b := NewBuilder(testKey)
	_, err = b.Add(nil, "Map.Gbx", gbx, 0x03043000, true)
	require.NoError(t, err)
	data, err := b.Bytes()
	require.NoError(t, err)

	a := open(t, data)
	e, ok := a.Lookup("map.gbx")
	require.True(t, ok)

	h, err := a.Header(e)
	require.NoError(t, err)
	require.Equal(t, uint32(0x03043000), h.Header.ClassID)

	n, err := a.Node(e)
	require.NoError(t, err)
	require.IsType(t, &node.Generic{}, n)
}
