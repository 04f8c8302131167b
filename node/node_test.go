package node

import (
	"errors"
	"slices"
	"testing"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/stream"
	"github.com/stretchr/testify/require"
)

type sampleChunk struct {
	id      uint32
	Version int32
	Value   int32
	Weight  float32
}

func (c *sampleChunk) ID() uint32 { return c.id }

func (c *sampleChunk) ChunkVersion() int { return int(c.Version) }

func (c *sampleChunk) ReadWrite(_ Node, rw *ReaderWriter) error {
	rw.Int32(&c.Version)
	rw.Int32(&c.Value)
	if rw.InRange(int(c.Version), 2, 3) {
		rw.Float32(&c.Weight)
	}

	return rw.Err()
}

// ==============================================================================
// Node and IDs
// ==============================================================================

func TestClassOf(t *testing.T) {
	require.Equal(t, uint32(0x03043000), ClassOf(0x03043002))
	require.Equal(t, uint32(0x002), ChunkIndex(0x03043002))
}

func TestGeneric(t *testing.T) {
	n := NewGeneric(0x0A005000)

	var asNode Node = n
	require.Equal(t, uint32(0x0A005000), asNode.ClassID())
	require.Equal(t, 0, asNode.Chunks().Len())
	require.Equal(t, 0, asNode.HeaderChunks().Len())
	require.NotSame(t, asNode.Chunks(), asNode.HeaderChunks())
}

// ==============================================================================
// ChunkSet
// ==============================================================================

func TestChunkSet_OrderAndUniqueness(t *testing.T) {
	var s ChunkSet

	require.NoError(t, s.Add(&sampleChunk{id: 0x0A005003}))
	require.NoError(t, s.Add(&sampleChunk{id: 0x0A005001}))
	require.NoError(t, s.AddRaw(&OpaqueChunk{ChunkID: 0x0A005002}, []byte{1, 2}, true))

	err := s.Add(&OpaqueChunk{ChunkID: 0x0A005001})
	require.ErrorIs(t, err, errs.ErrDuplicateChunk)

	require.Equal(t, []uint32{0x0A005003, 0x0A005001, 0x0A005002}, s.IDs())
	require.Equal(t, 3, s.Len())
	require.True(t, s.IsHeavy(0x0A005002))
	require.False(t, s.IsHeavy(0x0A005001))
	require.Equal(t, []byte{1, 2}, s.Raw(0x0A005002))

	got := slices.Collect(s.All())
	require.Len(t, got, 3)
	require.Equal(t, uint32(0x0A005003), got[0].ID())
}

func TestChunkSet_Trailing(t *testing.T) {
	var s ChunkSet
	require.NoError(t, s.Add(&sampleChunk{id: 1}))

	s.SetTrailing(1, []byte{0xEE})
	s.SetTrailing(2, []byte{0xFF})
	require.Equal(t, []byte{0xEE}, s.Trailing(1))
	require.Nil(t, s.Trailing(2))
}

func TestChunkSet_RemoveReplace(t *testing.T) {
	var s ChunkSet
	a := &sampleChunk{id: 1}
	b := &sampleChunk{id: 2}
	c := &sampleChunk{id: 3}
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	require.NoError(t, s.Add(c))

	require.True(t, s.Remove(2))
	require.False(t, s.Remove(2))
	require.Equal(t, []uint32{1, 3}, s.IDs())

	got, ok := s.Get(3)
	require.True(t, ok)
	require.Same(t, c, got)

	repl := &sampleChunk{id: 1, Value: 9}
	s.Replace(repl)
	got, ok = s.Get(1)
	require.True(t, ok)
	require.Same(t, repl, got)
	require.Equal(t, []uint32{1, 3}, s.IDs())

	s.Replace(&sampleChunk{id: 4})
	require.True(t, s.Has(4))
	require.Equal(t, []uint32{1, 3, 4}, s.IDs())
}

func TestChunkSet_Find(t *testing.T) {
	var s ChunkSet
	require.NoError(t, s.Add(&OpaqueChunk{ChunkID: 1}))
	require.NoError(t, s.Add(&sampleChunk{id: 2, Value: 5}))

	c, ok := Find[*sampleChunk](&s)
	require.True(t, ok)
	require.Equal(t, int32(5), c.Value)

	var empty ChunkSet
	_, ok = Find[*sampleChunk](&empty)
	require.False(t, ok)
}

// ==============================================================================
// Skippable chunks
// ==============================================================================

func encodeSample(t *testing.T, c *sampleChunk) []byte {
	t.Helper()

	w := stream.NewWriter()
	require.NoError(t, c.ReadWrite(nil, NewWriteMode(w, nil)))

	return w.Bytes()
}

func sampleDecoder(id uint32) DecodeFunc {
	return func(raw []byte) (Chunk, error) {
		c := &sampleChunk{id: id}
		rw := NewReadMode(stream.NewReader(raw), nil)
		if err := c.ReadWrite(nil, rw); err != nil {
			return nil, err
		}

		return c, nil
	}
}

func TestSkippableChunk_Discover(t *testing.T) {
	raw := encodeSample(t, &sampleChunk{Version: 2, Value: 7, Weight: 0.5})
	sc := NewSkippableChunk(0x0A005004, raw, sampleDecoder(0x0A005004))

	var s ChunkSet
	require.NoError(t, s.Add(sc))

	_, ok := Find[*sampleChunk](&s)
	require.False(t, ok, "find must not discover")
	require.Equal(t, StateRaw, sc.State())
	require.Nil(t, sc.Decoded())

	c, err := s.Discover(0x0A005004)
	require.NoError(t, err)
	require.Equal(t, StateDecoded, sc.State())
	decoded, ok := c.(*sampleChunk)
	require.True(t, ok)
	require.Equal(t, int32(7), decoded.Value)
	require.InDelta(t, 0.5, decoded.Weight, 0)

	again, err := s.Discover(0x0A005004)
	require.NoError(t, err)
	require.Same(t, c, again)

	found, ok := Find[*sampleChunk](&s)
	require.True(t, ok)
	require.Same(t, decoded, found)
}

func TestSkippableChunk_DiscoverFailure(t *testing.T) {
	raw := []byte{1, 2}
	broken := NewSkippableChunk(5, raw, sampleDecoder(5))
	undecodable := NewSkippableChunk(6, raw, nil)

	var s ChunkSet
	require.NoError(t, s.Add(broken))
	require.NoError(t, s.Add(undecodable))
	require.NoError(t, s.Add(&sampleChunk{id: 7}))

	err := s.DiscoverAll()
	require.ErrorIs(t, err, errs.ErrChunkDecode)
	require.ErrorIs(t, err, errs.ErrUnknownChunk)
	require.Equal(t, StateRaw, broken.State())

	w := stream.NewWriter()
	require.NoError(t, broken.ReadWrite(nil, NewWriteMode(w, nil)))
	require.Equal(t, raw, w.Bytes(), "raw chunk writes its original bytes")

	_, err = s.Discover(99)
	require.ErrorIs(t, err, errs.ErrUnknownChunk)

	c, err := s.Discover(7)
	require.NoError(t, err)
	require.Equal(t, uint32(7), c.ID())
}

func TestSkippableState_String(t *testing.T) {
	require.Equal(t, "Raw", StateRaw.String())
	require.Equal(t, "Decoded", StateDecoded.String())
	require.Equal(t, "Unknown", SkippableState(9).String())
}

// ==============================================================================
// ReaderWriter
// ==============================================================================

func TestReaderWriter_VersionGating(t *testing.T) {
	// Weight is present for versions 2..3 only.
	tests := []struct {
		version int32
		size    int
	}{
		{version: 1, size: 8},
		{version: 2, size: 12},
		{version: 3, size: 12},
		{version: 4, size: 8},
	}
	for _, tt := range tests {
		src := &sampleChunk{Version: tt.version, Value: 3, Weight: 2.25}
		raw := encodeSample(t, src)
		require.Len(t, raw, tt.size, "version %d", tt.version)

		got := &sampleChunk{}
		require.NoError(t, got.ReadWrite(nil, NewReadMode(stream.NewReader(raw), nil)))
		require.Equal(t, tt.version, got.Version)
		if tt.size == 12 {
			require.InDelta(t, 2.25, got.Weight, 0)
		} else {
			require.Zero(t, got.Weight)
		}
		require.Equal(t, int(tt.version), got.ChunkVersion())
	}
}

func TestReaderWriter_InRange(t *testing.T) {
	rw := NewWriteMode(stream.NewWriter(), nil)

	require.False(t, rw.InRange(2, 3, 5))
	require.True(t, rw.InRange(3, 3, 5))
	require.True(t, rw.InRange(5, 3, 5))
	require.False(t, rw.InRange(6, 3, 5))
	require.True(t, rw.InRange(100, 3, -1))
}

type rwRecord struct {
	b     byte
	i16   int16
	u32   uint32
	ok    bool
	name  string
	id    stream.Ident
	blob  []byte
	items []int32
	rest  []byte
}

func (r *rwRecord) readWrite(rw *ReaderWriter) error {
	rw.Byte(&r.b)
	rw.Int16(&r.i16)
	rw.UInt32(&r.u32)
	rw.Bool(&r.ok)
	rw.String(&r.name)
	rw.Id(&r.id)
	rw.Bytes(&r.blob, 3)
	List(rw, &r.items, func(rw *ReaderWriter, v *int32) { rw.Int32(v) })
	rw.Rest(&r.rest)

	return rw.Err()
}

func TestReaderWriter_RoundTrip(t *testing.T) {
	src := &rwRecord{
		b: 1, i16: -2, u32: 3, ok: true, name: "Island",
		id: stream.StringIdent("Bay"), blob: []byte{7, 8, 9},
		items: []int32{10, 20}, rest: []byte{0xAA, 0xBB},
	}

	w := stream.NewWriter()
	require.NoError(t, src.readWrite(NewWriteMode(w, nil)))

	got := &rwRecord{}
	rw := NewReadMode(stream.NewReader(w.Bytes()), nil)
	require.True(t, rw.Reading())
	require.NoError(t, got.readWrite(rw))
	require.Equal(t, src, got)
}

func TestReaderWriter_StickyError(t *testing.T) {
	rw := NewReadMode(stream.NewReader([]byte{1, 0}), nil)

	var a, b int32
	rw.Int32(&a)
	rw.Int32(&b)
	require.ErrorIs(t, rw.Err(), errs.ErrTruncatedStream)

	first := rw.Err()
	rw.Fail(errors.New("later"))
	require.Equal(t, first, rw.Err())
}

func TestReaderWriter_BytesLengthMismatch(t *testing.T) {
	rw := NewWriteMode(stream.NewWriter(), nil)
	blob := []byte{1}
	rw.Bytes(&blob, 4)
	require.ErrorIs(t, rw.Err(), errs.ErrChunkDecode)
}

func TestReaderWriter_ListCountGuard(t *testing.T) {
	w := stream.NewWriter()
	w.Int32(1000)
	rw := NewReadMode(stream.NewReader(w.Bytes()), nil)

	var items []int32
	List(rw, &items, func(rw *ReaderWriter, v *int32) { rw.Int32(v) })
	require.ErrorIs(t, rw.Err(), errs.ErrTruncatedStream)
}

func TestReaderWriter_NodeRefWithoutCodec(t *testing.T) {
	rw := NewReadMode(stream.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF}), nil)

	var ref Ref
	rw.NodeRef(&ref)
	require.ErrorIs(t, rw.Err(), errs.ErrInvalidNodeIndex)
	require.True(t, ref.IsNull())
}

// ==============================================================================
// References
// ==============================================================================

func TestRef(t *testing.T) {
	require.True(t, Ref{}.IsNull())

	inline := NodeRefOf(NewGeneric(1))
	require.False(t, inline.IsNull())
	require.False(t, inline.IsExternal())

	ext := Ref{External: &External{Flags: ResourceFlag}}
	require.True(t, ext.IsExternal())
	require.True(t, ext.External.IsResource())
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name     string
		level    int
		folders  []string
		file     string
		expected string
	}{
		{"file only", 0, nil, "Tree.Mesh.Gbx", "Tree.Mesh.Gbx"},
		{"folders", 0, []string{"Media", "Texture\\"}, "Grass.dds", "Media/Texture/Grass.dds"},
		{"ancestors", 2, []string{"Skins"}, "Car\\Body.zip", "../../Skins/Car/Body.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, JoinPath(tt.level, tt.folders, tt.file))
		})
	}
}
