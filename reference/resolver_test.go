package reference

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/node"
	"github.com/stretchr/testify/require"
)

// countingFS records how many times each file is opened.
type countingFS struct {
	fs.FS
	opens map[string]int
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens[name]++
	return c.FS.Open(name)
}

func classFile(classID uint32) *fstest.MapFile {
	return &fstest.MapFile{Data: binary.LittleEndian.AppendUint32(nil, classID)}
}

// fakeLoader decodes a 4-byte class ID into a Generic node.
func fakeLoader(calls *[]Depth) Loader {
	return func(data []byte, depth Depth) (node.Node, error) {
		*calls = append(*calls, depth)
		if len(data) != 4 {
			return nil, errors.New("bad file")
		}

		return node.NewGeneric(binary.LittleEndian.Uint32(data)), nil
	}
}

func newTestResolver(t *testing.T, files fstest.MapFS, base string, calls *[]Depth) (*Resolver, *countingFS) {
	t.Helper()

	cfs := &countingFS{FS: files, opens: map[string]int{}}
	r, err := NewResolver(cfs, base, fakeLoader(calls))
	require.NoError(t, err)

	return r, cfs
}

func TestResolver_Idempotent(t *testing.T) {
	var calls []Depth
	r, cfs := newTestResolver(t, fstest.MapFS{
		"Media/Texture/Grass.dds": classFile(0x09011000),
	}, "Maps", &calls)

	ext := &node.External{Index: 1, FileName: "Grass.dds", Path: "../Media/Texture/Grass.dds"}
	require.Equal(t, Unresolved, r.State(ext))

	first, err := r.Resolve(ext, DepthFull)
	require.NoError(t, err)
	require.Equal(t, uint32(0x09011000), first.ClassID())
	require.Equal(t, Resolved, r.State(ext))

	second, err := r.Resolve(ext, DepthFull)
	require.NoError(t, err)
	require.Same(t, first, second)

	header, err := r.Resolve(ext, DepthHeader)
	require.NoError(t, err)
	require.Same(t, first, header, "a full result satisfies header depth")

	require.Equal(t, 1, cfs.opens["Media/Texture/Grass.dds"])
	require.Equal(t, []Depth{DepthFull}, calls)
}

func TestResolver_UnresolvableIsCached(t *testing.T) {
	var calls []Depth
	r, cfs := newTestResolver(t, fstest.MapFS{}, ".", &calls)

	ext := &node.External{Index: 1, Path: "Missing.Gbx"}

	n, err := r.Resolve(ext, DepthFull)
	require.ErrorIs(t, err, errs.ErrReferenceUnresolvable)
	require.Nil(t, n)
	require.Equal(t, ResolvedNull, r.State(ext))

	n2, err2 := r.Resolve(ext, DepthFull)
	require.Nil(t, n2)
	require.Equal(t, err, err2)
	require.Equal(t, 1, cfs.opens["Missing.Gbx"])
	require.Empty(t, calls)
}

func TestResolver_HeaderUpgrade(t *testing.T) {
	var calls []Depth
	r, cfs := newTestResolver(t, fstest.MapFS{"A.Gbx": classFile(0x03043000)}, ".", &calls)
	ext := &node.External{Path: "A.Gbx"}

	h, err := r.Resolve(ext, DepthHeader)
	require.NoError(t, err)
	h2, err := r.Resolve(ext, DepthHeader)
	require.NoError(t, err)
	require.Same(t, h, h2)

	full, err := r.Resolve(ext, DepthFull)
	require.NoError(t, err)
	require.NotNil(t, full)

	full2, err := r.Resolve(ext, DepthFull)
	require.NoError(t, err)
	require.Same(t, full, full2)

	require.Equal(t, []Depth{DepthHeader, DepthFull}, calls)
	require.Equal(t, 2, cfs.opens["A.Gbx"])
}

func TestResolver_FailedUpgradeIsCached(t *testing.T) {
	var calls []Depth
	files := fstest.MapFS{"A.Gbx": classFile(0x03043000)}
	cfs := &countingFS{FS: files, opens: map[string]int{}}
	r, err := NewResolver(cfs, ".", func(data []byte, depth Depth) (node.Node, error) {
		calls = append(calls, depth)
		if depth == DepthFull {
			return nil, errors.New("body damaged")
		}

		return node.NewGeneric(binary.LittleEndian.Uint32(data)), nil
	})
	require.NoError(t, err)
	ext := &node.External{Path: "A.Gbx"}

	header, err := r.Resolve(ext, DepthHeader)
	require.NoError(t, err)

	full, err := r.Resolve(ext, DepthFull)
	require.ErrorIs(t, err, errs.ErrReferenceUnresolvable)
	require.Same(t, header, full)
	require.Equal(t, Resolved, r.State(ext))

	again, err2 := r.Resolve(ext, DepthFull)
	require.Equal(t, err, err2)
	require.Same(t, header, again)

	h2, err := r.Resolve(ext, DepthHeader)
	require.NoError(t, err)
	require.Same(t, header, h2)

	require.Equal(t, 2, cfs.opens["A.Gbx"])
	require.Equal(t, []Depth{DepthHeader, DepthFull}, calls)
}

func TestResolver_SharedPath(t *testing.T) {
	var calls []Depth
	r, cfs := newTestResolver(t, fstest.MapFS{"Skins/Car.zip": classFile(0x01001000)}, "Maps", &calls)

	a := &node.External{Index: 1, Path: "../Skins/Car.zip"}
	b := &node.External{Index: 2, Path: "../skins/car.zip"}

	na, err := r.Resolve(a, DepthFull)
	require.NoError(t, err)
	nb, err := r.Resolve(b, DepthFull)
	require.NoError(t, err)
	require.Same(t, na, nb, "targets are cached by normalized path")
	require.Equal(t, 1, cfs.opens["Skins/Car.zip"])
	require.Zero(t, cfs.opens["skins/car.zip"])
}

func TestResolver_NonFileTargets(t *testing.T) {
	var calls []Depth
	r, _ := newTestResolver(t, fstest.MapFS{}, ".", &calls)

	res := &node.External{Flags: node.ResourceFlag, ResourceIndex: 3}
	_, err := r.Resolve(res, DepthFull)
	require.ErrorIs(t, err, errs.ErrReferenceUnresolvable)
	require.Equal(t, ResolvedNull, r.State(res))

	escaping := &node.External{Path: "../../outside.Gbx"}
	_, ok := r.Target(escaping)
	require.False(t, ok)
	_, err = r.Resolve(escaping, DepthFull)
	require.ErrorIs(t, err, errs.ErrReferenceUnresolvable)

	_, err = r.Resolve(nil, DepthFull)
	require.ErrorIs(t, err, errs.ErrReferenceUnresolvable)
	require.Empty(t, calls)
}

func TestResolver_LoaderFailure(t *testing.T) {
	var calls []Depth
	r, _ := newTestResolver(t, fstest.MapFS{"Bad.Gbx": {Data: []byte{1}}}, ".", &calls)
	ext := &node.External{Path: "Bad.Gbx"}

	n, err := r.Resolve(ext, DepthFull)
	require.Nil(t, n)
	require.ErrorIs(t, err, errs.ErrReferenceUnresolvable)

	_, _ = r.Resolve(ext, DepthFull)
	require.Len(t, calls, 1)
}

func TestResolver_Cycle(t *testing.T) {
	files := fstest.MapFS{"A.Gbx": classFile(0x03043000)}
	ext := &node.External{Path: "A.Gbx"}

	var r *Resolver
	var inner error
	loader := func(data []byte, depth Depth) (node.Node, error) {
		// The target references itself.
		_, inner = r.Resolve(ext, depth)
		return node.NewGeneric(binary.LittleEndian.Uint32(data)), nil
	}

	var err error
	r, err = NewResolver(files, ".", loader)
	require.NoError(t, err)

	n, err := r.Resolve(ext, DepthFull)
	require.NoError(t, err)
	require.NotNil(t, n)
	require.ErrorIs(t, inner, errs.ErrReferenceCycle)
	require.ErrorIs(t, inner, errs.ErrReferenceUnresolvable)
}

func TestResolver_ResolveRef(t *testing.T) {
	var calls []Depth
	r, _ := newTestResolver(t, fstest.MapFS{"A.Gbx": classFile(0x03043000)}, ".", &calls)

	n, err := r.ResolveRef(node.Ref{}, DepthFull)
	require.NoError(t, err)
	require.Nil(t, n)

	inline := node.NewGeneric(0x0A005000)
	n, err = r.ResolveRef(node.NodeRefOf(inline), DepthFull)
	require.NoError(t, err)
	require.Same(t, inline, n)

	n, err = r.ResolveRef(node.Ref{External: &node.External{Path: "A.Gbx"}}, DepthHeader)
	require.NoError(t, err)
	require.Equal(t, uint32(0x03043000), n.ClassID())
}

func TestDepthAndStateStrings(t *testing.T) {
	require.Equal(t, "Header", DepthHeader.String())
	require.Equal(t, "Full", DepthFull.String())
	require.Equal(t, "Unknown", Depth(9).String())
	require.Equal(t, "ResolvedNull", ResolvedNull.String())
	require.Equal(t, "Resolving", Resolving.String())
	require.Equal(t, "Unknown", State(9).String())
}
