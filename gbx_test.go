package gbx

import (
	"bytes"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gbx/archive"
	"github.com/arloliu/gbx/cipher"
	"github.com/arloliu/gbx/container"
	"github.com/arloliu/gbx/engines"
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/reference"
	"github.com/arloliu/gbx/registry"
	"github.com/arloliu/gbx/stream"
)

func encode(t *testing.T, n node.Node, edit func(c *container.Container)) []byte {
	t.Helper()

	reg, err := DefaultRegistry()
	require.NoError(t, err)
	c, err := container.New(n, container.WithRegistry(reg))
	require.NoError(t, err)
	if edit != nil {
		edit(c)
	}
	data, err := c.Bytes()
	require.NoError(t, err)

	return data
}

// materialFile returns a material referencing Textures/Grass.Texture.Gbx.
func materialFile(t *testing.T) []byte {
	t.Helper()

	ext := &node.External{Index: 0, FileName: "Grass.Texture.Gbx", FolderIndex: 0}
	mat := engines.NewMaterialCustom()
	mat.Textures = []engines.MaterialTexture{
		{Name: stream.StringIdent("Diffuse"), Bitmap: node.Ref{External: ext}},
	}
	require.NoError(t, mat.Chunks().Add(&engines.MaterialTexturesChunk{}))

	return encode(t, mat, func(c *container.Container) {
		c.RefTable = &reference.Table{
			Folders: []reference.Folder{{Name: "Textures", Parent: -1}},
			Entries: []*node.External{ext},
		}
	})
}

func TestDefaultRegistry(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	again, err := DefaultRegistry()
	require.NoError(t, err)
	require.Same(t, reg, again)

	name, ok := reg.ClassName(0x24003000)
	require.True(t, ok)
	require.Equal(t, "CGameCtnChallenge", name)
	require.Equal(t, uint32(0x03043000), reg.Remap(0x24003000))

	_, ok = reg.Node(engines.ClassPlugBitmap)
	require.True(t, ok)
	_, ok = reg.Chunk(engines.ChunkSceneObjectMotion)
	require.True(t, ok)
}

func TestParseAndWrite(t *testing.T) {
	lens := engines.NewDirtyLens()
	lens.Keys = []engines.DirtyLensKey{{Key: engines.Key{Time: 0.5}, Intensity: 1}}
	require.NoError(t, lens.Chunks().Add(&engines.DirtyLensKeysChunk{Version: 1}))
	data := encode(t, lens, nil)

	c, err := Parse(data)
	require.NoError(t, err)
	got, ok := c.Node.(*engines.DirtyLens)
	require.True(t, ok)
	require.Equal(t, lens.Keys, got.Keys)

	var buf bytes.Buffer
	require.NoError(t, Write(c, &buf))
	require.Equal(t, data, buf.Bytes())

	h, err := ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, engines.ClassMediaBlockDirtyLens, h.Header.ClassID)
	require.Zero(t, h.Node.Chunks().Len())

	// an explicit registry replaces the default one
	c, err = Parse(data, container.WithRegistry(registry.Empty()))
	require.Error(t, err)
	require.IsType(t, &node.Generic{}, c.Node)
}

func TestParseFileAndResolve(t *testing.T) {
	fsys := fstest.MapFS{
		"Materials/Grass.Material.Gbx":          {Data: materialFile(t)},
		"Materials/Textures/Grass.Texture.Gbx": {Data: encode(t, engines.NewBitmap(), nil)},
	}

	c, err := ParseFile(fsys, "Materials/Grass.Material.Gbx")
	require.NoError(t, err)
	mat := c.Node.(*engines.MaterialCustom)
	ext := mat.Textures[0].Bitmap.External
	require.NotNil(t, ext)
	require.Equal(t, "Textures/Grass.Texture.Gbx", ext.Path)

	r, err := NewResolver(fsys, "Materials\\Grass.Material.Gbx")
	require.NoError(t, err)
	target, ok := r.Target(ext)
	require.True(t, ok)
	require.Equal(t, "Materials/Textures/Grass.Texture.Gbx", target)

	n, err := r.ResolveRef(mat.Textures[0].Bitmap, reference.DepthHeader)
	require.NoError(t, err)
	require.IsType(t, &engines.Bitmap{}, n)
	require.Equal(t, reference.Resolved, r.State(ext))

	full, err := r.Resolve(ext, reference.DepthFull)
	require.NoError(t, err)
	require.IsType(t, &engines.Bitmap{}, full)

	_, err = ParseFile(fsys, "Materials/Missing.Gbx")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpenArchive(t *testing.T) {
	secret := []byte("pak secret")
	b := archive.NewBuilder(cipher.DeriveKey(secret))
	folder, err := b.AddFolder("Materials", nil)
	require.NoError(t, err)
	_, err = b.Add(folder, "Grass.Material.Gbx", materialFile(t), engines.ClassPlugMaterialCustom, true)
	require.NoError(t, err)
	data, err := b.Bytes()
	require.NoError(t, err)

	a, err := OpenArchive(bytes.NewReader(data), int64(len(data)), secret)
	require.NoError(t, err)
	e, ok := a.Lookup("materials/grass.material.gbx")
	require.True(t, ok)
	require.Equal(t, engines.ClassPlugMaterialCustom, e.ClassID)

	reg, err := DefaultRegistry()
	require.NoError(t, err)
	n, err := a.Node(e, container.WithRegistry(reg))
	require.NoError(t, err)
	mat, ok := n.(*engines.MaterialCustom)
	require.True(t, ok)
	require.Equal(t, "Diffuse", mat.Textures[0].Name.Value)

	_, err = OpenArchive(bytes.NewReader(data), int64(len(data)), []byte("wrong"))
	require.Error(t, err)
}
