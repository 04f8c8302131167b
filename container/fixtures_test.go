package container

import (
	"fmt"
	"slices"
	"testing"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/registry"
	"github.com/arloliu/gbx/stream"
	"github.com/stretchr/testify/require"
)

const (
	classRoot  uint32 = 0x01001000
	classMap   uint32 = 0x03043000
	classScene uint32 = 0x0A005000
	classOld   uint32 = 0x24003000

	chunkMapInfo    uint32 = 0x03043003 // header, needs *mapNode
	chunkMapVersion uint32 = 0x03043005 // header, stores on chunk
	chunkMapAuthor  uint32 = 0x03043010 // body
	chunkMapLaps    uint32 = 0x03043011 // body, skippable, versioned
	chunkMapScene   uint32 = 0x03043012 // body, skippable
	chunkMapTag     uint32 = 0x03043013 // body, skippable, lookback string
	chunkScene      uint32 = 0x0A005001 // body
)

type mapNode struct {
	node.Base
	Name   string
	Laps   int32
	Author stream.Ident
	Tag    stream.Ident
	Child  node.Ref
	Scene  node.Ref
}

func newMapNode() *mapNode { return &mapNode{Base: node.NewBase(classMap)} }

type sceneNode struct {
	node.Base
	Value int32
	Next  node.Ref
}

func newSceneNode() *sceneNode { return &sceneNode{Base: node.NewBase(classScene)} }

func asMap(n node.Node) (*mapNode, error) {
	if n == nil {
		return nil, errs.ErrNodeRequired
	}
	m, ok := n.(*mapNode)
	if !ok {
		return nil, fmt.Errorf("%w: %T", errs.ErrNodeCapability, n)
	}

	return m, nil
}

type mapInfoChunk struct{}

func (c *mapInfoChunk) ID() uint32 { return chunkMapInfo }

func (c *mapInfoChunk) ReadWrite(n node.Node, rw *node.ReaderWriter) error {
	m, err := asMap(n)
	if err != nil {
		return err
	}
	rw.String(&m.Name)
	rw.Int32(&m.Laps)

	return rw.Err()
}

type mapVersionChunk struct {
	Version int32
	Build   string
}

func (c *mapVersionChunk) ID() uint32 { return chunkMapVersion }

func (c *mapVersionChunk) ReadWrite(_ node.Node, rw *node.ReaderWriter) error {
	rw.Int32(&c.Version)
	rw.String(&c.Build)

	return rw.Err()
}

type mapAuthorChunk struct{}

func (c *mapAuthorChunk) ID() uint32 { return chunkMapAuthor }

func (c *mapAuthorChunk) ReadWrite(n node.Node, rw *node.ReaderWriter) error {
	m, err := asMap(n)
	if err != nil {
		return err
	}
	rw.Id(&m.Author)
	rw.NodeRef(&m.Child)

	return rw.Err()
}

// mapLapsChunk carries Laps for versions 1..2 and Weight from version 2 on.
type mapLapsChunk struct {
	Version int32
	Weight  float32
}

func (c *mapLapsChunk) ID() uint32 { return chunkMapLaps }

func (c *mapLapsChunk) ChunkVersion() int { return int(c.Version) }

func (c *mapLapsChunk) ReadWrite(n node.Node, rw *node.ReaderWriter) error {
	m, err := asMap(n)
	if err != nil {
		return err
	}
	rw.Int32(&c.Version)
	if rw.InRange(int(c.Version), 1, 2) {
		rw.Int32(&m.Laps)
	}
	if rw.InRange(int(c.Version), 2, -1) {
		rw.Float32(&c.Weight)
	}

	return rw.Err()
}

type mapSceneChunk struct{}

func (c *mapSceneChunk) ID() uint32 { return chunkMapScene }

func (c *mapSceneChunk) ReadWrite(n node.Node, rw *node.ReaderWriter) error {
	m, err := asMap(n)
	if err != nil {
		return err
	}
	rw.NodeRef(&m.Scene)

	return rw.Err()
}

type mapTagChunk struct{}

func (c *mapTagChunk) ID() uint32 { return chunkMapTag }

func (c *mapTagChunk) ReadWrite(n node.Node, rw *node.ReaderWriter) error {
	m, err := asMap(n)
	if err != nil {
		return err
	}
	rw.Id(&m.Tag)

	return rw.Err()
}

type sceneChunk struct{}

func (c *sceneChunk) ID() uint32 { return chunkScene }

func (c *sceneChunk) ReadWrite(n node.Node, rw *node.ReaderWriter) error {
	s, ok := n.(*sceneNode)
	if !ok {
		return errs.ErrNodeRequired
	}
	rw.Int32(&s.Value)
	rw.NodeRef(&s.Next)

	return rw.Err()
}

// testRegistry registers the test classes and every test chunk except the
// ones listed in without.
func testRegistry(t *testing.T, without ...uint32) *registry.Registry {
	t.Helper()

	b := registry.NewBuilder()
	require.NoError(t, b.RegisterClass(classRoot, "CMwNod", 0))
	require.NoError(t, b.RegisterClass(classMap, "Map", classRoot))
	require.NoError(t, b.RegisterClass(classScene, "Scene", classRoot))
	require.NoError(t, b.RegisterRemap(classOld, classMap))

	require.NoError(t, b.RegisterNode(classMap, func() node.Node { return newMapNode() }))
	require.NoError(t, b.RegisterNode(classScene, func() node.Node { return newSceneNode() }))

	skip := func(id uint32) bool { return slices.Contains(without, id) }

	headers := []registry.ChunkInfo{
		{ID: chunkMapInfo, New: func() node.Chunk { return &mapInfoChunk{} }},
		{ID: chunkMapVersion, New: func() node.Chunk { return &mapVersionChunk{} }},
	}
	for _, info := range headers {
		if !skip(info.ID) {
			require.NoError(t, b.RegisterHeaderChunk(info))
		}
	}

	body := []registry.ChunkInfo{
		{ID: chunkMapAuthor, New: func() node.Chunk { return &mapAuthorChunk{} }},
		{ID: chunkMapLaps, New: func() node.Chunk { return &mapLapsChunk{} }, Skippable: true, Versioned: true},
		{ID: chunkMapScene, New: func() node.Chunk { return &mapSceneChunk{} }, Skippable: true},
		{ID: chunkMapTag, New: func() node.Chunk { return &mapTagChunk{} }, Skippable: true},
		{ID: chunkScene, New: func() node.Chunk { return &sceneChunk{} }},
	}
	for _, info := range body {
		if !skip(info.ID) {
			require.NoError(t, b.RegisterChunk(info))
		}
	}

	reg, err := b.Freeze()
	require.NoError(t, err)

	return reg
}

// sampleMap builds a map with header chunks, an inline child chain and a
// node shared by two references.
func sampleMap(t *testing.T) *mapNode {
	t.Helper()

	shared := newSceneNode()
	shared.Value = 99
	require.NoError(t, shared.Chunks().Add(&sceneChunk{}))

	child := newSceneNode()
	child.Value = 7
	child.Next = node.NodeRefOf(shared)
	require.NoError(t, child.Chunks().Add(&sceneChunk{}))

	m := newMapNode()
	m.Name = "A01-Race"
	m.Laps = 3
	m.Author = stream.StringIdent("nadeo")
	m.Child = node.NodeRefOf(child)
	m.Scene = node.NodeRefOf(shared)

	require.NoError(t, m.HeaderChunks().Add(&mapInfoChunk{}))
	require.NoError(t, m.HeaderChunks().Add(&mapVersionChunk{Version: 6, Build: "2026-10-14"}))
	require.NoError(t, m.Chunks().Add(&mapAuthorChunk{}))
	require.NoError(t, m.Chunks().Add(&mapLapsChunk{Version: 2, Weight: 0.75}))
	require.NoError(t, m.Chunks().Add(&mapSceneChunk{}))

	return m
}

func encode(t *testing.T, n node.Node, reg *registry.Registry, edit func(c *Container)) []byte {
	t.Helper()

	c, err := New(n, WithRegistry(reg))
	require.NoError(t, err)
	if edit != nil {
		edit(c)
	}
	data, err := c.Bytes()
	require.NoError(t, err)

	return data
}

func diagKinds(c *Container) []DiagnosticKind {
	kinds := make([]DiagnosticKind, 0, len(c.Diagnostics))
	for _, d := range c.Diagnostics {
		kinds = append(kinds, d.Kind)
	}

	return kinds
}
