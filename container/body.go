package container

import (
	"errors"
	"fmt"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/reference"
	"github.com/arloliu/gbx/stream"
)

var errReadOnly = errors.New("body reader cannot write node references")

// bodyReader holds the per-parse state of a body: the node table and the
// lookback state shared by every chunk of the body.
type bodyReader struct {
	c     *Container
	table *reference.Table
	nodes map[int]node.Node
	ids   *stream.IdState
}

var _ node.RefCodec = (*bodyReader)(nil)

func (c *Container) decodeBody(rest []byte) error {
	r := stream.NewReader(rest)

	table, err := c.readRefTable(r)
	if err != nil {
		return fmt.Errorf("gbx reference table: %w", err)
	}
	c.RefTable = table

	body := r.Remaining()
	if c.Header.BodyCompression.IsCompressed() {
		if body, err = readCompressed(r); err != nil {
			return fmt.Errorf("gbx body: %w", err)
		}
	}

	d := &bodyReader{c: c, table: table, nodes: make(map[int]node.Node), ids: stream.NewIdState()}
	br := stream.NewReaderWithState(body, d.ids)
	if err := d.readNode(c.Node, br); err != nil {
		return fmt.Errorf("gbx body: %w", err)
	}
	if br.Len() > 0 {
		c.diag(Diagnostic{Kind: TrailingBytes, Err: fmt.Errorf("%w: %d bytes after body", errs.ErrTrailingBytes, br.Len())})
	}

	return nil
}

func (c *Container) readRefTable(r *stream.Reader) (*reference.Table, error) {
	if !c.Header.RefTableCompression.IsCompressed() {
		return reference.ParseTable(r, c.Header.Version)
	}

	data, err := readCompressed(r)
	if err != nil {
		return nil, err
	}

	return reference.ParseTable(stream.NewReader(data), c.Header.Version)
}

func (d *bodyReader) target(n node.Node, chunkID uint32) node.Node {
	if d.c.cfg.registry.IsA(n.ClassID(), node.ClassOf(chunkID)) {
		return n
	}

	return nil
}

// readNode reads chunks into n until the end-of-node marker.
func (d *bodyReader) readNode(n node.Node, r *stream.Reader) error {
	for {
		raw, err := r.UInt32()
		if err != nil {
			return err
		}
		if raw == EndOfNode {
			return nil
		}
		id := d.c.cfg.registry.RemapChunk(raw)

		if marker, err := r.PeekUInt32(); err == nil && marker == SkipMarker {
			err = d.readSkippable(n, id, r)
		} else {
			err = d.readChunk(n, id, r)
		}
		if err != nil {
			return err
		}
	}
}

func (d *bodyReader) readChunk(n node.Node, id uint32, r *stream.Reader) error {
	info, ok := d.c.cfg.registry.Chunk(id)
	if !ok {
		return fmt.Errorf("%w: 0x%08X in node 0x%08X", errs.ErrUnknownChunk, id, n.ClassID())
	}

	chunk := info.New()
	if err := chunk.ReadWrite(d.target(n, id), node.NewReadMode(r, d)); err != nil {
		return fmt.Errorf("%w: 0x%08X: %w", errs.ErrChunkDecode, id, err)
	}

	return n.Chunks().Add(chunk)
}

func (d *bodyReader) readSkippable(n node.Node, id uint32, r *stream.Reader) error {
	if err := r.Skip(4); err != nil {
		return err
	}
	size, err := r.UInt32()
	if err != nil {
		return err
	}
	payload, err := r.Bytes(int(size))
	if err != nil {
		return fmt.Errorf("skippable chunk 0x%08X: %w", id, err)
	}

	set := n.Chunks()
	info, ok := d.c.cfg.registry.Chunk(id)
	if !ok {
		d.c.diag(Diagnostic{Kind: UnknownChunk, ChunkID: id, Err: fmt.Errorf("%w: 0x%08X", errs.ErrUnknownChunk, id)})
		return set.Add(&node.OpaqueChunk{ChunkID: id, Data: payload, Skippable: true})
	}

	target := d.target(n, id)
	if d.c.cfg.lazySkippable {
		return set.Add(node.NewSkippableChunk(id, payload, d.deferred(set, id, info.New, target)))
	}

	chunk, trailing, err := d.decodeSkippable(id, payload, d.ids.Clone(), info.New(), target)
	if err != nil {
		d.c.diag(Diagnostic{Kind: ChunkDecodeFailure, ChunkID: id, Err: fmt.Errorf("%w: %w", errs.ErrChunkDecode, err)})
		return set.Add(&node.OpaqueChunk{ChunkID: id, Data: payload, Skippable: true})
	}
	if err := set.Add(chunk); err != nil {
		return err
	}
	if trailing != nil {
		set.SetTrailing(id, trailing)
	}

	return nil
}

// decodeSkippable decodes a skippable payload against ids, a copy of the body
// lookback state. Strings defined in the payload never reach the body state.
// Bytes left after the chunk are returned and reported.
func (d *bodyReader) decodeSkippable(id uint32, payload []byte, ids *stream.IdState,
	chunk node.Chunk, target node.Node,
) (node.Chunk, []byte, error) {
	sr := stream.NewReaderWithState(payload, ids)
	if err := chunk.ReadWrite(target, node.NewReadMode(sr, d)); err != nil {
		return nil, nil, err
	}
	if sr.Len() == 0 {
		return chunk, nil, nil
	}
	d.c.diag(Diagnostic{Kind: TrailingBytes, ChunkID: id, Err: fmt.Errorf("%w: %d bytes", errs.ErrTrailingBytes, sr.Len())})

	return chunk, sr.Remaining(), nil
}

// deferred builds the decoder of a lazily discovered chunk. It decodes with
// a snapshot of the lookback state taken when the chunk was buffered.
func (d *bodyReader) deferred(set *node.ChunkSet, id uint32, newChunk func() node.Chunk, target node.Node) node.DecodeFunc {
	snapshot := d.ids.Clone()

	return func(raw []byte) (node.Chunk, error) {
		chunk, trailing, err := d.decodeSkippable(id, raw, snapshot.Clone(), newChunk(), target)
		if err != nil {
			return nil, err
		}
		if trailing != nil {
			set.SetTrailing(id, trailing)
		}

		return chunk, nil
	}
}

// ReadRef implements node.RefCodec.
func (d *bodyReader) ReadRef(rw *node.ReaderWriter) (node.Ref, error) {
	r := rw.Reader()
	raw, err := r.Int32()
	if err != nil {
		return node.Ref{}, err
	}

	idx := int(raw) - 1
	if idx < 0 {
		return node.Ref{}, nil
	}
	if ext, ok := d.table.Lookup(idx); ok {
		return node.Ref{External: ext}, nil
	}
	if n, ok := d.nodes[idx]; ok {
		return node.NodeRefOf(n), nil
	}
	if num := d.c.Header.NumNodes; num > 0 && idx >= int(num) {
		return node.Ref{}, fmt.Errorf("%w: %d of %d", errs.ErrInvalidNodeIndex, idx, num)
	}

	classID, err := r.UInt32()
	if err != nil {
		return node.Ref{}, err
	}
	classID = d.c.cfg.registry.Remap(classID)

	n := d.c.newNode(classID)
	d.nodes[idx] = n
	if err := d.readNode(n, r); err != nil {
		return node.Ref{}, fmt.Errorf("node %d (0x%08X): %w", idx, classID, err)
	}

	return node.NodeRefOf(n), nil
}

// WriteRef implements node.RefCodec.
func (d *bodyReader) WriteRef(*node.ReaderWriter, node.Ref) error {
	return errReadOnly
}
