package container

import (
	"errors"
	"fmt"

	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/reference"
	"github.com/arloliu/gbx/stream"
)

var errWriteOnly = errors.New("body writer cannot read node references")

// bodyWriter assigns node indices while the body is written. Indices of the
// reference table are reserved; inline nodes take the free indices in the
// order they are first met.
type bodyWriter struct {
	c        *Container
	reserved map[int]struct{}
	indices  map[node.Node]int
	next     int
	maxIdx   int
}

var _ node.RefCodec = (*bodyWriter)(nil)

func (c *Container) ensureConfig() {
	if c.cfg == nil {
		c.cfg = newConfig()
	}
}

// encodeBody returns the serialized reference table and body together with
// the node count to store in the envelope.
func (c *Container) encodeBody() ([]byte, int32, error) {
	c.ensureConfig()

	bw := &bodyWriter{
		c:        c,
		reserved: make(map[int]struct{}),
		indices:  make(map[node.Node]int),
		maxIdx:   -1,
	}
	if c.RefTable != nil {
		for _, e := range c.RefTable.Entries {
			bw.reserved[e.Index] = struct{}{}
			bw.maxIdx = max(bw.maxIdx, e.Index)
		}
	}

	body := stream.NewBodyWriter(stream.NewIdState())
	defer body.Release()
	if err := bw.writeNode(c.Node, body); err != nil {
		return nil, 0, fmt.Errorf("gbx body: %w", err)
	}

	out := stream.NewWriter()
	if c.Header.RefTableCompression.IsCompressed() {
		tw := stream.NewWriter()
		reference.WriteTable(tw, c.RefTable, c.Header.Version)
		if err := writeCompressed(out, tw.Bytes()); err != nil {
			return nil, 0, err
		}
	} else {
		reference.WriteTable(out, c.RefTable, c.Header.Version)
	}

	if c.Header.BodyCompression.IsCompressed() {
		if err := writeCompressed(out, body.Bytes()); err != nil {
			return nil, 0, err
		}
	} else {
		_, _ = out.Write(body.Bytes())
	}

	return out.Bytes(), int32(bw.maxIdx + 2), nil //nolint:gosec
}

func (bw *bodyWriter) skippable(chunk node.Chunk, id uint32) bool {
	switch ch := chunk.(type) {
	case *node.OpaqueChunk:
		return ch.Skippable
	case *node.SkippableChunk:
		return true
	}
	info, ok := bw.c.cfg.registry.Chunk(id)

	return ok && info.Skippable
}

func (bw *bodyWriter) writeNode(n node.Node, w *stream.Writer) error {
	reg := bw.c.cfg.registry
	set := n.Chunks()

	for chunk := range set.All() {
		id := reg.RemapChunk(chunk.ID())
		var target node.Node
		if reg.IsA(n.ClassID(), node.ClassOf(id)) {
			target = n
		}

		w.UInt32(id)
		if !bw.skippable(chunk, id) {
			if err := chunk.ReadWrite(target, node.NewWriteMode(w, bw)); err != nil {
				return fmt.Errorf("chunk 0x%08X: %w", id, err)
			}
			_, _ = w.Write(set.Trailing(chunk.ID()))

			continue
		}

		// a skippable payload writes its strings against a copy of the body state
		pw := stream.NewPooledWriter(w.IdState().Clone())
		if err := chunk.ReadWrite(target, node.NewWriteMode(pw, bw)); err != nil {
			pw.Release()
			return fmt.Errorf("chunk 0x%08X: %w", id, err)
		}
		_, _ = pw.Write(set.Trailing(chunk.ID()))
		w.UInt32(SkipMarker)
		w.UInt32(uint32(pw.Len())) //nolint:gosec
		_, _ = w.Write(pw.Bytes())
		pw.Release()
	}
	w.UInt32(EndOfNode)

	return nil
}

func (bw *bodyWriter) alloc() int {
	for {
		if _, ok := bw.reserved[bw.next]; !ok {
			break
		}
		bw.next++
	}
	idx := bw.next
	bw.next++
	bw.maxIdx = max(bw.maxIdx, idx)

	return idx
}

// WriteRef implements node.RefCodec.
func (bw *bodyWriter) WriteRef(rw *node.ReaderWriter, ref node.Ref) error {
	w := rw.Writer()
	switch {
	case ref.External != nil:
		w.Int32(int32(ref.External.Index + 1)) //nolint:gosec
		return nil
	case ref.Node == nil:
		w.Int32(-1)
		return nil
	}

	if idx, ok := bw.indices[ref.Node]; ok {
		w.Int32(int32(idx + 1)) //nolint:gosec
		return nil
	}

	idx := bw.alloc()
	bw.indices[ref.Node] = idx
	w.Int32(int32(idx + 1)) //nolint:gosec
	w.UInt32(bw.c.cfg.registry.Remap(ref.Node.ClassID()))

	return bw.writeNode(ref.Node, w)
}

// ReadRef implements node.RefCodec.
func (bw *bodyWriter) ReadRef(*node.ReaderWriter) (node.Ref, error) {
	return node.Ref{}, errWriteOnly
}
