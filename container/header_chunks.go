package container

import (
	"fmt"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/section"
	"github.com/arloliu/gbx/stream"
)

func (c *Container) decodeHeaderChunks() error {
	entries, err := section.ParseUserData(c.Header.UserData, c.cfg.registry.Remap)
	if err != nil {
		return err
	}

	set := c.Node.HeaderChunks()
	for _, e := range entries {
		chunk, trailing := c.decodeHeaderChunk(e)
		if set.Has(e.ChunkID) {
			c.diag(Diagnostic{
				Kind:    DuplicateChunk,
				ChunkID: e.ChunkID,
				Header:  true,
				Err:     fmt.Errorf("%w: 0x%08X", errs.ErrDuplicateChunk, e.ChunkID),
			})
			set.ReplaceRaw(chunk, e.Data, e.Heavy)
		} else if err := set.AddRaw(chunk, e.Data, e.Heavy); err != nil {
			return err
		}
		if len(trailing) > 0 {
			set.SetTrailing(e.ChunkID, trailing)
		}
	}

	return nil
}

// decodeHeaderChunk never fails: chunks it cannot interpret stay opaque.
// Each header chunk reads with its own lookback state.
func (c *Container) decodeHeaderChunk(e section.UserDataEntry) (node.Chunk, []byte) {
	opaque := &node.OpaqueChunk{ChunkID: e.ChunkID, Data: e.Data, Heavy: e.Heavy}

	info, ok := c.cfg.registry.HeaderChunk(e.ChunkID)
	if !ok {
		c.cfg.logger.Debug("gbx header chunk kept opaque", "chunk", fmt.Sprintf("0x%08X", e.ChunkID), "size", len(e.Data))
		return opaque, nil
	}

	var target node.Node = c.Node
	if !c.cfg.registry.IsA(c.Node.ClassID(), node.ClassOf(e.ChunkID)) {
		target = nil
		c.diag(Diagnostic{Kind: TypelessRead, ChunkID: e.ChunkID, Header: true})
	}

	chunk := info.New()
	r := stream.NewReader(e.Data)
	if err := chunk.ReadWrite(target, node.NewReadMode(r, nil)); err != nil {
		c.diag(Diagnostic{
			Kind:    ChunkDecodeFailure,
			ChunkID: e.ChunkID,
			Header:  true,
			Err:     fmt.Errorf("%w: %w", errs.ErrChunkDecode, err),
		})

		return opaque, nil
	}

	if r.Len() > 0 {
		c.diag(Diagnostic{
			Kind:    TrailingBytes,
			ChunkID: e.ChunkID,
			Header:  true,
			Err:     fmt.Errorf("%w: %d bytes", errs.ErrTrailingBytes, r.Len()),
		})

		return chunk, r.Remaining()
	}

	return chunk, nil
}

// encodeHeaderChunks serializes the header chunk set in set order.
func (c *Container) encodeHeaderChunks() ([]byte, error) {
	c.ensureConfig()
	set := c.Node.HeaderChunks()
	if set.Len() == 0 && (c.noUserData || c.Header.Version < section.UserDataVersion) {
		return nil, nil
	}

	reg := c.cfg.registry
	entries := make([]section.UserDataEntry, 0, set.Len())
	for chunk := range set.All() {
		id := reg.RemapChunk(chunk.ID())
		heavy := set.IsHeavy(chunk.ID())
		if info, ok := reg.HeaderChunk(id); ok && info.Heavy {
			heavy = true
		}

		var data []byte
		switch ch := chunk.(type) {
		case *node.OpaqueChunk:
			data = ch.Data
			heavy = heavy || ch.Heavy
		default:
			var target node.Node = c.Node
			if !reg.IsA(c.Node.ClassID(), node.ClassOf(id)) {
				target = nil
			}

			w := stream.NewPooledWriter(nil)
			if err := chunk.ReadWrite(target, node.NewWriteMode(w, nil)); err != nil {
				w.Release()
				return nil, fmt.Errorf("header chunk 0x%08X: %w", id, err)
			}
			_, _ = w.Write(set.Trailing(chunk.ID()))
			data = append([]byte(nil), w.Bytes()...)
			w.Release()
		}

		entries = append(entries, section.UserDataEntry{ChunkID: id, Heavy: heavy, Data: data})
	}

	return section.EncodeUserData(entries), nil
}

func (c *Container) encodeHeader(w *stream.Writer) error {
	userData, err := c.encodeHeaderChunks()
	if err != nil {
		return err
	}

	h := c.Header
	h.ClassID = c.Node.ClassID()
	h.UserData = userData

	return h.WriteTo(w, c.cfg.registry.Remap)
}
