package node

import (
	"fmt"

	"github.com/arloliu/gbx/errs"
)

// Chunk is a unit of serialization bound to one chunk ID.
type Chunk interface {
	// ID returns the full chunk ID (class part plus chunk index).
	ID() uint32
	// ReadWrite decodes or encodes the chunk depending on the mode of rw.
	// n is nil for typeless reads.
	ReadWrite(n Node, rw *ReaderWriter) error
}

// Versioned is implemented by chunks carrying an inline format version.
type Versioned interface {
	ChunkVersion() int
}

// OpaqueChunk preserves the bytes of a chunk the engine did not interpret.
type OpaqueChunk struct {
	ChunkID   uint32
	Data      []byte
	Skippable bool
	Heavy     bool
}

// ID implements Chunk.
func (c *OpaqueChunk) ID() uint32 {
	return c.ChunkID
}

// ReadWrite consumes the remaining input on read and emits Data on write.
func (c *OpaqueChunk) ReadWrite(_ Node, rw *ReaderWriter) error {
	rw.Rest(&c.Data)
	return rw.Err()
}

// SkippableState tells whether a deferred chunk has been decoded.
type SkippableState uint8

const (
	// StateRaw means only the payload bytes are held.
	StateRaw SkippableState = iota
	// StateDecoded means the payload was decoded into a typed chunk.
	StateDecoded
)

func (s SkippableState) String() string {
	switch s {
	case StateRaw:
		return "Raw"
	case StateDecoded:
		return "Decoded"
	default:
		return "Unknown"
	}
}

// DecodeFunc turns a buffered payload into its typed chunk.
type DecodeFunc func(raw []byte) (Chunk, error)

// SkippableChunk is a skippable chunk whose decode is deferred.
//
// It starts in StateRaw holding the payload. Discover moves it to
// StateDecoded. Discovery is never triggered implicitly; it happens through
// Discover or ChunkSet.Discover.
type SkippableChunk struct {
	id      uint32
	raw     []byte
	state   SkippableState
	decoded Chunk
	decode  DecodeFunc
}

// NewSkippableChunk returns a raw skippable chunk.
func NewSkippableChunk(id uint32, raw []byte, decode DecodeFunc) *SkippableChunk {
	return &SkippableChunk{id: id, raw: raw, decode: decode}
}

// ID implements Chunk.
func (c *SkippableChunk) ID() uint32 {
	return c.id
}

// State returns the current state.
func (c *SkippableChunk) State() SkippableState {
	return c.state
}

// Raw returns the buffered payload.
func (c *SkippableChunk) Raw() []byte {
	return c.raw
}

// Decoded returns the typed chunk, or nil while raw.
func (c *SkippableChunk) Decoded() Chunk {
	return c.decoded
}

// Discover decodes the payload. It is a no-op once decoded. On failure the
// chunk stays raw and keeps round-tripping its original bytes.
func (c *SkippableChunk) Discover() error {
	if c.state == StateDecoded {
		return nil
	}
	if c.decode == nil {
		return fmt.Errorf("%w: 0x%08X has no decoder", errs.ErrUnknownChunk, c.id)
	}

	chunk, err := c.decode(c.raw)
	if err != nil {
		return fmt.Errorf("%w: 0x%08X: %w", errs.ErrChunkDecode, c.id, err)
	}
	c.decoded = chunk
	c.state = StateDecoded

	return nil
}

// ReadWrite emits the raw payload while raw and delegates once decoded.
func (c *SkippableChunk) ReadWrite(n Node, rw *ReaderWriter) error {
	if c.state == StateDecoded {
		return c.decoded.ReadWrite(n, rw)
	}
	rw.Rest(&c.raw)

	return rw.Err()
}
