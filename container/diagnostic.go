package container

import "fmt"

// DiagnosticKind classifies a non-fatal parse condition.
type DiagnosticKind uint8

const (
	// ChunkDecodeFailure means a chunk failed to decode and was kept opaque.
	ChunkDecodeFailure DiagnosticKind = iota + 1
	// UnknownChunk means a skippable body chunk had no decoder.
	UnknownChunk
	// TrailingBytes means a chunk or the body left bytes unread.
	TrailingBytes
	// TypelessRead means a header chunk was decoded without its node because
	// the node's class does not descend from the chunk's class.
	TypelessRead
	// DuplicateChunk means the user-data table listed a chunk ID twice. The
	// last entry is kept at the position of the first.
	DuplicateChunk
)

func (k DiagnosticKind) String() string {
	switch k {
	case ChunkDecodeFailure:
		return "ChunkDecodeFailure"
	case UnknownChunk:
		return "UnknownChunk"
	case TrailingBytes:
		return "TrailingBytes"
	case TypelessRead:
		return "TypelessRead"
	case DuplicateChunk:
		return "DuplicateChunk"
	default:
		return "Unknown"
	}
}

// Diagnostic is a local condition recorded while parsing.
type Diagnostic struct {
	Kind    DiagnosticKind
	ChunkID uint32
	// Header is true for user-data header chunks.
	Header bool
	Err    error
}

func (d Diagnostic) String() string {
	section := "body"
	if d.Header {
		section = "header"
	}
	if d.Err != nil {
		return fmt.Sprintf("%s %s chunk 0x%08X: %v", d.Kind, section, d.ChunkID, d.Err)
	}

	return fmt.Sprintf("%s %s chunk 0x%08X", d.Kind, section, d.ChunkID)
}
