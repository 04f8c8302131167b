// Package errs defines the sentinel errors shared by the gbx packages.
//
// Terminal conditions abort the current parse or write and are returned to the
// caller. Local conditions (chunk decode failures, unresolvable references,
// partial archive data) are absorbed at chunk or reference granularity and
// surfaced as diagnostics that wrap one of these sentinels.
//
// Match with errors.Is:
//
//	if errors.Is(err, errs.ErrUnsupportedVersion) {
//	    // ...
//	}
package errs

import "errors"

// Container envelope errors.
var (
	ErrNotAContainer      = errors.New("not a gbx container")
	ErrUnsupportedVersion = errors.New("unsupported gbx version")
	ErrUnsupportedFormat  = errors.New("text-formatted gbx is not supported")
	ErrTruncatedStream    = errors.New("unexpected end of stream")
	ErrInvalidCompression = errors.New("invalid compression flag")
)

// Chunk errors.
var (
	ErrChunkDecode       = errors.New("chunk decode failure")
	ErrUnknownChunk      = errors.New("unknown chunk")
	ErrDuplicateChunk    = errors.New("duplicate chunk id in chunk set")
	ErrNodeRequired      = errors.New("chunk requires a node of its class")
	ErrNodeCapability    = errors.New("node does not provide the capability the chunk needs")
	ErrTrailingBytes     = errors.New("chunk left unread bytes")
	ErrInvalidLookbackID = errors.New("invalid lookback identifier")
	ErrInvalidNodeIndex  = errors.New("invalid node index")
)

// Registry errors.
var (
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrRemapCycle            = errors.New("remap cycle")
	ErrRegistryFrozen        = errors.New("registry is frozen")
	ErrInvalidChunkID        = errors.New("chunk id does not belong to a registered class")
)

// Reference errors.
var (
	ErrReferenceUnresolvable = errors.New("reference cannot be resolved")
	ErrReferenceCycle        = errors.New("reference cycle")
)

// Archive and codec errors.
var (
	ErrInvalidArchive     = errors.New("invalid pak archive")
	ErrPartialData        = errors.New("archive entry decoded partially")
	ErrInvalidKey         = errors.New("invalid archive key")
	ErrUnsupportedCodec   = errors.New("unsupported codec")
	ErrDecompressedLength = errors.New("decompressed length mismatch")
	ErrEntryNotFound      = errors.New("archive entry not found")
	ErrDuplicateEntry     = errors.New("duplicate archive entry path")
)
