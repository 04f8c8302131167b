// Package section defines the binary layout of the gbx container envelope and
// of the user-data header chunk table.
//
// # Envelope
//
// All fields are little-endian:
//
//	"GBX"                     magic
//	int16   version           3..6
//	byte    format            'B' (binary); 'T' (text) is rejected
//	byte    refTableCompression 'U' or 'C'
//	byte    bodyCompression     'U' or 'C'
//	byte    unknown           version >= 4 only
//	uint32  classID           remapped on read
//	int32   userDataLength    version >= 6 only
//	[]byte  userData          version >= 6 only
//	int32   numNodes
//
// The reference table and body follow the envelope; they are handled by the
// container package.
//
// # User data
//
//	int32   chunkCount
//	chunkCount x (uint32 chunkID, uint32 size | heavy<<31)
//	payloads concatenated in table order
package section
