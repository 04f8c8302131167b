// Package node defines the object model shared by the container engine and
// every schema catalogue: nodes, chunks, chunk sets, node references and the
// bidirectional ReaderWriter chunks serialize themselves through.
//
// # Nodes and capabilities
//
// A node is any type implementing Node. Concrete schema variants embed Base,
// which carries the class ID and both chunk sets. Cross-cutting behavior is
// expressed as small capability interfaces the variant implements (see
// Versioned); chunk handlers assert the capability they need instead of a
// concrete type.
//
// # Chunks
//
// A Chunk owns one chunk ID and a single ReadWrite method used for both
// decoding and encoding. Because both directions share the same body, version
// gating through ReaderWriter.InRange is symmetric by construction:
//
//	func (c *Chunk03165000) ReadWrite(n node.Node, rw *node.ReaderWriter) error {
//		rw.Int32(&c.Version)
//		if rw.InRange(int(c.Version), 2, -1) {
//			rw.Float32(&c.Weight)
//		}
//		return rw.Err()
//	}
//
// Chunks the engine cannot interpret are kept as OpaqueChunk values. Skippable
// chunks decoded lazily are SkippableChunk values whose Discover method moves
// them from the raw state to the decoded state.
package node
