// Package container implements the gbx container engine: envelope and header
// chunk decoding, body chunk dispatch, node references and the symmetric
// write path.
//
// # Parsing
//
// ParseHeader reads the envelope and decodes the user-data header chunks
// into the root node. ParseBody continues with the reference table and the
// body. Parse does both:
//
//	c, err := container.Parse(data, container.WithRegistry(reg))
//	if err != nil {
//		return err
//	}
//	for _, d := range c.Diagnostics {
//		log.Println(d)
//	}
//
// Chunks without a registered decoder never fail a parse when their extent
// is known: header chunks and skippable body chunks are kept as opaque
// chunks. A non-skippable body chunk that is unknown or fails to decode
// cannot be delimited and terminates the body parse with errs.ErrUnknownChunk
// or errs.ErrChunkDecode; the header stays valid.
//
// # Writing
//
// Bytes serializes the container again. Opaque chunks and raw skippable
// chunks are written byte for byte, decoded chunks through their ReadWrite
// method in write mode.
//
// A Container is owned by one goroutine. Parsing different containers
// concurrently is safe as long as they share only a frozen registry.
package container
