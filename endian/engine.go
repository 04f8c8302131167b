// Package endian provides the byte order engine used by the gbx codecs.
//
// Gbx containers and Pak archives are little-endian on every platform, so
// only the little-endian engine is exposed. EndianEngine combines
// binary.ByteOrder and binary.AppendByteOrder so encoders can append values
// directly into a growing buffer:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, 0xFACADE01)
//
// All functions in this package are safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
