// Package archive reads and writes pak archives.
//
// A pak archive is a plain envelope followed by a Blowfish-CBC encrypted
// index and the encrypted entry regions:
//
//	"NadeoPak" | int32 version | uint64 index IV | encrypted index | entries
//
// The decrypted index starts with the MD5 of the rest of the index, the
// absolute offset of the entry data, the archive flags, the folder table and
// the file table. Each entry region holds its own 8-byte IV followed by the
// ciphertext of the stored or zlib-compressed payload.
//
// Entries are extracted on demand. A truncated or corrupt compressed payload
// yields its decoded prefix with Extraction.Partial set instead of failing.
// Extracted data can be kept in a compressed in-memory cache, see WithCache.
package archive
