// Package cipher implements the Blowfish-CBC layer of pak archives.
//
// Archive indexes and entries are encrypted with Blowfish in CBC mode over
// 8-byte blocks. Each encrypted region starts from its own 64-bit IV, stored
// little-endian. NewCBCReader decrypts a stream block by block so entries can
// be decoded without buffering the full ciphertext; NewCBCWriter is its
// inverse and zero-pads the last block on Close.
//
// Keys are derived from an archive secret with DeriveKey.
package cipher
