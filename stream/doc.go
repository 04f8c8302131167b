// Package stream provides the little-endian primitives shared by every gbx
// codec: a bounds-checked cursor Reader over a byte slice, an appending
// Writer, and the lookback identifier table used to deduplicate Id strings.
//
// A premature end of input is reported as an error wrapping
// errs.ErrTruncatedStream. Values are never partially consumed: a failed read
// leaves the cursor where it was.
package stream
