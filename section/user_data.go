package section

import (
	"fmt"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/stream"
)

// UserDataEntry is one chunk of the user-data table.
type UserDataEntry struct {
	// ChunkID is the remapped chunk ID.
	ChunkID uint32
	Heavy   bool
	// Data is the chunk payload, a sub-slice of the parsed blob.
	Data []byte
}

// ParseUserData splits a user-data blob into its chunks. An empty blob has no
// chunks. remap is applied to the class part of every chunk ID and may be nil.
func ParseUserData(data []byte, remap RemapFunc) ([]UserDataEntry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r := stream.NewReader(data)
	count, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if count < 0 || int64(count)*8 > int64(r.Len()) {
		return nil, fmt.Errorf("%w: user data declares %d chunks", errs.ErrTruncatedStream, count)
	}

	entries := make([]UserDataEntry, count)
	sizes := make([]int, count)
	for i := range entries {
		id, _ := r.UInt32()
		size, _ := r.UInt32()
		if remap != nil {
			id = remap(node.ClassOf(id)) | node.ChunkIndex(id)
		}
		entries[i].ChunkID = id
		entries[i].Heavy = size&HeavyBit != 0
		sizes[i] = int(size &^ HeavyBit)
	}

	for i := range entries {
		payload, err := r.Bytes(sizes[i])
		if err != nil {
			return nil, fmt.Errorf("user data chunk 0x%08X: %w", entries[i].ChunkID, err)
		}
		entries[i].Data = payload
	}

	return entries, nil
}

// EncodeUserData builds a user-data blob. The result is
// 4 + 8*len(entries) + sum of payload lengths bytes long; a table without
// entries still carries its zero count.
func EncodeUserData(entries []UserDataEntry) []byte {
	w := stream.NewWriter()
	w.Int32(int32(len(entries))) //nolint:gosec
	for _, e := range entries {
		size := uint32(len(e.Data)) //nolint:gosec
		if e.Heavy {
			size |= HeavyBit
		}
		w.UInt32(e.ChunkID)
		w.UInt32(size)
	}
	for _, e := range entries {
		_, _ = w.Write(e.Data)
	}

	return w.Bytes()
}
