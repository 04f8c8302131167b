package stream

import (
	"fmt"
	"slices"

	"github.com/arloliu/gbx/errs"
)

// Lookback identifier constants.
const (
	IdentVersion   uint32 = 3
	identEmpty     uint32 = 0xFFFFFFFF
	identFlagMask  uint32 = 0xC0000000
	identIndexMask uint32 = 0x3FFFFFFF
	identNewString uint32 = 0x40000000
)

// Ident is a lookback identifier: empty, a numeric collection id, or a string.
type Ident struct {
	Value      string
	Collection uint32
	IsNumber   bool
}

// StringIdent returns a string identifier.
func StringIdent(s string) Ident {
	return Ident{Value: s}
}

// NumberIdent returns a numeric collection identifier.
func NumberIdent(n uint32) Ident {
	return Ident{Collection: n, IsNumber: true}
}

// IsEmpty reports whether the identifier carries no value.
func (id Ident) IsEmpty() bool {
	return !id.IsNumber && id.Value == ""
}

func (id Ident) String() string {
	if id.IsNumber {
		return fmt.Sprintf("#%d", id.Collection)
	}

	return id.Value
}

// IdState is the per-scope lookback string table.
//
// The first identifier read or written in a scope is preceded by the table
// version. Every header chunk has its own state; the body shares one.
type IdState struct {
	version uint32
	started bool
	strings []string
}

// NewIdState creates an empty lookback state.
func NewIdState() *IdState {
	return &IdState{}
}

// Clone returns an independent copy of the state.
func (s *IdState) Clone() *IdState {
	return &IdState{version: s.version, started: s.started, strings: slices.Clone(s.strings)}
}

// Version returns the table version seen or written, zero before first use.
func (s *IdState) Version() uint32 {
	return s.version
}

// Strings returns the table contents in insertion order.
func (s *IdState) Strings() []string {
	return s.strings
}

func (s *IdState) read(r *Reader) (Ident, error) {
	if !s.started {
		v, err := r.UInt32()
		if err != nil {
			return Ident{}, err
		}
		s.version = v
		s.started = true
	}

	v, err := r.UInt32()
	if err != nil {
		return Ident{}, err
	}

	switch {
	case v == identEmpty:
		return Ident{}, nil
	case v&identFlagMask == 0:
		return NumberIdent(v), nil
	case v&identIndexMask == 0:
		str, err := r.String()
		if err != nil {
			return Ident{}, err
		}
		s.strings = append(s.strings, str)

		return StringIdent(str), nil
	}

	idx := int(v & identIndexMask)
	if idx > len(s.strings) {
		return Ident{}, fmt.Errorf("%w: index %d with %d known strings", errs.ErrInvalidLookbackID, idx, len(s.strings))
	}

	return StringIdent(s.strings[idx-1]), nil
}

func (s *IdState) write(w *Writer, id Ident) error {
	if !s.started {
		s.version = IdentVersion
		s.started = true
		w.UInt32(IdentVersion)
	}

	switch {
	case id.IsNumber:
		if id.Collection&identFlagMask != 0 {
			return fmt.Errorf("%w: collection id 0x%08X uses reserved bits", errs.ErrInvalidLookbackID, id.Collection)
		}
		w.UInt32(id.Collection)
	case id.Value == "":
		w.UInt32(identEmpty)
	default:
		if idx := slices.Index(s.strings, id.Value); idx >= 0 {
			w.UInt32(identNewString | uint32(idx+1)) //nolint:gosec
			return nil
		}
		w.UInt32(identNewString)
		w.String(id.Value)
		s.strings = append(s.strings, id.Value)
	}

	return nil
}
