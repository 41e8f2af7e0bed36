package tafuzz

import "encoding/binary"

// Cursor is a positional, forward-only reader over a test case's raw bytes.
// It is the single source of entropy for the Interpreter: every decode
// advances the offset and a decode never moves it backward.
//
// Each decode helper returns its own (value, error) pair rather than
// leaving a sticky end-of-stream error on the Cursor, since the
// Interpreter needs to react to end-of-input at each expression, not only
// once at the very end.
type Cursor struct {
	data []byte
	off  int
}

// NewCursor wraps the given bytes for reading. The Cursor does not copy the
// slice; callers must not mutate it while fuzzing is in progress.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int { return c.off }

// Len returns the total length of the wrapped input.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

// Slice borrows the next n bytes without copying, advancing the offset by
// n. It fails with ErrEndOfInput if fewer than n bytes remain.
func (c *Cursor) Slice(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, ErrEndOfInput
	}
	s := c.data[c.off : c.off+n]
	c.off += n
	return s, nil
}

// Vec copies the next n bytes into an owned slice, advancing the offset.
func (c *Cursor) Vec(n int) ([]byte, error) {
	s, err := c.Slice(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, s)
	return out, nil
}

// GetU8 decodes a single byte.
func (c *Cursor) GetU8() (uint8, error) {
	s, err := c.Slice(1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

// GetU16 decodes a little-endian uint16.
func (c *Cursor) GetU16() (uint16, error) {
	s, err := c.Slice(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(s), nil
}

// GetU32 decodes a little-endian uint32.
func (c *Cursor) GetU32() (uint32, error) {
	s, err := c.Slice(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(s), nil
}

// GetU64 decodes a little-endian uint64. This is also what backs the
// grammar's Usize variant, a 64-bit word.
func (c *Cursor) GetU64() (uint64, error) {
	s, err := c.Slice(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(s), nil
}

// UsizeArray decodes n consecutive 8-byte little-endian words.
func (c *Cursor) UsizeArray(n int) ([]uint64, error) {
	if n < 0 {
		return nil, ErrEndOfInput
	}
	out := make([]uint64, n)
	for i := range out {
		v, err := c.GetU64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// SliceChoice reads one byte i and returns the element at index i mod
// len(s), failing ErrEmptySliceNoChoice on an empty slice. Used both to pick
// a constructor/member and, generically, wherever the grammar needs to
// choose among a fixed Go slice of candidates.
func SliceChoice[T any](c *Cursor, s []T) (T, error) {
	var zero T
	if len(s) == 0 {
		return zero, ErrEmptySliceNoChoice
	}
	i, err := c.GetU8()
	if err != nil {
		return zero, err
	}
	return s[int(i)%len(s)], nil
}

// SliceChoiceIndex behaves like SliceChoice but additionally returns the
// resolved index, so a caller can tell which element was chosen without
// re-deriving it from the byte already consumed.
func SliceChoiceIndex[T any](c *Cursor, s []T) (T, int, error) {
	var zero T
	if len(s) == 0 {
		return zero, -1, ErrEmptySliceNoChoice
	}
	i, err := c.GetU8()
	if err != nil {
		return zero, -1, err
	}
	idx := int(i) % len(s)
	return s[idx], idx, nil
}
