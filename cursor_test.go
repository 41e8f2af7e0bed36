package tafuzz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorGetU8EndOfInput(t *testing.T) {
	c := NewCursor(nil)
	_, err := c.GetU8()
	require.ErrorIs(t, err, ErrEndOfInput)
}

func TestCursorLittleEndianDecoding(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
	v16, err := c.GetU16()
	require.NoError(t, err)
	require.EqualValues(t, 0x0201, v16)

	v32, err := c.GetU32()
	require.NoError(t, err)
	require.EqualValues(t, 0x06050403, v32)

	// only 2 bytes remain (07, 08); GetU64 needs 8.
	_, err = c.GetU64()
	require.ErrorIs(t, err, ErrEndOfInput)
}

func TestCursorSliceBorrowsDoesNotCopy(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	c := NewCursor(data)
	s, err := c.Slice(2)
	require.NoError(t, err)
	require.Equal(t, 2, c.Offset())
	s[0] = 0xff
	require.Equal(t, byte(0xff), data[0])
}

func TestCursorVecCopies(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	c := NewCursor(data)
	v, err := c.Vec(2)
	require.NoError(t, err)
	v[0] = 0xff
	require.Equal(t, byte(1), data[0])
}

func TestSliceChoiceEmpty(t *testing.T) {
	c := NewCursor([]byte{0})
	_, err := SliceChoice(c, []int{})
	require.ErrorIs(t, err, ErrEmptySliceNoChoice)
}

func TestSliceChoiceWrapsModLength(t *testing.T) {
	c := NewCursor([]byte{5})
	v, err := SliceChoice(c, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, "c", v) // 5 % 3 == 2
}
