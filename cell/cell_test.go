package cell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gotvm/decompiler/cell"
)

func TestSliceLoadUint(t *testing.T) {
	// 0xA5 == 10100101
	c := cell.New([]byte{0xA5}, 8, nil)
	sl := c.BeginParse()

	v, err := sl.LoadUint(4)
	require.NoError(t, err)
	require.EqualValues(t, 0xA, v)

	v, err = sl.LoadUint(4)
	require.NoError(t, err)
	require.EqualValues(t, 0x5, v)

	require.Equal(t, 0, sl.RemainingBits())
}

func TestSliceLoadIntSigned(t *testing.T) {
	// 4-bit two's complement -1 is 1111
	c := cell.New([]byte{0xF0}, 4, nil)
	sl := c.BeginParse()

	v, err := sl.LoadInt(4)
	require.NoError(t, err)
	require.EqualValues(t, -1, v)
}

func TestSliceOutOfBits(t *testing.T) {
	c := cell.New([]byte{0xFF}, 4, nil)
	sl := c.BeginParse()

	_, err := sl.LoadUint(8)
	require.ErrorIs(t, err, cell.ErrOutOfBits)
}

func TestSliceRefsAndClone(t *testing.T) {
	leaf := cell.New([]byte{0xFF}, 8, nil)
	root := cell.New([]byte{0x00}, 8, []*cell.Cell{leaf})

	sl := root.BeginParse()
	clone := sl.Clone()

	_, err := sl.LoadRef()
	require.NoError(t, err)
	require.Equal(t, 0, sl.RemainingRefs())

	// clone is unaffected by the original's advance
	require.Equal(t, 1, clone.RemainingRefs())
}

func TestSliceStripCompletionTag(t *testing.T) {
	// payload "1010" followed by completion tag "1000..." -> meaningful bits
	// end right after the "1010" once the tag is stripped.
	c := cell.New([]byte{0b10101000}, 8, nil)
	sl := c.BeginParse()

	stripped, err := sl.StripCompletionTag()
	require.NoError(t, err)
	require.Equal(t, 4, stripped.RemainingBits())

	v, err := stripped.LoadUint(4)
	require.NoError(t, err)
	require.EqualValues(t, 0b1010, v)
}
