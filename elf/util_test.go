package elf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRangeContains(t *testing.T) {
	r := Range[uint64]{Start: 3, Count: 4}
	for x := uint64(0); x < 10; x++ {
		require.Equal(t, x >= 3 && x < 7, r.Contains(x), "x=%d", x)
	}
	// the low-bound guard must run before the subtraction: a value below
	// Start returns false instead of wrapping into range
	require.False(t, Range[uint64]{Start: 10, Count: ^uint64(0)}.Contains(2))
	require.False(t, Range[uint32]{Start: 1, Count: 1}.Contains(0))
}

func TestRangeSlice(t *testing.T) {
	buf := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	require.Equal(t, []byte{2, 3, 4}, Range[uint32]{2, 3}.Slice(buf))
	// clamped, not an error
	require.Equal(t, []byte{6, 7}, Range[uint32]{6, 100}.Slice(buf))
	require.Nil(t, Range[uint32]{100, 4}.Slice(buf))
	require.Empty(t, Range[uint32]{4, 0}.Slice(buf))
}

func TestHex(t *testing.T) {
	require.Equal(t, "0x000000ff", Hex(uint32(255)))
	require.Equal(t, "0x00000000000000ff", Hex(uint64(255)))
	require.Equal(t, "0xdeadbeef", Hex(uint32(0xdeadbeef)))
}

func TestHexN(t *testing.T) {
	require.Equal(t, "0xff", hexN(255, 8))
	require.Equal(t, "0x0f", hexN(15, 8))
	require.Equal(t, "0x0001", hexN(1, 16))
}
