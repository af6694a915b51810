package elf

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassFromByte(t *testing.T) {
	for b := 0; b < 256; b++ {
		c, ok := ClassFromByte(byte(b))
		if b == 1 || b == 2 {
			require.True(t, ok, "byte %d", b)
			require.Equal(t, byte(b), c.Byte())
		} else {
			require.False(t, ok, "byte %d", b)
		}
	}
}

func TestClassWidths(t *testing.T) {
	require.Equal(t, 4, Class32.ByteWidth())
	require.Equal(t, 32, Class32.BitWidth())
	require.Equal(t, 8, Class64.ByteWidth())
	require.Equal(t, 64, Class64.BitWidth())
	require.Equal(t, "ELFCLASS32", Class32.String())
	require.Equal(t, "ELFCLASS64", Class64.String())
}

func TestClassOf(t *testing.T) {
	require.Equal(t, Class32, ClassOf[uint32]())
	require.Equal(t, Class64, ClassOf[uint64]())
}

func TestDataFromByte(t *testing.T) {
	for b := 0; b < 256; b++ {
		d, ok := DataFromByte(byte(b))
		if b == 1 || b == 2 {
			require.True(t, ok, "byte %d", b)
			require.Equal(t, byte(b), d.Byte())
		} else {
			require.False(t, ok, "byte %d", b)
		}
	}
}

func TestDataByteOrder(t *testing.T) {
	require.Equal(t, binary.LittleEndian, Data2LSB.ByteOrder())
	require.Equal(t, binary.BigEndian, Data2MSB.ByteOrder())
}
