package elf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	f := New[uint32](Data2MSB, ET_REL, EM_MIPS)
	require.Equal(t, Class32, f.Class())
	require.Equal(t, 32, f.Bits())
	require.Equal(t, ELFOSABI_NONE, f.OSABI)
	require.Equal(t, byte(0), f.ABIVersion)
	require.Equal(t, uint32(0), f.Entry)
	require.Equal(t, uint32(0), f.Flags)
	require.Empty(t, f.Regions)
	require.Nil(t, f.GnuStack)
	require.Empty(t, f.GnuRelro)
}

func TestHeaderProjection(t *testing.T) {
	f := New[uint64](Data2LSB, ET_DYN, EM_AARCH64)
	h := f.Header()
	require.Equal(t, Class64, h.Class)
	require.Equal(t, ET_DYN, h.Type)
	require.Equal(t, EM_AARCH64, h.Machine)
	require.Equal(t, uint64(0), h.Entry)

	// the projection reflects live state, not a cached copy
	f.Entry = 0x400000
	f.OSABI = ELFOSABI_GNU
	h = f.Header()
	require.Equal(t, uint64(0x400000), h.Entry)
	require.Equal(t, ELFOSABI_GNU, h.OSABI)
}

func TestGOTSection(t *testing.T) {
	got := &GOT[uint64]{
		Index:     5,
		Name:      ".got",
		Addr:      0x601000,
		AddrAlign: 8,
		EntSize:   8,
		Data:      []byte{1, 2, 3, 4, 5, 6, 7, 8},
	}
	sec := got.Section()
	require.Equal(t, uint16(5), sec.Index)
	require.Equal(t, ".got", sec.Name)
	require.Equal(t, uint64(0x601000), sec.Addr)
	require.Equal(t, uint64(8), sec.AddrAlign)
	require.Equal(t, uint64(8), sec.EntSize)
	require.Equal(t, got.Data, sec.Data)
	require.Equal(t, uint64(8), sec.Size)
	require.Equal(t, SHT_PROGBITS, sec.Type)
	require.Equal(t, uint64(SHF_WRITE|SHF_ALLOC), sec.Flags)
}

func TestDump(t *testing.T) {
	f := nestedFixture()
	f.Entry = 0x1000
	f.GnuStack = &GnuStack{Index: 2, Executable: false}
	out := f.Dump()
	require.Contains(t, out, "class:   ELFCLASS64")
	require.Contains(t, out, "entry:   0x0000000000001000")
	require.Contains(t, out, "gnu stack: #2 exec=false")
	require.Contains(t, out, `section #1 ".text"`)
	require.Contains(t, out, "raw 1 bytes: ff")

	// nesting is reflected as indentation
	lines := strings.Split(out, "\n")
	var dataLine string
	for _, l := range lines {
		if strings.Contains(l, ".data") {
			dataLine = l
		}
	}
	require.True(t, strings.HasPrefix(dataLine, strings.Repeat("  ", 5)), "line %q", dataLine)
}

func TestAnyInterface(t *testing.T) {
	var a Any = New[uint32](Data2LSB, ET_EXEC, EM_386)
	require.Equal(t, Class32, a.Class())
	a = New[uint64](Data2LSB, ET_EXEC, EM_X86_64)
	require.Equal(t, 64, a.Bits())
}
