package writer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/lunixbochs/elfedit/elf"
	"github.com/lunixbochs/elfedit/loader"
)

// fixture64 is laid out so no implicit padding occurs: every piece lands
// on its alignment naturally, which lets the round trip compare whole
// trees instead of field subsets.
func fixture64() *elf.File[uint64] {
	textData := make([]byte, 16)
	for i := range textData {
		textData[i] = byte(i)
	}
	text := &elf.Section[uint64]{
		Index: 1, Name: ".text", Type: elf.SHT_PROGBITS,
		Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR,
		Addr:  0x401000, Size: 16, AddrAlign: 16, Data: textData,
	}
	got := &elf.GOT[uint64]{
		Index: 3, Name: ".got", Addr: 0x402000, AddrAlign: 8, EntSize: 8,
		Data: make([]byte, 16),
	}
	bss := &elf.Section[uint64]{
		Index: 2, Name: ".bss", Type: elf.SHT_NOBITS,
		Flags: elf.SHF_WRITE | elf.SHF_ALLOC,
		Addr:  0x402010, Size: 0x20, AddrAlign: 8,
	}
	syms := &elf.SymbolTable[uint64]{
		Index: 4, LocalCount: 2,
		Entries: []elf.SymbolEntry[uint64]{
			{},
			{Name: []byte("_start"), Bind: elf.STB_LOCAL, Type: elf.STT_FUNC,
				Shndx: 1, Value: 0x401000, Size: 16},
			{Name: []byte("main"), Bind: elf.STB_GLOBAL, Type: elf.STT_FUNC,
				Shndx: 1, Value: 0x401000, Size: 16},
		},
	}
	load := &elf.Segment[uint64]{
		Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_X, Index: 0,
		VirtAddr: 0x400000, PhysAddr: 0x400000,
		Regions: []elf.Region[uint64]{
			elf.HeaderRegion[uint64]{},
			elf.SegmentTableRegion[uint64]{},
			text,
		},
	}
	data := &elf.Segment[uint64]{
		Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_W, Index: 1,
		VirtAddr: 0x402000, PhysAddr: 0x402000,
		Regions:  []elf.Region[uint64]{got, bss},
	}
	f := elf.New[uint64](elf.Data2LSB, elf.ET_EXEC, elf.EM_X86_64)
	f.Entry = 0x401000
	f.GnuStack = &elf.GnuStack{Index: 2, Executable: false}
	f.GnuRelro = []elf.GnuRelroRegion[uint64]{
		{Index: 3, RefIndex: 1, Start: 0x402000, Size: 0x10},
	}
	f.Regions = []elf.Region[uint64]{
		load, data, syms,
		elf.StringTableRegion[uint64]{Index: 5},
		elf.SectionNameTableRegion[uint64]{Index: 6},
		elf.SectionTableRegion[uint64]{},
	}
	return f
}

func fixture32() *elf.File[uint32] {
	text := &elf.Section[uint32]{
		Index: 1, Name: ".text", Type: elf.SHT_PROGBITS,
		Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR,
		Addr:  0x8048054, Size: 8, AddrAlign: 4, Data: make([]byte, 8),
	}
	syms := &elf.SymbolTable[uint32]{
		Index: 2, LocalCount: 1,
		Entries: []elf.SymbolEntry[uint32]{
			{},
			{Name: []byte("f"), Bind: elf.STB_GLOBAL, Type: elf.STT_FUNC,
				Shndx: 1, Value: 0x8048054, Size: 8},
		},
	}
	load := &elf.Segment[uint32]{
		Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_X, Index: 0,
		VirtAddr: 0x8048000, PhysAddr: 0x8048000,
		Regions: []elf.Region[uint32]{
			elf.HeaderRegion[uint32]{},
			elf.SegmentTableRegion[uint32]{},
			text,
		},
	}
	f := elf.New[uint32](elf.Data2MSB, elf.ET_EXEC, elf.EM_MIPS)
	f.Entry = 0x8048054
	f.Regions = []elf.Region[uint32]{
		load, syms,
		elf.StringTableRegion[uint32]{Index: 3},
		elf.SectionNameTableRegion[uint32]{Index: 4},
		elf.SectionTableRegion[uint32]{},
	}
	return f
}

func TestRoundTrip64(t *testing.T) {
	f := fixture64()
	p, err := Bytes(f)
	require.NoError(t, err)

	back, err := loader.LoadBytes(p)
	require.NoError(t, err)
	f2, ok := back.(*elf.File[uint64])
	require.True(t, ok)
	require.Empty(t, cmp.Diff(f, f2))
}

func TestRoundTrip32(t *testing.T) {
	f := fixture32()
	p, err := Bytes(f)
	require.NoError(t, err)

	back, err := loader.LoadBytes(p)
	require.NoError(t, err)
	f2, ok := back.(*elf.File[uint32])
	require.True(t, ok)
	require.Empty(t, cmp.Diff(f, f2))
}

// A written image must be a fixpoint: loading it and writing the loaded
// model again reproduces the same bytes, even when layout padding turned
// into explicit raw regions on the way through the loader.
func TestWriteLoadWriteFixpoint(t *testing.T) {
	text := &elf.Section[uint64]{
		Index: 1, Name: ".text", Type: elf.SHT_PROGBITS,
		Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR,
		Addr:  0x401000, Size: 13, AddrAlign: 16, Data: make([]byte, 13),
	}
	syms := &elf.SymbolTable[uint64]{
		Index: 2, LocalCount: 1,
		Entries: []elf.SymbolEntry[uint64]{{}},
	}
	load := &elf.Segment[uint64]{
		Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_X, Index: 0,
		VirtAddr: 0x400000, PhysAddr: 0x400000,
		Regions: []elf.Region[uint64]{
			elf.HeaderRegion[uint64]{},
			elf.SegmentTableRegion[uint64]{},
			text,
		},
	}
	f := elf.New[uint64](elf.Data2LSB, elf.ET_EXEC, elf.EM_X86_64)
	f.Regions = []elf.Region[uint64]{
		load, syms,
		elf.StringTableRegion[uint64]{Index: 3},
		elf.SectionNameTableRegion[uint64]{Index: 4},
		elf.SectionTableRegion[uint64]{},
	}

	p1, err := Bytes(f)
	require.NoError(t, err)
	back, err := loader.LoadBytes(p1)
	require.NoError(t, err)
	p2, err := Bytes(back.(*elf.File[uint64]))
	require.NoError(t, err)
	require.Equal(t, p1, p2)
}
