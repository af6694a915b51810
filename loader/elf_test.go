package loader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lunixbochs/elfedit/elf"
	"github.com/lunixbochs/elfedit/writer"
)

func builtImage(t *testing.T) []byte {
	t.Helper()
	got := &elf.GOT[uint64]{
		Index: 2, Name: ".got", Addr: 0x402000, AddrAlign: 8, EntSize: 8,
		Data: make([]byte, 24),
	}
	syms := &elf.SymbolTable[uint64]{
		Index: 3, LocalCount: 1,
		Entries: []elf.SymbolEntry[uint64]{
			{},
			{Name: []byte("answer"), Bind: elf.STB_GLOBAL, Type: elf.STT_OBJECT,
				Shndx: 1, Value: 0x401000, Size: 8},
		},
	}
	load := &elf.Segment[uint64]{
		Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_X, Index: 0,
		VirtAddr: 0x400000, PhysAddr: 0x400000,
		Regions: []elf.Region[uint64]{
			elf.HeaderRegion[uint64]{},
			elf.SegmentTableRegion[uint64]{},
			&elf.Section[uint64]{Index: 1, Name: ".text", Type: elf.SHT_PROGBITS,
				Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Addr: 0x401000,
				Size: 8, AddrAlign: 8, Data: make([]byte, 8)},
		},
	}
	data := &elf.Segment[uint64]{
		Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_W, Index: 1,
		VirtAddr: 0x402000, PhysAddr: 0x402000,
		Regions:  []elf.Region[uint64]{got},
	}
	f := elf.New[uint64](elf.Data2LSB, elf.ET_EXEC, elf.EM_X86_64)
	f.Entry = 0x401000
	f.GnuStack = &elf.GnuStack{Index: 2, Executable: true}
	f.Regions = []elf.Region[uint64]{
		load, data, syms,
		elf.StringTableRegion[uint64]{Index: 4},
		elf.SectionNameTableRegion[uint64]{Index: 5},
		elf.SectionTableRegion[uint64]{},
	}
	p, err := writer.Bytes(f)
	require.NoError(t, err)
	return p
}

func TestLoadClassify(t *testing.T) {
	back, err := LoadBytes(builtImage(t))
	require.NoError(t, err)
	f, ok := back.(*elf.File[uint64])
	require.True(t, ok)

	// the header and both table markers are inside the first load segment
	segs := f.Segments()
	require.Len(t, segs, 2)
	require.IsType(t, elf.HeaderRegion[uint64]{}, segs[0].Regions[0])
	require.IsType(t, elf.SegmentTableRegion[uint64]{}, segs[0].Regions[1])

	// .got came back as a GOT region, not a generic section
	r, ok := f.Find(func(r elf.Region[uint64]) bool {
		_, ok := r.(*elf.GOT[uint64])
		return ok
	})
	require.True(t, ok)
	require.Equal(t, ".got", r.(*elf.GOT[uint64]).Name)
	require.Len(t, r.(*elf.GOT[uint64]).Data, 24)

	// symtab entries resolved their names through the linked strtab
	st, ok := f.Find(func(r elf.Region[uint64]) bool {
		_, ok := r.(*elf.SymbolTable[uint64])
		return ok
	})
	require.True(t, ok)
	entries := st.(*elf.SymbolTable[uint64]).Entries
	require.Len(t, entries, 2)
	require.Equal(t, []byte("answer"), entries[1].Name)
	require.Equal(t, elf.STB_GLOBAL, entries[1].Bind)

	// PT_GNU_STACK was lifted out of the tree
	require.NotNil(t, f.GnuStack)
	require.True(t, f.GnuStack.Executable)
	require.Equal(t, uint16(2), f.GnuStack.Index)

	require.Contains(t, f.Dump(), "segment #0 PT_LOAD PF_R|PF_X")
}
