package loader

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfedit/elf"
	"github.com/lunixbochs/elfedit/wire"
)

// normalized header records: width and the 32/64 field-order differences
// are erased right after decoding, the rest of the parser is width-blind
type ehdr struct {
	typ, machine         uint16
	entry, phoff, shoff  uint64
	flags                uint32
	phnum, shnum         int
	phentsize, shentsize uint64
	shstrndx             int
}

type phdr struct {
	index                                   uint16
	typ                                     elf.SegmentType
	flags                                   elf.SegmentFlags
	off, vaddr, paddr, filesz, memsz, align uint64
}

type shdr struct {
	index                  uint16
	nameOff                uint32
	name                   []byte
	typ                    elf.SectionType
	flags, addr, off, size uint64
	link, info             uint32
	addralign, entsize     uint64
}

func (p *phdr) end() uint64 { return p.off + p.filesz }

// item is a leaf region placed at its file interval.
type item[W elf.Word] struct {
	off, size uint64
	region    elf.Region[W]
}

// segNode is a tree segment plus the placement info the model drops.
type segNode[W elf.Word] struct {
	ph       *phdr
	seg      *elf.Segment[W]
	children []*segNode[W]
	items    []item[W]
}

func parseFile[W elf.Word](data []byte, ident *wire.Ident, enc elf.Data) (elf.Any, error) {
	order := enc.ByteOrder()
	hdr, err := readEhdr[W](data, order)
	if err != nil {
		return nil, err
	}
	phdrs, err := readPhdrs[W](data, hdr, order)
	if err != nil {
		return nil, err
	}
	shdrs, err := readShdrs[W](data, hdr, order)
	if err != nil {
		return nil, err
	}

	f := elf.New[W](enc, elf.Type(hdr.typ), elf.Machine(hdr.machine))
	f.OSABI = elf.OSABI(ident.OSABI)
	f.ABIVersion = ident.ABIVersion
	f.Entry = W(hdr.entry)
	f.Flags = hdr.flags

	items, err := classifySections[W](data, hdr, shdrs, order)
	if err != nil {
		return nil, err
	}
	items = append(items,
		item[W]{0, uint64(wire.EhdrSize(elf.ClassOf[W]())), elf.HeaderRegion[W]{}})
	if hdr.phnum > 0 {
		items = append(items,
			item[W]{hdr.phoff, uint64(hdr.phnum) * hdr.phentsize, elf.SegmentTableRegion[W]{}})
	}
	if hdr.shnum > 0 {
		items = append(items,
			item[W]{hdr.shoff, uint64(hdr.shnum) * hdr.shentsize, elf.SectionTableRegion[W]{}})
	}

	// the GNU markers describe content owned by other segments, so they
	// live beside the tree rather than in it
	var segs []*segNode[W]
	var relros []*phdr
	for _, ph := range phdrs {
		ph := ph
		switch ph.typ {
		case elf.PT_GNU_STACK:
			f.GnuStack = &elf.GnuStack{Index: ph.index, Executable: ph.flags.Has(elf.PF_X)}
		case elf.PT_GNU_RELRO:
			relros = append(relros, &ph)
		default:
			segs = append(segs, &segNode[W]{
				ph: &ph,
				seg: &elf.Segment[W]{
					Type:     ph.typ,
					Flags:    ph.flags,
					Index:    ph.index,
					VirtAddr: W(ph.vaddr),
					PhysAddr: W(ph.paddr),
					Align:    W(ph.align),
				},
			})
		}
	}
	for _, ph := range relros {
		ref, ok := findLoad(segs, ph.vaddr)
		if !ok {
			return nil, errors.Errorf("PT_GNU_RELRO at %#x is not inside any PT_LOAD", ph.vaddr)
		}
		f.GnuRelro = append(f.GnuRelro, elf.GnuRelroRegion[W]{
			Index:    ph.index,
			RefIndex: ref.seg.Index,
			Start:    W(ph.vaddr),
			Size:     W(ph.memsz),
		})
	}

	roots, top := placeRegions(segs, items)
	f.Regions = buildRegions(data, 0, uint64(len(data)), roots, top)

	// recover each segment's memory-size policy: the writer computes
	// p_memsz from the file extent plus nobits sizes, so inverting with
	// the same total keeps relative sizes stable across a round trip
	for _, s := range segs {
		computed := s.ph.filesz + uint64(s.seg.NoBitsSize())
		if s.ph.memsz >= computed {
			s.seg.MemSize = elf.RelativeSize(W(s.ph.memsz - computed))
		} else {
			s.seg.MemSize = elf.AbsoluteSize(W(s.ph.memsz))
		}
	}
	return f, nil
}

func findLoad[W elf.Word](segs []*segNode[W], vaddr uint64) (*segNode[W], bool) {
	for _, s := range segs {
		if s.ph.typ != elf.PT_LOAD {
			continue
		}
		if (elf.Range[uint64]{Start: s.ph.vaddr, Count: s.ph.memsz}).Contains(vaddr) {
			return s, true
		}
	}
	return nil, false
}

// classifySections turns each section header into its model region. The
// null section is implicit and skipped.
func classifySections[W elf.Word](data []byte, hdr *ehdr, shdrs []shdr, order binary.ByteOrder) ([]item[W], error) {
	symStrtab := make(map[int]bool)
	for _, sh := range shdrs {
		if sh.typ == elf.SHT_SYMTAB {
			symStrtab[int(sh.link)] = true
		}
	}
	var items []item[W]
	for i := range shdrs {
		sh := &shdrs[i]
		if sh.index == 0 {
			continue
		}
		fsize := sh.size
		if sh.typ == elf.SHT_NOBITS {
			fsize = 0
		}
		var r elf.Region[W]
		switch {
		case int(sh.index) == hdr.shstrndx:
			r = elf.SectionNameTableRegion[W]{Index: sh.index}
		case sh.typ == elf.SHT_SYMTAB:
			st, err := readSymtab[W](data, sh, shdrs, order)
			if err != nil {
				return nil, err
			}
			r = st
		case sh.typ == elf.SHT_STRTAB && symStrtab[int(sh.index)]:
			r = elf.StringTableRegion[W]{Index: sh.index}
		case sh.typ == elf.SHT_PROGBITS && string(sh.name) == ".got" &&
			sh.flags&(elf.SHF_WRITE|elf.SHF_ALLOC) == elf.SHF_WRITE|elf.SHF_ALLOC:
			r = &elf.GOT[W]{
				Index:     sh.index,
				Name:      string(sh.name),
				Addr:      W(sh.addr),
				AddrAlign: W(sh.addralign),
				EntSize:   W(sh.entsize),
				Data:      dup(clamp(data, sh.off, sh.size)),
			}
		default:
			sec := &elf.Section[W]{
				Index:     sh.index,
				Name:      string(sh.name),
				Type:      sh.typ,
				Flags:     W(sh.flags),
				Addr:      W(sh.addr),
				Size:      W(sh.size),
				Link:      sh.link,
				Info:      sh.info,
				AddrAlign: W(sh.addralign),
				EntSize:   W(sh.entsize),
			}
			if sh.typ != elf.SHT_NOBITS {
				sec.Data = dup(clamp(data, sh.off, sh.size))
			}
			r = sec
		}
		items = append(items, item[W]{sh.off, fsize, r})
	}
	return items, nil
}

// placeRegions nests segments by file-interval containment and hands every
// leaf item to the innermost segment covering it. Returns the top-level
// segments and the items no segment claims.
func placeRegions[W elf.Word](segs []*segNode[W], items []item[W]) ([]*segNode[W], []item[W]) {
	order := make([]*segNode[W], len(segs))
	copy(order, segs)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].ph.off != order[j].ph.off {
			return order[i].ph.off < order[j].ph.off
		}
		return order[i].ph.filesz > order[j].ph.filesz
	})
	var roots, stack []*segNode[W]
	for _, s := range order {
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if s.ph.off >= top.ph.off && s.ph.end() <= top.ph.end() {
				break
			}
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, s)
		} else {
			top := stack[len(stack)-1]
			top.children = append(top.children, s)
		}
		stack = append(stack, s)
	}

	var top []item[W]
	for _, it := range items {
		var best *segNode[W]
		for _, s := range order {
			// a zero-sized item may sit at the very end of a segment's
			// file range (a trailing nobits section)
			if it.off >= s.ph.off && it.off+it.size <= s.ph.end() {
				if best == nil || s.ph.filesz < best.ph.filesz {
					best = s
				}
			}
		}
		if best != nil {
			best.items = append(best.items, it)
		} else {
			top = append(top, it)
		}
	}
	return roots, top
}

// buildRegions orders a container's children by file offset and fills the
// byte gaps between them with raw regions, recursing into segments.
func buildRegions[W elf.Word](data []byte, start, end uint64, segs []*segNode[W], items []item[W]) []elf.Region[W] {
	type child struct {
		off, size uint64
		region    elf.Region[W]
		seg       *segNode[W]
	}
	children := make([]child, 0, len(segs)+len(items))
	for _, s := range segs {
		children = append(children, child{s.ph.off, s.ph.filesz, s.seg, s})
	}
	for _, it := range items {
		children = append(children, child{it.off, it.size, it.region, nil})
	}
	sort.SliceStable(children, func(i, j int) bool {
		if children[i].off != children[j].off {
			return children[i].off < children[j].off
		}
		return children[i].size > children[j].size
	})

	var out []elf.Region[W]
	cursor := start
	for _, c := range children {
		if c.off > cursor {
			if gap := clampRange(data, cursor, c.off); len(gap) > 0 {
				out = append(out, elf.RawRegion[W]{Data: dup(gap)})
			}
		}
		if c.seg != nil {
			c.seg.seg.Regions = buildRegions(data, c.off, c.off+c.size, c.seg.children, c.seg.items)
		}
		out = append(out, c.region)
		if e := c.off + c.size; e > cursor {
			cursor = e
		}
	}
	if cursor < end {
		if gap := clampRange(data, cursor, end); len(gap) > 0 {
			out = append(out, elf.RawRegion[W]{Data: dup(gap)})
		}
	}
	return out
}

func clamp(data []byte, off, size uint64) []byte {
	return elf.Range[uint64]{Start: off, Count: size}.Slice(data)
}

func clampRange(data []byte, from, to uint64) []byte {
	if to < from {
		return nil
	}
	return clamp(data, from, to-from)
}

func readEhdr[W elf.Word](data []byte, order binary.ByteOrder) (*ehdr, error) {
	r := bytes.NewReader(data)
	if elf.ClassOf[W]() == elf.Class32 {
		var e wire.Ehdr32
		if err := wire.Unpack(r, order, &e); err != nil {
			return nil, err
		}
		return &ehdr{
			typ: e.Type, machine: e.Machine,
			entry: uint64(e.Entry), phoff: uint64(e.Phoff), shoff: uint64(e.Shoff),
			flags: e.Flags,
			phnum: int(e.Phnum), shnum: int(e.Shnum),
			phentsize: uint64(e.Phentsize), shentsize: uint64(e.Shentsize),
			shstrndx: int(e.Shstrndx),
		}, nil
	}
	var e wire.Ehdr64
	if err := wire.Unpack(r, order, &e); err != nil {
		return nil, err
	}
	return &ehdr{
		typ: e.Type, machine: e.Machine,
		entry: e.Entry, phoff: e.Phoff, shoff: e.Shoff,
		flags: e.Flags,
		phnum: int(e.Phnum), shnum: int(e.Shnum),
		phentsize: uint64(e.Phentsize), shentsize: uint64(e.Shentsize),
		shstrndx: int(e.Shstrndx),
	}, nil
}

func tableAt(data []byte, off uint64, n int, entsize uint64, what string) ([]byte, error) {
	size := uint64(n) * entsize
	end := off + size
	if end < off || end > uint64(len(data)) {
		return nil, errors.Errorf("%s table out of bounds: off=%#x count=%d", what, off, n)
	}
	return data[off:end], nil
}

func readPhdrs[W elf.Word](data []byte, hdr *ehdr, order binary.ByteOrder) ([]phdr, error) {
	if hdr.phnum == 0 {
		return nil, nil
	}
	want := uint64(wire.PhdrSize(elf.ClassOf[W]()))
	if hdr.phentsize < want {
		return nil, errors.Errorf("program header entry size %d too small", hdr.phentsize)
	}
	tab, err := tableAt(data, hdr.phoff, hdr.phnum, hdr.phentsize, "program header")
	if err != nil {
		return nil, err
	}
	out := make([]phdr, hdr.phnum)
	for i := range out {
		r := bytes.NewReader(tab[uint64(i)*hdr.phentsize:])
		ph := &out[i]
		if elf.ClassOf[W]() == elf.Class32 {
			var p wire.Phdr32
			if err := wire.Unpack(r, order, &p); err != nil {
				return nil, err
			}
			*ph = phdr{uint16(i), elf.SegmentType(p.Type), elf.SegmentFlags(p.Flags),
				uint64(p.Off), uint64(p.Vaddr), uint64(p.Paddr),
				uint64(p.Filesz), uint64(p.Memsz), uint64(p.Align)}
		} else {
			var p wire.Phdr64
			if err := wire.Unpack(r, order, &p); err != nil {
				return nil, err
			}
			*ph = phdr{uint16(i), elf.SegmentType(p.Type), elf.SegmentFlags(p.Flags),
				p.Off, p.Vaddr, p.Paddr, p.Filesz, p.Memsz, p.Align}
		}
	}
	return out, nil
}

func readShdrs[W elf.Word](data []byte, hdr *ehdr, order binary.ByteOrder) ([]shdr, error) {
	if hdr.shnum == 0 {
		return nil, nil
	}
	want := uint64(wire.ShdrSize(elf.ClassOf[W]()))
	if hdr.shentsize < want {
		return nil, errors.Errorf("section header entry size %d too small", hdr.shentsize)
	}
	tab, err := tableAt(data, hdr.shoff, hdr.shnum, hdr.shentsize, "section header")
	if err != nil {
		return nil, err
	}
	out := make([]shdr, hdr.shnum)
	for i := range out {
		r := bytes.NewReader(tab[uint64(i)*hdr.shentsize:])
		sh := &out[i]
		if elf.ClassOf[W]() == elf.Class32 {
			var s wire.Shdr32
			if err := wire.Unpack(r, order, &s); err != nil {
				return nil, err
			}
			*sh = shdr{uint16(i), s.Name, nil, elf.SectionType(s.Type),
				uint64(s.Flags), uint64(s.Addr), uint64(s.Off), uint64(s.Size),
				s.Link, s.Info, uint64(s.Addralign), uint64(s.Entsize)}
		} else {
			var s wire.Shdr64
			if err := wire.Unpack(r, order, &s); err != nil {
				return nil, err
			}
			*sh = shdr{uint16(i), s.Name, nil, elf.SectionType(s.Type),
				s.Flags, s.Addr, s.Off, s.Size,
				s.Link, s.Info, s.Addralign, s.Entsize}
		}
	}
	// resolve names through the section name table
	if hdr.shstrndx > 0 && hdr.shstrndx < len(out) {
		strs := clamp(data, out[hdr.shstrndx].off, out[hdr.shstrndx].size)
		for i := range out {
			out[i].name = cstring(strs, out[i].nameOff)
		}
	}
	return out, nil
}

func readSymtab[W elf.Word](data []byte, sh *shdr, shdrs []shdr, order binary.ByteOrder) (*elf.SymbolTable[W], error) {
	entsize := uint64(wire.SymSize(elf.ClassOf[W]()))
	if sh.entsize > entsize {
		entsize = sh.entsize
	}
	n := 0
	if entsize > 0 {
		n = int(sh.size / entsize)
	}
	tab, err := tableAt(data, sh.off, n, entsize, "symbol")
	if err != nil {
		return nil, err
	}
	var strs []byte
	if int(sh.link) < len(shdrs) {
		ls := &shdrs[sh.link]
		strs = clamp(data, ls.off, ls.size)
	}
	st := &elf.SymbolTable[W]{
		Index:      sh.index,
		LocalCount: sh.info,
		Entries:    make([]elf.SymbolEntry[W], n),
	}
	for i := 0; i < n; i++ {
		r := bytes.NewReader(tab[uint64(i)*entsize:])
		var nameOff uint32
		var info, other byte
		var shndx uint16
		var value, size uint64
		if elf.ClassOf[W]() == elf.Class32 {
			var s wire.Sym32
			if err := wire.Unpack(r, order, &s); err != nil {
				return nil, err
			}
			nameOff, info, other, shndx = s.Name, s.Info, s.Other, s.Shndx
			value, size = uint64(s.Value), uint64(s.Size)
		} else {
			var s wire.Sym64
			if err := wire.Unpack(r, order, &s); err != nil {
				return nil, err
			}
			nameOff, info, other, shndx = s.Name, s.Info, s.Other, s.Shndx
			value, size = s.Value, s.Size
		}
		bind, typ := elf.SplitSymInfo(info)
		st.Entries[i] = elf.SymbolEntry[W]{
			Name:  cstring(strs, nameOff),
			Bind:  bind,
			Type:  typ,
			Other: other,
			Shndx: elf.SectionIndex(shndx),
			Value: W(value),
			Size:  W(size),
		}
	}
	return st, nil
}
