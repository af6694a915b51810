// Package writer lays out and emits the byte image of an elf model file.
// Layout is a single depth-first pass over the region tree: the file
// offset of every piece follows from the order and alignment of the
// regions, then the header and the two tables are patched with the
// offsets the pass discovered.
package writer

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfedit/elf"
	"github.com/lunixbochs/elfedit/wire"
)

// Bytes validates f and renders it to a byte image.
func Bytes[W elf.Word](f *elf.File[W]) ([]byte, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	c := newContext(f)
	c.collect()
	if err := c.emitRegions(f.Regions); err != nil {
		return nil, err
	}
	if err := c.patch(); err != nil {
		return nil, err
	}
	return c.w.Bytes(), nil
}

// Write renders a width-erased file to w.
func Write(w io.Writer, f elf.Any) error {
	var p []byte
	var err error
	switch f := f.(type) {
	case *elf.File[uint32]:
		p, err = Bytes(f)
	case *elf.File[uint64]:
		p, err = Bytes(f)
	default:
		return errors.Errorf("unsupported file type %T", f)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(p)
	return errors.Wrap(err, "writing image")
}

// WriteFile renders f to the file at path.
func WriteFile(path string, f elf.Any, perm os.FileMode) error {
	var buf bytes.Buffer
	if err := Write(&buf, f); err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), perm), "writing %s", path)
}

// shent and phent are table entries normalized to 64-bit; the patch step
// narrows them back to the wire records of the class.
type shent struct {
	name               uint32
	typ                uint32
	flags              uint64
	addr, off, size    uint64
	link, info         uint32
	addralign, entsize uint64
}

type phent struct {
	typ, flags                            uint32
	off, vaddr, paddr, filesz, memsz, align uint64
}

type context[W elf.Word] struct {
	f     *elf.File[W]
	order binary.ByteOrder
	w     *bytes.Buffer

	shstr, symstr *strtab
	strtabIndex   uint16
	shstrndx      uint16

	phnum, shnum               int
	hasPhdrTable, hasShdrTable bool
	headerAt, phoff, shoff     uint64

	shents   map[uint16]shent
	phents   map[uint16]phent
	segStart map[uint16]uint64
	segVaddr map[uint16]uint64
}

func newContext[W elf.Word](f *elf.File[W]) *context[W] {
	return &context[W]{
		f:        f,
		order:    f.ByteOrder(),
		w:        new(bytes.Buffer),
		shstr:    newStrtab(),
		symstr:   newStrtab(),
		shents:   make(map[uint16]shent),
		phents:   make(map[uint16]phent),
		segStart: make(map[uint16]uint64),
		segVaddr: make(map[uint16]uint64),
	}
}

// collect sizes the string tables and counts the table entries before any
// byte is placed. Every name added here is added again, idempotently,
// during emission, so both passes agree on offsets.
func (c *context[W]) collect() {
	maxSec := -1
	sec := func(index uint16) {
		if int(index) > maxSec {
			maxSec = int(index)
		}
	}
	c.f.Walk(func(r elf.Region[W]) bool {
		switch r := r.(type) {
		case *elf.Segment[W]:
			c.phnum++
		case *elf.Section[W]:
			c.shstr.add(r.Name)
			sec(r.Index)
		case *elf.GOT[W]:
			c.shstr.add(r.Name)
			sec(r.Index)
		case *elf.SymbolTable[W]:
			c.shstr.add(".symtab")
			sec(r.Index)
			for _, e := range r.Entries {
				c.symstr.add(string(e.Name))
			}
		case elf.StringTableRegion[W]:
			c.shstr.add(".strtab")
			c.strtabIndex = r.Index
			sec(r.Index)
		case elf.SectionNameTableRegion[W]:
			c.shstr.add(".shstrtab")
			sec(r.Index)
		}
		return true
	})
	if c.f.GnuStack != nil {
		c.phnum++
	}
	c.phnum += len(c.f.GnuRelro)
	if maxSec >= 0 {
		c.shnum = maxSec + 1
	}
}

func (c *context[W]) off() uint64 { return uint64(c.w.Len()) }

func (c *context[W]) zeros(n int) { c.w.Write(make([]byte, n)) }

// padTo advances to the next multiple of align.
func (c *context[W]) padTo(align uint64) {
	if align > 1 {
		for c.off()%align != 0 {
			c.w.WriteByte(0)
		}
	}
}

// padCongruent advances until offset and vaddr agree modulo align, the
// layout rule loadable segments need.
func (c *context[W]) padCongruent(align, vaddr uint64) {
	if align > 1 {
		for c.off()%align != vaddr%align {
			c.w.WriteByte(0)
		}
	}
}

func (c *context[W]) wordSize() uint64 {
	return uint64(elf.ClassOf[W]().ByteWidth())
}

func (c *context[W]) emitRegions(regions []elf.Region[W]) error {
	for _, r := range regions {
		if err := c.emitRegion(r); err != nil {
			return err
		}
	}
	return nil
}

func (c *context[W]) emitRegion(r elf.Region[W]) error {
	switch r := r.(type) {
	case elf.HeaderRegion[W]:
		c.headerAt = c.off()
		c.zeros(wire.EhdrSize(elf.ClassOf[W]()))
	case elf.SegmentTableRegion[W]:
		c.padTo(c.wordSize())
		c.phoff = c.off()
		c.hasPhdrTable = true
		c.zeros(c.phnum * wire.PhdrSize(elf.ClassOf[W]()))
	case elf.SectionTableRegion[W]:
		c.padTo(c.wordSize())
		c.shoff = c.off()
		c.hasShdrTable = true
		c.zeros(c.shnum * wire.ShdrSize(elf.ClassOf[W]()))
	case elf.SectionNameTableRegion[W]:
		c.shstrndx = r.Index
		p := c.shstr.bytes()
		c.shents[r.Index] = shent{
			name: c.shstr.add(".shstrtab"),
			typ:  uint32(elf.SHT_STRTAB),
			off:  c.off(),
			size: uint64(len(p)),
		}
		c.w.Write(p)
	case elf.StringTableRegion[W]:
		p := c.symstr.bytes()
		c.shents[r.Index] = shent{
			name: c.shstr.add(".strtab"),
			typ:  uint32(elf.SHT_STRTAB),
			off:  c.off(),
			size: uint64(len(p)),
		}
		c.w.Write(p)
	case *elf.SymbolTable[W]:
		c.padTo(c.wordSize())
		off := c.off()
		for i := range r.Entries {
			if err := c.emitSymbol(&r.Entries[i]); err != nil {
				return err
			}
		}
		c.shents[r.Index] = shent{
			name:      c.shstr.add(".symtab"),
			typ:       uint32(elf.SHT_SYMTAB),
			off:       off,
			size:      c.off() - off,
			link:      uint32(c.strtabIndex),
			info:      r.LocalCount,
			addralign: c.wordSize(),
			entsize:   uint64(wire.SymSize(elf.ClassOf[W]())),
		}
	case *elf.GOT[W]:
		return c.emitSection(r.Section())
	case *elf.Section[W]:
		return c.emitSection(r)
	case *elf.Segment[W]:
		c.padCongruent(uint64(r.Align), uint64(r.VirtAddr))
		start := c.off()
		if err := c.emitRegions(r.Regions); err != nil {
			return err
		}
		filesz := c.off() - start
		memsz := uint64(r.MemSize.Resolve(W(filesz) + r.NoBitsSize()))
		c.phents[r.Index] = phent{
			typ: uint32(r.Type), flags: uint32(r.Flags),
			off: start, vaddr: uint64(r.VirtAddr), paddr: uint64(r.PhysAddr),
			filesz: filesz, memsz: memsz, align: uint64(r.Align),
		}
		c.segStart[r.Index] = start
		c.segVaddr[r.Index] = uint64(r.VirtAddr)
	case elf.RawRegion[W]:
		c.w.Write(r.Data)
	default:
		return errors.Errorf("unknown region type %T", r)
	}
	return nil
}

func (c *context[W]) emitSection(s *elf.Section[W]) error {
	// nobits sections reserve no file bytes, so they don't force padding
	// either
	if s.Type != elf.SHT_NOBITS {
		c.padTo(uint64(s.AddrAlign))
	}
	ent := shent{
		name:      c.shstr.add(s.Name),
		typ:       uint32(s.Type),
		flags:     uint64(s.Flags),
		addr:      uint64(s.Addr),
		off:       c.off(),
		link:      s.Link,
		info:      s.Info,
		addralign: uint64(s.AddrAlign),
		entsize:   uint64(s.EntSize),
	}
	if s.Type == elf.SHT_NOBITS {
		ent.size = uint64(s.Size)
	} else {
		ent.size = uint64(len(s.Data))
		c.w.Write(s.Data)
	}
	c.shents[s.Index] = ent
	return nil
}

func (c *context[W]) emitSymbol(e *elf.SymbolEntry[W]) error {
	name := c.symstr.add(string(e.Name))
	info := elf.SymInfo(e.Bind, e.Type)
	if elf.ClassOf[W]() == elf.Class32 {
		return wire.Pack(c.w, c.order, &wire.Sym32{
			Name: name, Value: uint32(e.Value), Size: uint32(e.Size),
			Info: info, Other: e.Other, Shndx: uint16(e.Shndx),
		})
	}
	return wire.Pack(c.w, c.order, &wire.Sym64{
		Name: name, Info: info, Other: e.Other, Shndx: uint16(e.Shndx),
		Value: uint64(e.Value), Size: uint64(e.Size),
	})
}

// patch fills in the header and both tables now that every offset is
// known.
func (c *context[W]) patch() error {
	buf := c.w.Bytes()

	if c.hasPhdrTable {
		if c.f.GnuStack != nil {
			flags := elf.PF_R | elf.PF_W
			if c.f.GnuStack.Executable {
				flags |= elf.PF_X
			}
			c.phents[c.f.GnuStack.Index] = phent{
				typ: uint32(elf.PT_GNU_STACK), flags: uint32(flags), align: 0x10,
			}
		}
		for _, r := range c.f.GnuRelro {
			vaddr, start := c.segVaddr[r.RefIndex], c.segStart[r.RefIndex]
			if uint64(r.Start) < vaddr {
				return errors.Errorf("relro region %d starts before segment %d", r.Index, r.RefIndex)
			}
			c.phents[r.Index] = phent{
				typ: uint32(elf.PT_GNU_RELRO), flags: uint32(elf.PF_R),
				off:   start + uint64(r.Start) - vaddr,
				vaddr: uint64(r.Start), paddr: uint64(r.Start),
				filesz: uint64(r.Size), memsz: uint64(r.Size), align: 1,
			}
		}
		var tab bytes.Buffer
		for slot := 0; slot < c.phnum; slot++ {
			ent, ok := c.phents[uint16(slot)]
			if !ok {
				return errors.Errorf("no segment occupies table slot %d", slot)
			}
			if err := c.packPhdr(&tab, &ent); err != nil {
				return err
			}
		}
		copy(buf[c.phoff:], tab.Bytes())
	}

	if c.hasShdrTable {
		var tab bytes.Buffer
		for slot := 0; slot < c.shnum; slot++ {
			// absent slots, index 0 included, become null entries
			ent := c.shents[uint16(slot)]
			if err := c.packShdr(&tab, &ent); err != nil {
				return err
			}
		}
		copy(buf[c.shoff:], tab.Bytes())
	}

	var hdr bytes.Buffer
	if err := c.packEhdr(&hdr); err != nil {
		return err
	}
	copy(buf[c.headerAt:], hdr.Bytes())
	return nil
}

func (c *context[W]) packPhdr(w io.Writer, e *phent) error {
	if elf.ClassOf[W]() == elf.Class32 {
		return wire.Pack(w, c.order, &wire.Phdr32{
			Type: e.typ, Off: uint32(e.off), Vaddr: uint32(e.vaddr), Paddr: uint32(e.paddr),
			Filesz: uint32(e.filesz), Memsz: uint32(e.memsz), Flags: e.flags, Align: uint32(e.align),
		})
	}
	return wire.Pack(w, c.order, &wire.Phdr64{
		Type: e.typ, Flags: e.flags, Off: e.off, Vaddr: e.vaddr, Paddr: e.paddr,
		Filesz: e.filesz, Memsz: e.memsz, Align: e.align,
	})
}

func (c *context[W]) packShdr(w io.Writer, e *shent) error {
	if elf.ClassOf[W]() == elf.Class32 {
		return wire.Pack(w, c.order, &wire.Shdr32{
			Name: e.name, Type: e.typ, Flags: uint32(e.flags), Addr: uint32(e.addr),
			Off: uint32(e.off), Size: uint32(e.size), Link: e.link, Info: e.info,
			Addralign: uint32(e.addralign), Entsize: uint32(e.entsize),
		})
	}
	return wire.Pack(w, c.order, &wire.Shdr64{
		Name: e.name, Type: e.typ, Flags: e.flags, Addr: e.addr,
		Off: e.off, Size: e.size, Link: e.link, Info: e.info,
		Addralign: e.addralign, Entsize: e.entsize,
	})
}

func (c *context[W]) packEhdr(w io.Writer) error {
	class := elf.ClassOf[W]()
	ident := wire.Ident{
		Magic:      string(wire.Magic),
		Class:      class.Byte(),
		Data:       c.f.Data.Byte(),
		Version:    wire.EV_CURRENT,
		OSABI:      byte(c.f.OSABI),
		ABIVersion: c.f.ABIVersion,
		Pad:        string(make([]byte, 7)),
	}
	var phentsize, shentsize uint16
	if c.hasPhdrTable {
		phentsize = uint16(wire.PhdrSize(class))
	}
	if c.hasShdrTable {
		shentsize = uint16(wire.ShdrSize(class))
	}
	phnum, shnum := uint16(0), uint16(0)
	if c.hasPhdrTable {
		phnum = uint16(c.phnum)
	}
	if c.hasShdrTable {
		shnum = uint16(c.shnum)
	}
	if class == elf.Class32 {
		return wire.Pack(w, c.order, &wire.Ehdr32{
			Ident: ident, Type: uint16(c.f.Type), Machine: uint16(c.f.Machine),
			Version: wire.EV_CURRENT, Entry: uint32(c.f.Entry),
			Phoff: uint32(c.phoff), Shoff: uint32(c.shoff), Flags: c.f.Flags,
			Ehsize: uint16(wire.EhdrSize32), Phentsize: phentsize, Phnum: phnum,
			Shentsize: shentsize, Shnum: shnum, Shstrndx: c.shstrndx,
		})
	}
	return wire.Pack(w, c.order, &wire.Ehdr64{
		Ident: ident, Type: uint16(c.f.Type), Machine: uint16(c.f.Machine),
		Version: wire.EV_CURRENT, Entry: uint64(c.f.Entry),
		Phoff: c.phoff, Shoff: c.shoff, Flags: c.f.Flags,
		Ehsize: uint16(wire.EhdrSize64), Phentsize: phentsize, Phnum: phnum,
		Shentsize: shentsize, Shnum: shnum, Shstrndx: c.shstrndx,
	})
}
