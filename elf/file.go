package elf

import "encoding/binary"

// GnuStack records a PT_GNU_STACK program header: the segment table slot it
// occupies and whether the stack is executable.
type GnuStack struct {
	Index      uint16
	Executable bool
}

// GnuRelroRegion records a PT_GNU_RELRO program header: the slot it
// occupies, the slot of the load segment it protects, and the address range
// made read-only after relocation. The consumer rounds Start down to the
// protected segment's alignment.
type GnuRelroRegion[W Word] struct {
	Index    uint16
	RefIndex uint16
	Start    W
	Size     W
}

// File is the complete in-memory form of one ELF file. The class is not a
// field: it is the type parameter, so a 32-bit value can never leak into a
// 64-bit file. Regions holds the top-level content in file order; the GNU
// program headers are kept out of the tree because they describe existing
// content rather than owning any.
//
// A File is plain data. Parsers and editors mutate it by replacing fields
// and region entries on a value they own; once published, it is safe for
// any number of concurrent readers.
type File[W Word] struct {
	Data       Data
	OSABI      OSABI
	ABIVersion byte
	Type       Type
	Machine    Machine
	Entry      W
	Flags      uint32
	Regions    []Region[W]
	GnuStack   *GnuStack
	GnuRelro   []GnuRelroRegion[W]
}

// New returns an empty file: OSABI defaults to ELFOSABI_NONE (System V)
// with ABI version 0, entry and flags are zero, the region sequence is
// empty and no GNU headers are set.
func New[W Word](data Data, typ Type, machine Machine) *File[W] {
	return &File[W]{
		Data:    data,
		Type:    typ,
		Machine: machine,
	}
}

// Class returns the width tag matching the file's word type.
func (f *File[W]) Class() Class { return ClassOf[W]() }

// Bits returns the word width in bits.
func (f *File[W]) Bits() int { return ClassOf[W]().BitWidth() }

// ByteOrder returns the encoding/binary order of the file's Data tag.
func (f *File[W]) ByteOrder() binary.ByteOrder { return f.Data.ByteOrder() }

// Walk runs WalkRegions over the top-level sequence.
func (f *File[W]) Walk(fn func(Region[W]) bool) bool {
	return WalkRegions(f.Regions, fn)
}

// Find runs FindRegion over the top-level sequence.
func (f *File[W]) Find(pred func(Region[W]) bool) (Region[W], bool) {
	return FindRegion(f.Regions, pred)
}

// Collect runs CollectRegions over the top-level sequence.
func (f *File[W]) Collect() []Region[W] {
	return CollectRegions(f.Regions)
}

// Sections returns every section in the tree, generic form, in walk order.
// GOT regions appear converted; symbol and string tables do not appear.
func (f *File[W]) Sections() []*Section[W] {
	var out []*Section[W]
	f.Walk(func(r Region[W]) bool {
		switch r := r.(type) {
		case *Section[W]:
			out = append(out, r)
		case *GOT[W]:
			out = append(out, r.Section())
		}
		return true
	})
	return out
}

// Segments returns every segment in the tree, outermost first.
func (f *File[W]) Segments() []*Segment[W] {
	var out []*Segment[W]
	f.Walk(func(r Region[W]) bool {
		if seg, ok := r.(*Segment[W]); ok {
			out = append(out, seg)
		}
		return true
	})
	return out
}

// Header is the identifying prefix of a file, as one flat value.
type Header[W Word] struct {
	Data       Data
	Class      Class
	OSABI      OSABI
	ABIVersion byte
	Type       Type
	Machine    Machine
	Entry      W
	Flags      uint32
}

// Header projects the file's identifying fields. The snapshot is computed
// from live state on every call and is never validated or cached.
func (f *File[W]) Header() Header[W] {
	return Header[W]{
		Data:       f.Data,
		Class:      ClassOf[W](),
		OSABI:      f.OSABI,
		ABIVersion: f.ABIVersion,
		Type:       f.Type,
		Machine:    f.Machine,
		Entry:      f.Entry,
		Flags:      f.Flags,
	}
}

// Any is the width-erased view of a file. Parsers return it when the class
// is only known at runtime; consumers type-switch to *File[uint32] or
// *File[uint64] for width-typed work.
type Any interface {
	Class() Class
	Bits() int
	ByteOrder() binary.ByteOrder
	Dump() string
}
