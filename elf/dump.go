package elf

import (
	"fmt"
	"strings"
)

// Dump renders the file as an indented text tree: header fields first, then
// the region sequence. It is pure and total; malformed trees still render.
func (f *File[W]) Dump() string {
	var b strings.Builder
	h := f.Header()
	fmt.Fprintf(&b, "class:   %s\n", h.Class)
	fmt.Fprintf(&b, "data:    %s\n", h.Data)
	fmt.Fprintf(&b, "osabi:   %s abi %d\n", h.OSABI, h.ABIVersion)
	fmt.Fprintf(&b, "type:    %s\n", h.Type)
	fmt.Fprintf(&b, "machine: %s\n", h.Machine)
	fmt.Fprintf(&b, "entry:   %s\n", Hex(h.Entry))
	fmt.Fprintf(&b, "flags:   0x%x\n", h.Flags)
	if f.GnuStack != nil {
		fmt.Fprintf(&b, "gnu stack: #%d exec=%v\n", f.GnuStack.Index, f.GnuStack.Executable)
	}
	for _, r := range f.GnuRelro {
		fmt.Fprintf(&b, "gnu relro: #%d ref=#%d %s +%s\n", r.Index, r.RefIndex, Hex(r.Start), Hex(r.Size))
	}
	b.WriteString("regions:\n")
	for _, r := range f.Regions {
		writeRegion[W](&b, r, 1)
	}
	return b.String()
}

// RenderRegion renders a single region node and, for segments, everything
// under it.
func RenderRegion[W Word](r Region[W]) string {
	var b strings.Builder
	writeRegion[W](&b, r, 0)
	return b.String()
}

// RenderSegment renders one segment subtree.
func RenderSegment[W Word](s *Segment[W]) string {
	var b strings.Builder
	writeSegment(&b, s, 0)
	return b.String()
}

func writeRegion[W Word](b *strings.Builder, r Region[W], depth int) {
	pad := strings.Repeat("  ", depth)
	switch r := r.(type) {
	case HeaderRegion[W]:
		fmt.Fprintf(b, "%self header\n", pad)
	case SegmentTableRegion[W]:
		fmt.Fprintf(b, "%ssegment table\n", pad)
	case SectionTableRegion[W]:
		fmt.Fprintf(b, "%ssection table\n", pad)
	case SectionNameTableRegion[W]:
		fmt.Fprintf(b, "%ssection names #%d\n", pad, r.Index)
	case StringTableRegion[W]:
		fmt.Fprintf(b, "%sstrtab #%d\n", pad, r.Index)
	case *SymbolTable[W]:
		fmt.Fprintf(b, "%ssymtab #%d (%d symbols, %d local)\n", pad, r.Index, len(r.Entries), r.LocalCount)
	case *GOT[W]:
		fmt.Fprintf(b, "%sgot #%d %q addr=%s (%d bytes)\n", pad, r.Index, r.Name, Hex(r.Addr), len(r.Data))
	case *Section[W]:
		fmt.Fprintf(b, "%ssection #%d %q %s %s addr=%s size=%s\n", pad, r.Index, r.Name,
			r.Type, SectionFlagString(r.Flags), Hex(r.Addr), Hex(r.Size))
	case *Segment[W]:
		writeSegment(b, r, depth)
	case RawRegion[W]:
		fmt.Fprintf(b, "%sraw %d bytes: %s\n", pad, len(r.Data), hexPreview(r.Data))
	}
}

func writeSegment[W Word](b *strings.Builder, s *Segment[W], depth int) {
	pad := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%ssegment #%d %s %s\n", pad, s.Index, s.Type, s.Flags)
	fmt.Fprintf(b, "%s  vaddr: %s\n", pad, Hex(s.VirtAddr))
	fmt.Fprintf(b, "%s  paddr: %s\n", pad, Hex(s.PhysAddr))
	fmt.Fprintf(b, "%s  align: %s\n", pad, Hex(s.Align))
	fmt.Fprintf(b, "%s  memsz: %s\n", pad, s.MemSize)
	fmt.Fprintf(b, "%s  regions:\n", pad)
	for _, r := range s.Regions {
		writeRegion[W](b, r, depth+2)
	}
}

func hexPreview(p []byte) string {
	if len(p) > 16 {
		return fmt.Sprintf("%x..", p[:16])
	}
	return fmt.Sprintf("%x", p)
}
