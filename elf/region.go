package elf

// Region is one unit of file content, either at the top level of a file or
// inside a segment. The set of implementations is closed; consumers are
// expected to type-switch over all of them. Every node is owned by exactly
// one parent sequence, so the regions of a file form a strict tree.
type Region[W Word] interface {
	isRegion()
}

// HeaderRegion marks where the ELF header lives.
type HeaderRegion[W Word] struct{}

// SegmentTableRegion marks where the program header table lives.
type SegmentTableRegion[W Word] struct{}

// SectionTableRegion marks where the section header table lives.
type SectionTableRegion[W Word] struct{}

// SectionNameTableRegion marks the section name string table (.shstrtab),
// identified by its section table index.
type SectionNameTableRegion[W Word] struct {
	Index uint16
}

// StringTableRegion marks a symbol name string table, identified by its
// section table index. Its content is the names of the symbol table that
// links to it.
type StringTableRegion[W Word] struct {
	Index uint16
}

// RawRegion is a span of uninterpreted bytes.
type RawRegion[W Word] struct {
	Data []byte
}

func (HeaderRegion[W]) isRegion()           {}
func (SegmentTableRegion[W]) isRegion()     {}
func (SectionTableRegion[W]) isRegion()     {}
func (SectionNameTableRegion[W]) isRegion() {}
func (StringTableRegion[W]) isRegion()      {}
func (RawRegion[W]) isRegion()              {}

// WalkRegions visits every region depth-first: a segment is offered to fn
// before its children, siblings in sequence order. fn returning false stops
// the walk; WalkRegions reports whether it ran to completion.
func WalkRegions[W Word](regions []Region[W], fn func(Region[W]) bool) bool {
	for _, r := range regions {
		if !fn(r) {
			return false
		}
		if seg, ok := r.(*Segment[W]); ok {
			if !WalkRegions(seg.Regions, fn) {
				return false
			}
		}
	}
	return true
}

// FindRegion returns the first region, in WalkRegions order, for which pred
// holds.
func FindRegion[W Word](regions []Region[W], pred func(Region[W]) bool) (Region[W], bool) {
	var found Region[W]
	ok := !WalkRegions(regions, func(r Region[W]) bool {
		if pred(r) {
			found = r
			return false
		}
		return true
	})
	return found, ok
}

// CollectRegions flattens the tree into WalkRegions order.
func CollectRegions[W Word](regions []Region[W]) []Region[W] {
	var out []Region[W]
	WalkRegions(regions, func(r Region[W]) bool {
		out = append(out, r)
		return true
	})
	return out
}
