package elf

// SegmentType is the p_type field: an open 32-bit code space with a small
// set of well-known values.
type SegmentType uint32

const (
	PT_NULL    SegmentType = 0
	PT_LOAD    SegmentType = 1
	PT_DYNAMIC SegmentType = 2
	PT_INTERP  SegmentType = 3
	PT_NOTE    SegmentType = 4
	PT_SHLIB   SegmentType = 5
	PT_PHDR    SegmentType = 6
	PT_TLS     SegmentType = 7
	PT_NUM     SegmentType = 8

	PT_LOOS         SegmentType = 0x60000000
	PT_GNU_EH_FRAME SegmentType = 0x6474e550
	PT_GNU_STACK    SegmentType = 0x6474e551
	PT_GNU_RELRO    SegmentType = 0x6474e552
	PT_PAX_FLAGS    SegmentType = 0x65041580
	PT_HIOS         SegmentType = 0x6fffffff
	PT_LOPROC       SegmentType = 0x70000000
	PT_HIPROC       SegmentType = 0x7fffffff
)

var segmentTypeNames = map[SegmentType]string{
	PT_NULL:         "PT_NULL",
	PT_LOAD:         "PT_LOAD",
	PT_DYNAMIC:      "PT_DYNAMIC",
	PT_INTERP:       "PT_INTERP",
	PT_NOTE:         "PT_NOTE",
	PT_SHLIB:        "PT_SHLIB",
	PT_PHDR:         "PT_PHDR",
	PT_TLS:          "PT_TLS",
	PT_NUM:          "PT_NUM",
	PT_LOOS:         "PT_LOOS",
	PT_GNU_EH_FRAME: "PT_GNU_EH_FRAME",
	PT_GNU_STACK:    "PT_GNU_STACK",
	PT_GNU_RELRO:    "PT_GNU_RELRO",
	PT_PAX_FLAGS:    "PT_PAX_FLAGS",
	PT_HIOS:         "PT_HIOS",
	PT_LOPROC:       "PT_LOPROC",
	PT_HIPROC:       "PT_HIPROC",
}

// String returns the PT_ name of well-known types and the hex code for
// everything else.
func (t SegmentType) String() string {
	if s, ok := segmentTypeNames[t]; ok {
		return s
	}
	return hexN(uint64(t), 32)
}

// SegmentFlags is the p_flags permission bitmask. It is 32-bit in both
// classes.
type SegmentFlags uint32

const (
	PF_X SegmentFlags = 1 << iota
	PF_W
	PF_R
)

// Has reports whether every bit of req is set in f.
func (f SegmentFlags) Has(req SegmentFlags) bool { return f&req == req }

var segmentFlagNames = []flagName{
	{uint64(PF_R), "PF_R"},
	{uint64(PF_W), "PF_W"},
	{uint64(PF_X), "PF_X"},
}

func (f SegmentFlags) String() string {
	return renderFlags("PF_NONE", segmentFlagNames, uint64(f))
}

// MemSizeKind says how a segment's memory footprint relates to the size
// computed from its laid-out content.
type MemSizeKind int

const (
	// MemRelative adds Value to the computed content size. The zero value
	// of MemSize therefore means "exactly as large as the content".
	MemRelative MemSizeKind = iota
	// MemAbsolute uses Value only when it exceeds the computed content
	// size.
	MemAbsolute
)

// MemSize is the memory-size policy of a segment. Resolution against the
// real content size happens in the writer, not here.
type MemSize[W Word] struct {
	Kind  MemSizeKind
	Value W
}

func RelativeSize[W Word](v W) MemSize[W] { return MemSize[W]{MemRelative, v} }
func AbsoluteSize[W Word](v W) MemSize[W] { return MemSize[W]{MemAbsolute, v} }

// Resolve turns the policy into a concrete p_memsz given the size computed
// from content.
func (m MemSize[W]) Resolve(computed W) W {
	if m.Kind == MemAbsolute {
		if m.Value > computed {
			return m.Value
		}
		return computed
	}
	return computed + m.Value
}

func (m MemSize[W]) String() string {
	if m.Kind == MemAbsolute {
		return "abs " + Hex(m.Value)
	}
	return "content+" + Hex(m.Value)
}

// Segment is one program header entry together with the regions its file
// range covers. Index is the zero-based slot of the entry in the segment
// table; no two segments of one file share a slot.
type Segment[W Word] struct {
	Type     SegmentType
	Flags    SegmentFlags
	Index    uint16
	VirtAddr W
	PhysAddr W
	// Align of 0 or 1 means unconstrained. Otherwise it must be a power of
	// two, and the writer keeps VirtAddr and the file offset congruent
	// modulo Align.
	Align   W
	MemSize MemSize[W]
	Regions []Region[W]
}

func (s *Segment[W]) isRegion() {}

// NoBitsSize totals the sizes of SHT_NOBITS sections anywhere under the
// segment: memory the segment occupies beyond its file image. The writer
// and the parser use the same total, so relative memory sizes survive a
// round trip.
func (s *Segment[W]) NoBitsSize() W {
	var total W
	WalkRegions(s.Regions, func(r Region[W]) bool {
		if sec, ok := r.(*Section[W]); ok && sec.Type == SHT_NOBITS {
			total += sec.Size
		}
		return true
	})
	return total
}
