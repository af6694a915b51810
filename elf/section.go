package elf

// Section is the generic unit of link-time content. For SHT_NOBITS the Size
// field is authoritative and Data stays empty; for every other type the
// file size is the length of Data.
type Section[W Word] struct {
	Index     uint16
	Name      string
	Type      SectionType
	Flags     W
	Addr      W
	Size      W
	Link      uint32
	Info      uint32
	AddrAlign W
	EntSize   W
	Data      []byte
}

func (s *Section[W]) isRegion() {}

// FileSize returns the bytes the section occupies in the file image.
func (s *Section[W]) FileSize() W {
	if s.Type == SHT_NOBITS {
		return 0
	}
	return W(len(s.Data))
}

// GOT is a global offset table section. Its size is always the content
// length.
type GOT[W Word] struct {
	Index     uint16
	Name      string
	Addr      W
	AddrAlign W
	EntSize   W
	Data      []byte
}

func (g *GOT[W]) isRegion() {}

func (g *GOT[W]) Size() W { return W(len(g.Data)) }

// Section returns the generic form of the table: a writable, allocated
// PROGBITS section with the same index, name, address, alignment, entry
// size and content.
func (g *GOT[W]) Section() *Section[W] {
	return &Section[W]{
		Index:     g.Index,
		Name:      g.Name,
		Type:      SHT_PROGBITS,
		Flags:     SHF_WRITE | SHF_ALLOC,
		Addr:      g.Addr,
		Size:      g.Size(),
		AddrAlign: g.AddrAlign,
		EntSize:   g.EntSize,
		Data:      g.Data,
	}
}
