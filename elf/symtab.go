package elf

// SymbolEntry is one record of a symbol table. The name is kept as raw
// bytes: the format does not fix an encoding for symbol names.
type SymbolEntry[W Word] struct {
	Name  []byte
	Bind  SymBind
	Type  SymType
	Other byte
	Shndx SectionIndex
	Value W
	Size  W
}

// SymInfo packs a binding and a type into an st_info byte: binding in the
// high nibble, type in the low. Values wider than four bits truncate; the
// codec never rejects input.
func SymInfo(bind SymBind, typ SymType) byte {
	return byte(bind)<<4 | byte(typ)&0xf
}

// SplitSymInfo splits an st_info byte back into binding and type.
func SplitSymInfo(info byte) (SymBind, SymType) {
	return SymBind(info >> 4), SymType(info & 0xf)
}

// SymbolTable holds the entries of one symtab section. Entries with local
// binding come first and LocalCount says how many there are; the writer
// checks LocalCount <= len(Entries), the model itself does not.
type SymbolTable[W Word] struct {
	Index      uint16
	Entries    []SymbolEntry[W]
	LocalCount uint32
}

func (t *SymbolTable[W]) isRegion() {}
