// Package wire holds the on-disk record shapes of the ELF format: the
// ident block and the twin 32/64-bit header, program header, section
// header and symbol records, in exact field order. Records carry no
// behavior; they exist to be packed and unpacked with struc in the byte
// order a file declares.
package wire

import "github.com/lunixbochs/elfedit/elf"

// Magic is the four identification bytes at offset zero.
var Magic = []byte{0x7f, 'E', 'L', 'F'}

// EV_CURRENT is the only defined ELF version.
const EV_CURRENT = 1

// Record sizes by class.
const (
	IdentSize  = 16
	EhdrSize32 = 52
	EhdrSize64 = 64
	PhdrSize32 = 32
	PhdrSize64 = 56
	ShdrSize32 = 40
	ShdrSize64 = 64
	SymSize32  = 16
	SymSize64  = 24
)

// Ident is the class-independent 16-byte identification block.
type Ident struct {
	Magic      string `struc:"[4]byte"`
	Class      byte
	Data       byte
	Version    byte
	OSABI      byte
	ABIVersion byte
	Pad        string `struc:"[7]byte"`
}

type Ehdr32 struct {
	Ident     Ident
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type Ehdr64 struct {
	Ident     Ident
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// Phdr32 keeps flags next to align; Phdr64 moved them up front. The two
// shapes are the reason the program header cannot be one struct.
type Phdr32 struct {
	Type   uint32
	Off    uint32
	Vaddr  uint32
	Paddr  uint32
	Filesz uint32
	Memsz  uint32
	Flags  uint32
	Align  uint32
}

type Phdr64 struct {
	Type   uint32
	Flags  uint32
	Off    uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

type Shdr32 struct {
	Name      uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Off       uint32
	Size      uint32
	Link      uint32
	Info      uint32
	Addralign uint32
	Entsize   uint32
}

type Shdr64 struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Off       uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

// Sym32 packs value before info; Sym64 packs info before value.
type Sym32 struct {
	Name  uint32
	Value uint32
	Size  uint32
	Info  byte
	Other byte
	Shndx uint16
}

type Sym64 struct {
	Name  uint32
	Info  byte
	Other byte
	Shndx uint16
	Value uint64
	Size  uint64
}

// EhdrSize returns the header record size of a class.
func EhdrSize(c elf.Class) int {
	if c == elf.Class32 {
		return EhdrSize32
	}
	return EhdrSize64
}

// PhdrSize returns the program header record size of a class.
func PhdrSize(c elf.Class) int {
	if c == elf.Class32 {
		return PhdrSize32
	}
	return PhdrSize64
}

// ShdrSize returns the section header record size of a class.
func ShdrSize(c elf.Class) int {
	if c == elf.Class32 {
		return ShdrSize32
	}
	return ShdrSize64
}

// SymSize returns the symbol record size of a class.
func SymSize(c elf.Class) int {
	if c == elf.Class32 {
		return SymSize32
	}
	return SymSize64
}
