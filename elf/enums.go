package elf

import (
	"fmt"
	"strings"
)

// Machine is the e_machine architecture code.
type Machine uint16

const (
	EM_NONE    Machine = 0
	EM_386     Machine = 3
	EM_68K     Machine = 4
	EM_MIPS    Machine = 8
	EM_PPC     Machine = 20
	EM_PPC64   Machine = 21
	EM_S390    Machine = 22
	EM_ARM     Machine = 40
	EM_SPARCV9 Machine = 43
	EM_X86_64  Machine = 62
	EM_AARCH64 Machine = 183
	EM_RISCV   Machine = 243
)

var machineNames = map[Machine]string{
	EM_NONE:    "EM_NONE",
	EM_386:     "EM_386",
	EM_68K:     "EM_68K",
	EM_MIPS:    "EM_MIPS",
	EM_PPC:     "EM_PPC",
	EM_PPC64:   "EM_PPC64",
	EM_S390:    "EM_S390",
	EM_ARM:     "EM_ARM",
	EM_SPARCV9: "EM_SPARCV9",
	EM_X86_64:  "EM_X86_64",
	EM_AARCH64: "EM_AARCH64",
	EM_RISCV:   "EM_RISCV",
}

func (m Machine) String() string {
	if s, ok := machineNames[m]; ok {
		return s
	}
	return hexN(uint64(m), 16)
}

// OSABI is the EI_OSABI identification byte.
type OSABI byte

const (
	ELFOSABI_NONE       OSABI = 0 // System V
	ELFOSABI_HPUX       OSABI = 1
	ELFOSABI_NETBSD     OSABI = 2
	ELFOSABI_GNU        OSABI = 3
	ELFOSABI_SOLARIS    OSABI = 6
	ELFOSABI_AIX        OSABI = 7
	ELFOSABI_FREEBSD    OSABI = 9
	ELFOSABI_OPENBSD    OSABI = 12
	ELFOSABI_ARM        OSABI = 97
	ELFOSABI_STANDALONE OSABI = 255
)

var osabiNames = map[OSABI]string{
	ELFOSABI_NONE:       "ELFOSABI_NONE",
	ELFOSABI_HPUX:       "ELFOSABI_HPUX",
	ELFOSABI_NETBSD:     "ELFOSABI_NETBSD",
	ELFOSABI_GNU:        "ELFOSABI_GNU",
	ELFOSABI_SOLARIS:    "ELFOSABI_SOLARIS",
	ELFOSABI_AIX:        "ELFOSABI_AIX",
	ELFOSABI_FREEBSD:    "ELFOSABI_FREEBSD",
	ELFOSABI_OPENBSD:    "ELFOSABI_OPENBSD",
	ELFOSABI_ARM:        "ELFOSABI_ARM",
	ELFOSABI_STANDALONE: "ELFOSABI_STANDALONE",
}

func (o OSABI) String() string {
	if s, ok := osabiNames[o]; ok {
		return s
	}
	return hexN(uint64(o), 8)
}

// Type is the e_type object file type.
type Type uint16

const (
	ET_NONE Type = 0
	ET_REL  Type = 1
	ET_EXEC Type = 2
	ET_DYN  Type = 3
	ET_CORE Type = 4

	ET_LOOS   Type = 0xfe00
	ET_HIOS   Type = 0xfeff
	ET_LOPROC Type = 0xff00
	ET_HIPROC Type = 0xffff
)

var typeNames = map[Type]string{
	ET_NONE: "ET_NONE",
	ET_REL:  "ET_REL",
	ET_EXEC: "ET_EXEC",
	ET_DYN:  "ET_DYN",
	ET_CORE: "ET_CORE",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return hexN(uint64(t), 16)
}

// SectionType is the sh_type field.
type SectionType uint32

const (
	SHT_NULL        SectionType = 0
	SHT_PROGBITS    SectionType = 1
	SHT_SYMTAB      SectionType = 2
	SHT_STRTAB      SectionType = 3
	SHT_RELA        SectionType = 4
	SHT_HASH        SectionType = 5
	SHT_DYNAMIC     SectionType = 6
	SHT_NOTE        SectionType = 7
	SHT_NOBITS      SectionType = 8
	SHT_REL         SectionType = 9
	SHT_SHLIB       SectionType = 10
	SHT_DYNSYM      SectionType = 11
	SHT_INIT_ARRAY  SectionType = 14
	SHT_FINI_ARRAY  SectionType = 15
	SHT_GROUP       SectionType = 17
	SHT_GNU_HASH    SectionType = 0x6ffffff6
	SHT_GNU_VERDEF  SectionType = 0x6ffffffd
	SHT_GNU_VERNEED SectionType = 0x6ffffffe
	SHT_GNU_VERSYM  SectionType = 0x6fffffff
)

var sectionTypeNames = map[SectionType]string{
	SHT_NULL:        "SHT_NULL",
	SHT_PROGBITS:    "SHT_PROGBITS",
	SHT_SYMTAB:      "SHT_SYMTAB",
	SHT_STRTAB:      "SHT_STRTAB",
	SHT_RELA:        "SHT_RELA",
	SHT_HASH:        "SHT_HASH",
	SHT_DYNAMIC:     "SHT_DYNAMIC",
	SHT_NOTE:        "SHT_NOTE",
	SHT_NOBITS:      "SHT_NOBITS",
	SHT_REL:         "SHT_REL",
	SHT_SHLIB:       "SHT_SHLIB",
	SHT_DYNSYM:      "SHT_DYNSYM",
	SHT_INIT_ARRAY:  "SHT_INIT_ARRAY",
	SHT_FINI_ARRAY:  "SHT_FINI_ARRAY",
	SHT_GROUP:       "SHT_GROUP",
	SHT_GNU_HASH:    "SHT_GNU_HASH",
	SHT_GNU_VERDEF:  "SHT_GNU_VERDEF",
	SHT_GNU_VERNEED: "SHT_GNU_VERNEED",
	SHT_GNU_VERSYM:  "SHT_GNU_VERSYM",
}

func (t SectionType) String() string {
	if s, ok := sectionTypeNames[t]; ok {
		return s
	}
	return hexN(uint64(t), 32)
}

// Section flag bits (sh_flags). The field is word-sized on disk, so
// sections carry it as a raw word and these stay untyped.
const (
	SHF_WRITE     = 0x1
	SHF_ALLOC     = 0x2
	SHF_EXECINSTR = 0x4
	SHF_MERGE     = 0x10
	SHF_STRINGS   = 0x20
	SHF_INFO_LINK = 0x40
	SHF_GROUP     = 0x200
	SHF_TLS       = 0x400
)

var sectionFlagNames = []flagName{
	{SHF_WRITE, "SHF_WRITE"},
	{SHF_ALLOC, "SHF_ALLOC"},
	{SHF_EXECINSTR, "SHF_EXECINSTR"},
	{SHF_MERGE, "SHF_MERGE"},
	{SHF_STRINGS, "SHF_STRINGS"},
	{SHF_INFO_LINK, "SHF_INFO_LINK"},
	{SHF_GROUP, "SHF_GROUP"},
	{SHF_TLS, "SHF_TLS"},
}

// SectionFlagString renders a section flag word as named bits.
func SectionFlagString[W Word](flags W) string {
	return renderFlags("SHF_NONE", sectionFlagNames, uint64(flags))
}

// SymBind is the binding half of a symbol's st_info byte.
type SymBind byte

const (
	STB_LOCAL  SymBind = 0
	STB_GLOBAL SymBind = 1
	STB_WEAK   SymBind = 2
)

var symBindNames = map[SymBind]string{
	STB_LOCAL:  "STB_LOCAL",
	STB_GLOBAL: "STB_GLOBAL",
	STB_WEAK:   "STB_WEAK",
}

func (b SymBind) String() string {
	if s, ok := symBindNames[b]; ok {
		return s
	}
	return hexN(uint64(b), 8)
}

// SymType is the type half of a symbol's st_info byte.
type SymType byte

const (
	STT_NOTYPE    SymType = 0
	STT_OBJECT    SymType = 1
	STT_FUNC      SymType = 2
	STT_SECTION   SymType = 3
	STT_FILE      SymType = 4
	STT_COMMON    SymType = 5
	STT_TLS       SymType = 6
	STT_GNU_IFUNC SymType = 10
)

var symTypeNames = map[SymType]string{
	STT_NOTYPE:    "STT_NOTYPE",
	STT_OBJECT:    "STT_OBJECT",
	STT_FUNC:      "STT_FUNC",
	STT_SECTION:   "STT_SECTION",
	STT_FILE:      "STT_FILE",
	STT_COMMON:    "STT_COMMON",
	STT_TLS:       "STT_TLS",
	STT_GNU_IFUNC: "STT_GNU_IFUNC",
}

func (t SymType) String() string {
	if s, ok := symTypeNames[t]; ok {
		return s
	}
	return hexN(uint64(t), 8)
}

// SectionIndex is an st_shndx section reference. Values below SHN_LORESERVE
// are plain section table indices.
type SectionIndex uint16

const (
	SHN_UNDEF     SectionIndex = 0
	SHN_LORESERVE SectionIndex = 0xff00
	SHN_ABS       SectionIndex = 0xfff1
	SHN_COMMON    SectionIndex = 0xfff2
	SHN_XINDEX    SectionIndex = 0xffff
)

func (i SectionIndex) String() string {
	switch i {
	case SHN_UNDEF:
		return "SHN_UNDEF"
	case SHN_ABS:
		return "SHN_ABS"
	case SHN_COMMON:
		return "SHN_COMMON"
	case SHN_XINDEX:
		return "SHN_XINDEX"
	}
	if i >= SHN_LORESERVE {
		return hexN(uint64(i), 16)
	}
	return fmt.Sprintf("%d", uint16(i))
}

type flagName struct {
	bit  uint64
	name string
}

// renderFlags joins the named bits present in v, in table order, with "|".
// An empty value renders as base; leftover unnamed bits append as hex.
func renderFlags(base string, names []flagName, v uint64) string {
	if v == 0 {
		return base
	}
	var parts []string
	for _, f := range names {
		if v&f.bit == f.bit {
			parts = append(parts, f.name)
			v &^= f.bit
		}
	}
	if v != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", v))
	}
	return strings.Join(parts, "|")
}
