package elf

import "encoding/binary"

// Class is the address width of a file, following the EI_CLASS byte codes.
// The class of a File is fixed by its word type parameter, so width mistakes
// are compile errors rather than runtime checks; Class values only appear at
// the parsing boundary where a raw byte picks the instantiation.
type Class byte

const (
	Class32 Class = 1
	Class64 Class = 2
)

// ClassFromByte decodes an EI_CLASS byte. Any code outside {1, 2} is
// rejected.
func ClassFromByte(b byte) (Class, bool) {
	switch Class(b) {
	case Class32, Class64:
		return Class(b), true
	}
	return 0, false
}

// Byte returns the EI_CLASS code.
func (c Class) Byte() byte { return byte(c) }

// ByteWidth returns the size in bytes of the class word type.
func (c Class) ByteWidth() int {
	if c == Class32 {
		return 4
	}
	return 8
}

// BitWidth returns the size in bits of the class word type.
func (c Class) BitWidth() int { return c.ByteWidth() * 8 }

func (c Class) String() string {
	switch c {
	case Class32:
		return "ELFCLASS32"
	case Class64:
		return "ELFCLASS64"
	}
	return hexN(uint64(c), 8)
}

// Word is the set of word types a file can be addressed with. The constraint
// is exact, not underlying-type based, so ClassOf can recover the class from
// a type parameter with a plain type switch.
type Word interface {
	uint32 | uint64
}

// ClassOf maps a word type to its class.
func ClassOf[W Word]() Class {
	switch any(W(0)).(type) {
	case uint32:
		return Class32
	default:
		return Class64
	}
}

// Data is the byte order of every multi-byte field in a file, following the
// EI_DATA byte codes.
type Data byte

const (
	Data2LSB Data = 1
	Data2MSB Data = 2
)

// DataFromByte decodes an EI_DATA byte. Any code outside {1, 2} is rejected.
func DataFromByte(b byte) (Data, bool) {
	switch Data(b) {
	case Data2LSB, Data2MSB:
		return Data(b), true
	}
	return 0, false
}

// Byte returns the EI_DATA code.
func (d Data) Byte() byte { return byte(d) }

// ByteOrder returns the encoding/binary order matching the tag.
func (d Data) ByteOrder() binary.ByteOrder {
	if d == Data2MSB {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (d Data) String() string {
	switch d {
	case Data2LSB:
		return "ELFDATA2LSB"
	case Data2MSB:
		return "ELFDATA2MSB"
	}
	return hexN(uint64(d), 8)
}
