// Package loader reads ELF images into the elf data model. It decodes the
// headers, classifies sections, and rebuilds the region tree from the file
// intervals each piece occupies, so that a writer walking the tree can
// reproduce the same layout.
package loader

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfedit/elf"
	"github.com/lunixbochs/elfedit/wire"
)

var UnknownMagic = errors.New("could not identify file magic")

// Match reports whether r starts with the ELF magic.
func Match(r io.ReaderAt) bool {
	return bytes.Equal(getMagic(r), wire.Magic)
}

// Load reads a whole image from r and parses it.
func Load(r io.ReaderAt) (elf.Any, error) {
	if !Match(r) {
		return nil, errors.WithStack(UnknownMagic)
	}
	data, err := io.ReadAll(io.NewSectionReader(r, 0, 1<<62))
	if err != nil {
		return nil, errors.Wrap(err, "reading image")
	}
	return LoadBytes(data)
}

// LoadFile parses the file at path. On unix the file is memory-mapped;
// the model copies every byte range it keeps, so the mapping is released
// before returning.
func LoadFile(path string) (elf.Any, error) {
	data, done, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	defer done()
	return LoadBytes(data)
}

// LoadBytes parses an in-memory image. The returned file shares no memory
// with data.
func LoadBytes(data []byte) (elf.Any, error) {
	if len(data) < wire.IdentSize {
		return nil, errors.WithStack(UnknownMagic)
	}
	var ident wire.Ident
	// ident is single bytes only, the order is arbitrary
	if err := wire.Unpack(bytes.NewReader(data), elf.Data2LSB.ByteOrder(), &ident); err != nil {
		return nil, err
	}
	if ident.Magic != string(wire.Magic) {
		return nil, errors.WithStack(UnknownMagic)
	}
	class, ok := elf.ClassFromByte(ident.Class)
	if !ok {
		return nil, errors.Errorf("unknown ELF class %#x", ident.Class)
	}
	order, ok := elf.DataFromByte(ident.Data)
	if !ok {
		return nil, errors.Errorf("unknown ELF data encoding %#x", ident.Data)
	}
	if ident.Version != wire.EV_CURRENT {
		return nil, errors.Errorf("unknown ELF version %d", ident.Version)
	}
	// the only point where the width is picked at runtime
	if class == elf.Class32 {
		return parseFile[uint32](data, &ident, order)
	}
	return parseFile[uint64](data, &ident, order)
}
