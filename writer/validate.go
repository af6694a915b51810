package writer

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/lunixbochs/elfedit/elf"
)

// Validate checks the structural obligations the model leaves to the
// writer. Problems accumulate so a caller sees all of them at once.
func Validate[W elf.Word](f *elf.File[W]) error {
	var result *multierror.Error

	// the first leaf in file order is the ELF header
	var firstLeaf elf.Region[W]
	f.Walk(func(r elf.Region[W]) bool {
		if _, ok := r.(*elf.Segment[W]); ok {
			return true
		}
		firstLeaf = r
		return false
	})
	if firstLeaf == nil {
		result = multierror.Append(result, errors.New("region tree has no content"))
	} else if _, ok := firstLeaf.(elf.HeaderRegion[W]); !ok {
		result = multierror.Append(result, errors.New("the ELF header must be the first region in file order"))
	}

	// segment table slots: unique and dense across tree segments and the
	// GNU program headers
	segs := f.Segments()
	slots := make(map[uint16]int)
	for _, s := range segs {
		slots[s.Index]++
		if s.Align > 1 && s.Align&(s.Align-1) != 0 {
			result = multierror.Append(result,
				errors.Errorf("segment %d alignment %#x is not a power of two", s.Index, uint64(s.Align)))
		}
	}
	if f.GnuStack != nil {
		slots[f.GnuStack.Index]++
	}
	treeSlot := make(map[uint16]bool)
	for _, s := range segs {
		treeSlot[s.Index] = true
	}
	for _, r := range f.GnuRelro {
		slots[r.Index]++
		if !treeSlot[r.RefIndex] {
			result = multierror.Append(result,
				errors.Errorf("relro region %d protects unknown segment %d", r.Index, r.RefIndex))
		}
	}
	for slot, n := range slots {
		if n > 1 {
			result = multierror.Append(result, errors.Errorf("segment index %d used %d times", slot, n))
		}
	}
	for slot := 0; slot < len(slots); slot++ {
		if slots[uint16(slot)] == 0 {
			result = multierror.Append(result, errors.Errorf("segment indices are not dense: %d is unused", slot))
		}
	}
	if len(slots) > 0 {
		if _, ok := f.Find(isSegmentTable[W]); !ok {
			result = multierror.Append(result, errors.New("file has program headers but no segment table region"))
		}
	}

	// section slots: unique, never 0 (the null entry is implicit)
	secSlots := make(map[uint16]int)
	named := false
	symtabs := 0
	strtabs := 0
	f.Walk(func(r elf.Region[W]) bool {
		switch r := r.(type) {
		case *elf.Section[W]:
			secSlots[r.Index]++
			named = named || r.Name != ""
		case *elf.GOT[W]:
			secSlots[r.Index]++
			named = named || r.Name != ""
		case *elf.SymbolTable[W]:
			secSlots[r.Index]++
			symtabs++
			if int(r.LocalCount) > len(r.Entries) {
				result = multierror.Append(result,
					errors.Errorf("symbol table %d: local count %d exceeds %d entries",
						r.Index, r.LocalCount, len(r.Entries)))
			}
		case elf.StringTableRegion[W]:
			secSlots[r.Index]++
			strtabs++
		case elf.SectionNameTableRegion[W]:
			secSlots[r.Index]++
		}
		return true
	})
	for slot, n := range secSlots {
		if slot == 0 {
			result = multierror.Append(result, errors.New("section index 0 is reserved for the null section"))
		}
		if n > 1 {
			result = multierror.Append(result, errors.Errorf("section index %d used %d times", slot, n))
		}
	}
	if len(secSlots) > 0 {
		if _, ok := f.Find(isSectionTable[W]); !ok {
			result = multierror.Append(result, errors.New("file has sections but no section table region"))
		}
	}
	if named {
		if _, ok := f.Find(isSectionNameTable[W]); !ok {
			result = multierror.Append(result, errors.New("file has named sections but no section name table region"))
		}
	}
	if symtabs > 0 && strtabs == 0 {
		result = multierror.Append(result, errors.New("symbol table present without a string table region"))
	}
	if symtabs > 1 || strtabs > 1 {
		result = multierror.Append(result, errors.New("at most one symbol table and one string table are supported"))
	}

	return result.ErrorOrNil()
}

func isSegmentTable[W elf.Word](r elf.Region[W]) bool {
	_, ok := r.(elf.SegmentTableRegion[W])
	return ok
}

func isSectionTable[W elf.Word](r elf.Region[W]) bool {
	_, ok := r.(elf.SectionTableRegion[W])
	return ok
}

func isSectionNameTable[W elf.Word](r elf.Region[W]) bool {
	_, ok := r.(elf.SectionNameTableRegion[W])
	return ok
}
