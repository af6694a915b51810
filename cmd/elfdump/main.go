package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/lunixbochs/fvbommel-util/sortorder"

	"github.com/lunixbochs/elfedit/cmd"
	"github.com/lunixbochs/elfedit/elf"
	"github.com/lunixbochs/elfedit/loader"
)

const (
	nameColor = "default+b:default"
	addrColor = "blue:default"
)

func main() {
	t := cmd.New("elfdump")
	fs := t.Flags
	sections := fs.Bool("sections", false, "list sections sorted by name")
	symbols := fs.Bool("symbols", false, "list symbol tables")
	summary := fs.Bool("summary", false, "print content totals")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <elf>\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := t.Parse(os.Args[1:]); err != nil {
		t.Fatal(err)
	}
	args := fs.Args()
	if len(args) != 1 {
		fs.Usage()
		os.Exit(1)
	}
	f, err := loader.LoadFile(args[0])
	if err != nil {
		t.Fatal(err)
	}
	level.Debug(t.Log).Log("msg", "loaded", "path", args[0], "class", f.Class())
	switch f := f.(type) {
	case *elf.File[uint32]:
		dump(t, f, *sections, *symbols, *summary)
	case *elf.File[uint64]:
		dump(t, f, *sections, *symbols, *summary)
	}
}

func dump[W elf.Word](t *cmd.Tool, f *elf.File[W], sections, symbols, summary bool) {
	if !sections && !symbols && !summary {
		fmt.Fprint(t.Out, f.Dump())
		return
	}
	if sections {
		secs := f.Sections()
		sort.SliceStable(secs, func(i, j int) bool {
			return sortorder.NaturalLess(secs[i].Name, secs[j].Name)
		})
		for _, s := range secs {
			size := uint64(len(s.Data))
			if s.Type == elf.SHT_NOBITS {
				size = uint64(s.Size)
			}
			fmt.Fprintf(t.Out, "%3d %-20s %-14s %s %s\n",
				s.Index, t.Color(s.Name, nameColor), s.Type,
				t.Color(elf.Hex(s.Addr), addrColor), humanize.IBytes(size))
		}
	}
	if symbols {
		f.Walk(func(r elf.Region[W]) bool {
			st, ok := r.(*elf.SymbolTable[W])
			if !ok {
				return true
			}
			fmt.Fprintf(t.Out, "symtab #%d: %d symbols, %d local\n",
				st.Index, len(st.Entries), st.LocalCount)
			for _, e := range st.Entries {
				fmt.Fprintf(t.Out, "  %s %5d %-10s %-10s %s\n",
					t.Color(elf.Hex(e.Value), addrColor), uint64(e.Size),
					e.Bind, e.Type, t.Color(string(e.Name), nameColor))
			}
			return true
		})
	}
	if summary {
		var bytes uint64
		var syms int
		for _, s := range f.Sections() {
			bytes += uint64(len(s.Data))
		}
		f.Walk(func(r elf.Region[W]) bool {
			if st, ok := r.(*elf.SymbolTable[W]); ok {
				syms += len(st.Entries)
			}
			return true
		})
		fmt.Fprintf(t.Out, "class:    %s\n", f.Class())
		fmt.Fprintf(t.Out, "segments: %d\n", len(f.Segments()))
		fmt.Fprintf(t.Out, "sections: %d (%s)\n", len(f.Sections()), humanize.Bytes(bytes))
		fmt.Fprintf(t.Out, "symbols:  %d\n", syms)
	}
}
