package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/lunixbochs/elfedit/cmd"
	"github.com/lunixbochs/elfedit/elf"
	"github.com/lunixbochs/elfedit/loader"
	"github.com/lunixbochs/elfedit/writer"
)

func main() {
	t := cmd.New("elfpatch")
	fs := t.Flags
	out := fs.String("o", "", "output path (required)")
	execStack := fs.String("exec-stack", "", "set (true) or clear (false) stack executability")
	var strip cmd.StrSlice
	fs.Var(&strip, "strip", "remove the named section (repeatable)")
	appendRaw := fs.String("append-raw", "", "append the contents of a file as raw bytes")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] -o <out> <elf>\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := t.Parse(os.Args[1:]); err != nil {
		t.Fatal(err)
	}
	args := fs.Args()
	if len(args) != 1 || *out == "" {
		fs.Usage()
		os.Exit(1)
	}
	f, err := loader.LoadFile(args[0])
	if err != nil {
		t.Fatal(err)
	}
	switch f := f.(type) {
	case *elf.File[uint32]:
		err = patch(t, f, *out, *execStack, strip, *appendRaw)
	case *elf.File[uint64]:
		err = patch(t, f, *out, *execStack, strip, *appendRaw)
	}
	if err != nil {
		t.Fatal(err)
	}
}

func patch[W elf.Word](t *cmd.Tool, f *elf.File[W], out, execStack string, strip []string, appendRaw string) error {
	if execStack != "" {
		on, err := strconv.ParseBool(execStack)
		if err != nil {
			return errors.Wrapf(err, "bad -exec-stack value %q", execStack)
		}
		if f.GnuStack == nil {
			f.GnuStack = &elf.GnuStack{Index: nextSlot(f)}
		}
		f.GnuStack.Executable = on
		level.Info(t.Log).Log("msg", "stack flag", "exec", on)
	}
	for _, name := range strip {
		var found bool
		f.Regions, found = stripSection(f.Regions, name)
		if !found {
			return errors.Errorf("no section named %q", name)
		}
		level.Info(t.Log).Log("msg", "stripped", "section", name)
	}
	if appendRaw != "" {
		data, err := os.ReadFile(appendRaw)
		if err != nil {
			return errors.WithStack(err)
		}
		f.Regions = append(f.Regions, elf.RawRegion[W]{Data: data})
		level.Info(t.Log).Log("msg", "appended", "bytes", len(data))
	}
	return writer.WriteFile(out, f, 0755)
}

// nextSlot returns the first unused segment table index.
func nextSlot[W elf.Word](f *elf.File[W]) uint16 {
	next := uint16(0)
	bump := func(i uint16) {
		if i >= next {
			next = i + 1
		}
	}
	for _, s := range f.Segments() {
		bump(s.Index)
	}
	for _, r := range f.GnuRelro {
		bump(r.Index)
	}
	return next
}

// stripSection removes every section or GOT region with the given name,
// wherever it nests.
func stripSection[W elf.Word](regions []elf.Region[W], name string) ([]elf.Region[W], bool) {
	found := false
	out := make([]elf.Region[W], 0, len(regions))
	for _, r := range regions {
		switch r := r.(type) {
		case *elf.Section[W]:
			if r.Name == name {
				found = true
				continue
			}
		case *elf.GOT[W]:
			if r.Name == name {
				found = true
				continue
			}
		case *elf.Segment[W]:
			var sub bool
			r.Regions, sub = stripSection(r.Regions, name)
			found = found || sub
		}
		out = append(out, r)
	}
	return out, found
}
