package elf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func nestedFixture() *File[uint64] {
	inner := &Segment[uint64]{
		Type:  PT_LOAD,
		Index: 1,
		Regions: []Region[uint64]{
			&Section[uint64]{Index: 2, Name: ".data"},
		},
	}
	outer := &Segment[uint64]{
		Type:  PT_LOAD,
		Index: 0,
		Regions: []Region[uint64]{
			HeaderRegion[uint64]{},
			&Section[uint64]{Index: 1, Name: ".text"},
			inner,
		},
	}
	f := New[uint64](Data2LSB, ET_EXEC, EM_X86_64)
	f.Regions = []Region[uint64]{
		outer,
		RawRegion[uint64]{Data: []byte{0xff}},
	}
	return f
}

func TestWalkOrder(t *testing.T) {
	f := nestedFixture()
	var got []string
	f.Walk(func(r Region[uint64]) bool {
		switch r := r.(type) {
		case *Segment[uint64]:
			got = append(got, "seg")
		case *Section[uint64]:
			got = append(got, r.Name)
		case HeaderRegion[uint64]:
			got = append(got, "ehdr")
		case RawRegion[uint64]:
			got = append(got, "raw")
		}
		return true
	})
	// outer segment before its children, inner segment before its child,
	// top-level sibling last
	require.Equal(t, []string{"seg", "ehdr", ".text", "seg", ".data", "raw"}, got)
}

func TestWalkShortCircuit(t *testing.T) {
	f := nestedFixture()
	visits := 0
	done := f.Walk(func(r Region[uint64]) bool {
		visits++
		_, isSection := r.(*Section[uint64])
		return !isSection
	})
	require.False(t, done)
	require.Equal(t, 3, visits) // outer, ehdr, .text
}

func TestFindRegion(t *testing.T) {
	f := nestedFixture()
	r, ok := f.Find(func(r Region[uint64]) bool {
		sec, ok := r.(*Section[uint64])
		return ok && sec.Name == ".data"
	})
	require.True(t, ok)
	require.Equal(t, ".data", r.(*Section[uint64]).Name)

	_, ok = f.Find(func(r Region[uint64]) bool { return false })
	require.False(t, ok)
}

func TestCollectRegions(t *testing.T) {
	f := nestedFixture()
	require.Len(t, f.Collect(), 6)
	require.Len(t, f.Sections(), 2)
	require.Len(t, f.Segments(), 2)
}
