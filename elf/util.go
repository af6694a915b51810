package elf

import "fmt"

// Range is a half-open [Start, Start+Count) span of bytes or words.
type Range[W Word] struct {
	Start, Count W
}

// Contains reports whether x falls inside the span. The low-bound check runs
// first so the unsigned subtraction cannot wrap.
func (r Range[W]) Contains(x W) bool {
	return r.Start <= x && x-r.Start < r.Count
}

// Slice returns the bytes of b the span covers, clamped to the buffer.
// Out-of-bounds spans shrink silently; there is no error path.
func (r Range[W]) Slice(b []byte) []byte {
	start := uint64(r.Start)
	if start >= uint64(len(b)) {
		return nil
	}
	n := uint64(r.Count)
	if rest := uint64(len(b)) - start; n > rest {
		n = rest
	}
	return b[start : start+n]
}

// Hex renders w as 0x-prefixed lowercase hex, zero-padded to the full width
// of the word type: 8 digits for uint32, 16 for uint64.
func Hex[W Word](w W) string {
	return hexN(uint64(w), ClassOf[W]().BitWidth())
}

// hexN pads v to bits/4 digits. bits must be a positive multiple of 4.
func hexN(v uint64, bits int) string {
	return fmt.Sprintf("0x%0*x", bits/4, v)
}
