package loader

import (
	"bytes"
	"io"
)

func getMagic(r io.ReaderAt) []byte {
	ret := make([]byte, 4)
	r.ReadAt(ret, 0)
	return ret
}

// dup copies a byte range out of the input image. Nothing the parser
// returns may alias the image: LoadFile unmaps it before returning.
func dup(p []byte) []byte {
	if len(p) == 0 {
		return nil
	}
	return append([]byte(nil), p...)
}

// cstring returns the NUL-terminated string at off, copied. Offsets past
// the table resolve to the empty string, like a truncated read.
func cstring(tab []byte, off uint32) []byte {
	if uint64(off) >= uint64(len(tab)) {
		return nil
	}
	s := tab[off:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return dup(s)
}
