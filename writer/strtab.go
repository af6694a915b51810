package writer

// strtab builds an ELF string table: a leading NUL, then deduplicated
// NUL-terminated strings. Adding is idempotent, so the sizing pass and the
// emission pass see identical offsets as long as they add in the same
// order.
type strtab struct {
	buf []byte
	off map[string]uint32
}

func newStrtab() *strtab {
	return &strtab{
		buf: []byte{0},
		off: map[string]uint32{"": 0},
	}
}

func (s *strtab) add(name string) uint32 {
	if off, ok := s.off[name]; ok {
		return off
	}
	off := uint32(len(s.buf))
	s.off[name] = off
	s.buf = append(s.buf, name...)
	s.buf = append(s.buf, 0)
	return off
}

func (s *strtab) bytes() []byte { return s.buf }
