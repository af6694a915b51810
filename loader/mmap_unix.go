//go:build linux || darwin

package loader

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mapFile maps path read-only. The caller must be done with the bytes
// before calling the cleanup func. Empty files skip the map: mmap of
// length 0 is an error on linux.
func mapFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	if st.Size() == 0 {
		return nil, func() {}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		// fall back to a plain read, some filesystems can't map
		p, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, nil, errors.Wrapf(err, "mmap %s", path)
		}
		return p, func() {}, nil
	}
	return data, func() { unix.Munmap(data) }, nil
}
