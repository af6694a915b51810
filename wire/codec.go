package wire

import (
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Pack writes one record to w in the given byte order.
func Pack(w io.Writer, order binary.ByteOrder, v interface{}) error {
	if err := struc.PackWithOrder(w, v, order); err != nil {
		return errors.Wrapf(err, "packing %T", v)
	}
	return nil
}

// Unpack reads one record from r in the given byte order.
func Unpack(r io.Reader, order binary.ByteOrder, v interface{}) error {
	if err := struc.UnpackWithOrder(r, v, order); err != nil {
		return errors.Wrapf(err, "unpacking %T", v)
	}
	return nil
}

// Stream binds a byte order to a stream so record code doesn't thread it
// through every call.
type Stream struct {
	Stream io.ReadWriter
	Order  binary.ByteOrder
}

func (s *Stream) Pack(v interface{}) error {
	return Pack(s.Stream, s.Order, v)
}

func (s *Stream) Unpack(v interface{}) error {
	return Unpack(s.Stream, s.Order, v)
}
