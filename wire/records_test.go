package wire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lunixbochs/elfedit/elf"
)

func packedLen(t *testing.T, v interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, binary.LittleEndian, v))
	return buf.Len()
}

func TestRecordSizes(t *testing.T) {
	require.Equal(t, IdentSize, packedLen(t, &Ident{Magic: string(Magic)}))
	require.Equal(t, EhdrSize32, packedLen(t, &Ehdr32{Ident: Ident{Magic: string(Magic)}}))
	require.Equal(t, EhdrSize64, packedLen(t, &Ehdr64{Ident: Ident{Magic: string(Magic)}}))
	require.Equal(t, PhdrSize32, packedLen(t, &Phdr32{}))
	require.Equal(t, PhdrSize64, packedLen(t, &Phdr64{}))
	require.Equal(t, ShdrSize32, packedLen(t, &Shdr32{}))
	require.Equal(t, ShdrSize64, packedLen(t, &Shdr64{}))
	require.Equal(t, SymSize32, packedLen(t, &Sym32{}))
	require.Equal(t, SymSize64, packedLen(t, &Sym64{}))
}

func TestSizeByClass(t *testing.T) {
	require.Equal(t, 52, EhdrSize(elf.Class32))
	require.Equal(t, 64, EhdrSize(elf.Class64))
	require.Equal(t, 32, PhdrSize(elf.Class32))
	require.Equal(t, 56, PhdrSize(elf.Class64))
	require.Equal(t, 40, ShdrSize(elf.Class32))
	require.Equal(t, 64, ShdrSize(elf.Class64))
	require.Equal(t, 16, SymSize(elf.Class32))
	require.Equal(t, 24, SymSize(elf.Class64))
}

func TestPhdrFieldOrder(t *testing.T) {
	// flags sit second-to-last in class 32 and second in class 64
	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, binary.LittleEndian, &Phdr32{Type: 1, Flags: 5}))
	b := buf.Bytes()
	require.Equal(t, uint32(5), binary.LittleEndian.Uint32(b[24:]))

	buf.Reset()
	require.NoError(t, Pack(&buf, binary.LittleEndian, &Phdr64{Type: 1, Flags: 5}))
	b = buf.Bytes()
	require.Equal(t, uint32(5), binary.LittleEndian.Uint32(b[4:]))
}

func TestSymFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, binary.BigEndian, &Sym32{Name: 1, Value: 2, Info: 0x12}))
	b := buf.Bytes()
	require.Equal(t, uint32(2), binary.BigEndian.Uint32(b[4:]))
	require.Equal(t, byte(0x12), b[12])

	buf.Reset()
	require.NoError(t, Pack(&buf, binary.BigEndian, &Sym64{Name: 1, Value: 2, Info: 0x12}))
	b = buf.Bytes()
	require.Equal(t, byte(0x12), b[4])
	require.Equal(t, uint64(2), binary.BigEndian.Uint64(b[8:]))
}

func TestIdentRoundTrip(t *testing.T) {
	id := Ident{
		Magic:   string(Magic),
		Class:   elf.Class64.Byte(),
		Data:    elf.Data2LSB.Byte(),
		Version: EV_CURRENT,
		Pad:     string(make([]byte, 7)),
	}
	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, binary.LittleEndian, &id))
	require.Equal(t, []byte{0x7f, 'E', 'L', 'F', 2, 1, 1}, buf.Bytes()[:7])

	var out Ident
	require.NoError(t, Unpack(bytes.NewReader(buf.Bytes()), binary.LittleEndian, &out))
	require.Equal(t, id, out)
}
