package extract

import (
	"encoding/binary"

	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
)

// Reader is a bounds-checked view over a result buffer. All scalars are
// big-endian. Reader never writes to the buffer.
type Reader struct {
	buf []byte
}

func NewReader(buf []byte) Reader {
	return Reader{buf: buf}
}

func (r Reader) Len() int {
	return len(r.buf)
}

// View returns buf[off:off+n] after validating the range. Callers must not
// modify the returned slice.
func (r Reader) View(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off > len(r.buf) || n > len(r.buf)-off {
		return nil, boundsError{Offset: off, Size: n, Len: len(r.buf)}
	}
	return r.buf[off : off+n : off+n], nil
}

// View64 is View for sizes computed from untrusted 32-bit counts.
func (r Reader) View64(off, n uint64) ([]byte, error) {
	if off > uint64(len(r.buf)) || n > uint64(len(r.buf))-off {
		return nil, boundsError{Offset: clampInt(off), Size: clampInt(n), Len: len(r.buf)}
	}
	return r.View(int(off), int(n))
}

func (r Reader) Uint8(off int) (uint8, error) {
	b, err := r.View(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r Reader) Uint16(off int) (uint16, error) {
	b, err := r.View(off, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r Reader) Uint32(off int) (uint32, error) {
	b, err := r.View(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// String decodes n EBCDIC bytes at off.
func (r Reader) String(off, n int) (string, error) {
	b, err := r.View(off, n)
	if err != nil {
		return "", err
	}
	return ebcdic.Decode(b), nil
}

func clampInt(v uint64) int {
	const maxInt = int(^uint(0) >> 1)
	if v > uint64(maxInt) {
		return maxInt
	}
	return int(v)
}
