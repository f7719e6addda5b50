package varint

import (
	"encoding/binary"
	"fmt"
)

// Reader is a forward-only cursor over a byte slice. Slices it hands out alias
// the underlying buffer.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// Rest returns the unread bytes without consuming them.
func (r *Reader) Rest() []byte { return r.buf[r.off:] }

// ReadByte consumes a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, ErrTruncated
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

// Next consumes n bytes and returns them as a sub-slice.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadUint64 consumes one varint.
func (r *Reader) ReadUint64() (uint64, error) {
	negate := false
	for {
		v, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		var (
			value uint64
			extra int
		)
		switch {
		case v&0x80 == 0:
			value = uint64(v)
		case v&0xc0 == 0x80:
			value, extra = uint64(v&0x3f), 1
		case v&0xe0 == 0xc0:
			value, extra = uint64(v&0x1f), 2
		case v&0xf0 == 0xe0:
			value, extra = uint64(v&0x0f), 3
		default:
			switch v & 0xfc {
			case 0xf0:
				tail, err := r.Next(4)
				if err != nil {
					return 0, err
				}
				value = uint64(binary.BigEndian.Uint32(tail))
			case 0xf4:
				tail, err := r.Next(8)
				if err != nil {
					return 0, err
				}
				value = binary.BigEndian.Uint64(tail)
			case 0xf8:
				// Complement of the varint that follows.
				negate = !negate
				continue
			case 0xfc:
				value = uint64(v & 0x03)
				if negate {
					return value, nil
				}
				return ^value, nil
			default:
				return 0, fmt.Errorf("%w: 0x%02x", ErrMalformed, v)
			}
		}

		if extra > 0 {
			tail, err := r.Next(extra)
			if err != nil {
				return 0, err
			}
			for _, b := range tail {
				value = value<<8 | uint64(b)
			}
		}
		if negate {
			return ^value, nil
		}
		return value, nil
	}
}

// ReadInt64 consumes one varint as a signed value.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// Unsigned is the set of integer types a varint can be narrowed into.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// ReadNarrow consumes one varint and converts it to T, failing with ErrTooWide
// when the value exceeds T's maximum.
func ReadNarrow[T Unsigned](r *Reader) (T, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	limit := uint64(^T(0))
	if v > limit {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrTooWide, v, limit)
	}
	return T(v), nil
}
