package varint

import "encoding/binary"

const signBit = 1 << 63

// Append appends the encoding of v to dst and returns the extended slice.
func Append(dst []byte, v uint64) []byte {
	if v&signBit != 0 && ^v < 0x100000000 {
		v = ^v
		if v <= 0x3 {
			return append(dst, 0xfc|byte(v))
		}
		dst = append(dst, 0xf8)
	}

	switch {
	case v < 0x80:
		return append(dst, byte(v))
	case v < 0x4000:
		return append(dst, byte(v>>8)|0x80, byte(v))
	case v < 0x200000:
		return append(dst, byte(v>>16)|0xc0, byte(v>>8), byte(v))
	case v < 0x10000000:
		return append(dst, byte(v>>24)|0xe0, byte(v>>16), byte(v>>8), byte(v))
	case v < 0x100000000:
		dst = append(dst, 0xf0)
		return binary.BigEndian.AppendUint32(dst, uint32(v))
	default:
		dst = append(dst, 0xf4)
		return binary.BigEndian.AppendUint64(dst, v)
	}
}

// Encode returns the encoding of v.
func Encode(v uint64) []byte {
	return Append(make([]byte, 0, Size(v)), v)
}

// EncodeInt returns the encoding of a signed value.
func EncodeInt(v int64) []byte {
	return Encode(uint64(v))
}

// Size returns the number of bytes Append writes for v.
func Size(v uint64) int {
	n := 0
	if v&signBit != 0 && ^v < 0x100000000 {
		v = ^v
		if v <= 0x3 {
			return 1
		}
		n = 1
	}
	switch {
	case v < 0x80:
		return n + 1
	case v < 0x4000:
		return n + 2
	case v < 0x200000:
		return n + 3
	case v < 0x10000000:
		return n + 4
	case v < 0x100000000:
		return n + 5
	default:
		return n + 9
	}
}

// Decode decodes one value from the start of b and reports how many bytes it
// consumed.
func Decode(b []byte) (uint64, int, error) {
	r := NewReader(b)
	v, err := r.ReadUint64()
	if err != nil {
		return 0, 0, err
	}
	return v, r.Offset(), nil
}

// DecodeInt is Decode for signed values.
func DecodeInt(b []byte) (int64, int, error) {
	r := NewReader(b)
	v, err := r.ReadInt64()
	if err != nil {
		return 0, 0, err
	}
	return v, r.Offset(), nil
}
