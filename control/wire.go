package control

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// field is one decoded protobuf field. Varint and fixed values land in value,
// length-delimited ones in bytes.
type field struct {
	num   protowire.Number
	typ   protowire.Type
	value uint64
	bytes []byte
}

// walkFields decodes every field in b and hands it to fn. Groups are skipped.
func walkFields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrParse, protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.value, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.value = uint64(v)
		case protowire.Fixed64Type:
			f.value, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrParse, num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (f field) wrongType() error {
	return fmt.Errorf("%w: field %d has unexpected wire type %d", ErrParse, f.num, f.typ)
}

func (f field) asUint64() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, f.wrongType()
	}
	return f.value, nil
}

func (f field) asUint32() (uint32, error) {
	v, err := f.asUint64()
	return uint32(v), err
}

func (f field) asInt32() (int32, error) {
	v, err := f.asUint64()
	return int32(v), err
}

func (f field) asBool() (bool, error) {
	v, err := f.asUint64()
	return protowire.DecodeBool(v), err
}

func (f field) asFloat32() (float32, error) {
	if f.typ != protowire.Fixed32Type {
		return 0, f.wrongType()
	}
	return math.Float32frombits(uint32(f.value)), nil
}

func (f field) asString() (string, error) {
	if f.typ != protowire.BytesType {
		return "", f.wrongType()
	}
	return string(f.bytes), nil
}

func (f field) asBytes() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, f.wrongType()
	}
	return append([]byte(nil), f.bytes...), nil
}

// appendUint32s accepts both packed and unpacked repeated encodings.
func (f field) appendUint32s(dst []uint32) ([]uint32, error) {
	switch f.typ {
	case protowire.VarintType:
		return append(dst, uint32(f.value)), nil
	case protowire.BytesType:
		b := f.bytes
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: packed field %d: %v", ErrParse, f.num, protowire.ParseError(n))
			}
			dst = append(dst, uint32(v))
			b = b[n:]
		}
		return dst, nil
	default:
		return nil, f.wrongType()
	}
}

func (f field) appendInt32s(dst []int32) ([]int32, error) {
	vals, err := f.appendUint32s(nil)
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		dst = append(dst, int32(v))
	}
	return dst, nil
}

// builder appends protobuf fields, skipping zero values the way optional
// proto2 fields that were never set are skipped.
type builder struct {
	b []byte
}

func (w *builder) varint(num protowire.Number, v uint64) {
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, v)
}

func (w *builder) uint(num protowire.Number, v uint64) {
	if v != 0 {
		w.varint(num, v)
	}
}

func (w *builder) int32(num protowire.Number, v int32) {
	if v != 0 {
		w.varint(num, uint64(int64(v)))
	}
}

func (w *builder) boolean(num protowire.Number, v bool) {
	if v {
		w.varint(num, protowire.EncodeBool(v))
	}
}

func (w *builder) float(num protowire.Number, v float32) {
	if v != 0 {
		w.b = protowire.AppendTag(w.b, num, protowire.Fixed32Type)
		w.b = protowire.AppendFixed32(w.b, math.Float32bits(v))
	}
}

func (w *builder) str(num protowire.Number, v string) {
	if v != "" {
		w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
		w.b = protowire.AppendString(w.b, v)
	}
}

func (w *builder) bytes(num protowire.Number, v []byte) {
	if len(v) > 0 {
		w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
		w.b = protowire.AppendBytes(w.b, v)
	}
}

func (w *builder) strs(num protowire.Number, vs []string) {
	for _, v := range vs {
		w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
		w.b = protowire.AppendString(w.b, v)
	}
}

func (w *builder) uint32s(num protowire.Number, vs []uint32) {
	for _, v := range vs {
		w.varint(num, uint64(v))
	}
}

func (w *builder) int32s(num protowire.Number, vs []int32) {
	for _, v := range vs {
		w.varint(num, uint64(int64(v)))
	}
}
