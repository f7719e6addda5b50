package control

import (
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// RawField is one field of a message kind the client does not model.
type RawField struct {
	Number   int32
	WireType int8
	Value    uint64
	Bytes    []byte
}

// RawMessage holds any structured control message as a list of fields. It is
// used for channel, user and ACL traffic, which the client logs but does not
// interpret.
type RawMessage struct {
	Kind   Type
	Fields []RawField
}

func (m *RawMessage) Type() Type { return m.Kind }

func (m *RawMessage) Marshal() []byte {
	var b []byte
	for _, f := range m.Fields {
		num, typ := protowire.Number(f.Number), protowire.Type(f.WireType)
		b = protowire.AppendTag(b, num, typ)
		switch typ {
		case protowire.VarintType:
			b = protowire.AppendVarint(b, f.Value)
		case protowire.Fixed32Type:
			b = protowire.AppendFixed32(b, uint32(f.Value))
		case protowire.Fixed64Type:
			b = protowire.AppendFixed64(b, f.Value)
		case protowire.BytesType:
			b = protowire.AppendBytes(b, f.Bytes)
		}
	}
	return b
}

// Unmarshal validates payload and records its fields. Groups are dropped.
func (m *RawMessage) Unmarshal(b []byte) error {
	m.Fields = nil
	return walkFields(b, func(f field) error {
		switch f.typ {
		case protowire.StartGroupType, protowire.EndGroupType:
			return nil
		}
		m.Fields = append(m.Fields, RawField{
			Number:   int32(f.num),
			WireType: int8(f.typ),
			Value:    f.value,
			Bytes:    append([]byte(nil), f.bytes...),
		})
		return nil
	})
}

func (m *RawMessage) String() string {
	parts := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		var v string
		switch {
		case protowire.Type(f.WireType) != protowire.BytesType:
			v = fmt.Sprint(f.Value)
		case utf8.Valid(f.Bytes):
			v = fmt.Sprintf("%q", f.Bytes)
		default:
			v = fmt.Sprintf("bytes[%d]", len(f.Bytes))
		}
		parts = append(parts, fmt.Sprintf("%d=%s", f.Number, v))
	}
	return fmt.Sprintf("%s{%s}", m.Kind, joinFields(parts))
}
