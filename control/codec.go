package control

import (
	"fmt"

	"github.com/opd-ai/voxlink/voice"
)

// Codec converts between structured messages and frame payloads.
type Codec interface {
	Marshal(m Message) ([]byte, error)
	Unmarshal(t Type, payload []byte) (Message, error)
}

// WireCodec implements Codec on the protobuf wire format.
type WireCodec struct{}

// Marshal implements Codec.
func (WireCodec) Marshal(m Message) ([]byte, error) {
	t := m.Type()
	if t == TypeUDPTunnel {
		return nil, ErrNotMessage
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: cannot marshal %s", ErrParse, t)
	}
	return m.Marshal(), nil
}

// Unmarshal implements Codec.
func (WireCodec) Unmarshal(t Type, payload []byte) (Message, error) {
	m, err := NewMessage(t)
	if err != nil {
		return nil, err
	}
	if err := m.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return m, nil
}

// NewMessage returns an empty message of kind t.
func NewMessage(t Type) (Message, error) {
	switch t {
	case TypeVersion:
		return &Version{}, nil
	case TypeAuthenticate:
		return &Authenticate{}, nil
	case TypePing:
		return &Ping{}, nil
	case TypeReject:
		return &Reject{}, nil
	case TypeServerSync:
		return &ServerSync{}, nil
	case TypeCryptSetup:
		return &CryptSetup{}, nil
	case TypeCodecVersion:
		return &CodecVersion{}, nil
	case TypeTextMessage:
		return &TextMessage{}, nil
	case TypePermissionDenied:
		return &PermissionDenied{}, nil
	case TypeServerConfig:
		return &ServerConfig{}, nil
	case TypeUDPTunnel:
		return nil, ErrNotMessage
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown control packet type %d", ErrParse, uint16(t))
	}
	return &RawMessage{Kind: t}, nil
}

// Resolved is a frame interpreted as either a voice datagram or a message.
type Resolved struct {
	Type    Type
	Message Message
	Voice   *voice.Frame
}

// String describes whichever payload is set.
func (r Resolved) String() string {
	if r.Voice != nil {
		return r.Voice.String()
	}
	if r.Message != nil {
		return r.Message.String()
	}
	return r.Type.String()
}

// Resolve interprets f. An unknown type fails before the payload is looked at.
func Resolve(codec Codec, f Frame) (Resolved, error) {
	t, err := f.Type()
	if err != nil {
		return Resolved{}, err
	}
	if t == TypeUDPTunnel {
		v, err := f.Voice()
		if err != nil {
			return Resolved{Type: t}, err
		}
		return Resolved{Type: t, Voice: v}, nil
	}
	m, err := codec.Unmarshal(t, f.Payload)
	if err != nil {
		return Resolved{Type: t}, err
	}
	return Resolved{Type: t, Message: m}, nil
}

// Describe returns a human-readable description of f, or of why it could not
// be interpreted.
func Describe(codec Codec, f Frame) string {
	r, err := Resolve(codec, f)
	if err != nil {
		return fmt.Sprintf("unparseable control packet (type %d, %d bytes): %v", f.TypeNumber, len(f.Payload), err)
	}
	return r.String()
}
