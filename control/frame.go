// Package control implements the Mumble control channel: a stream of frames,
// each a 6-byte header (big-endian uint16 type, big-endian uint32 length)
// followed by the payload.
//
// Frames are read and written without looking at the payload. Resolve turns a
// frame into either a structured Message or, for UDPTunnel frames, a voice
// datagram. A frame with an unknown type number is readable; it only fails
// when resolved.
package control

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/opd-ai/voxlink/limits"
	"github.com/opd-ai/voxlink/transport"
	"github.com/opd-ai/voxlink/voice"
)

// Frame is one control channel frame. Payload is owned by the frame.
type Frame struct {
	TypeNumber uint16
	Payload    []byte
}

// NewFrame returns a frame of kind t.
func NewFrame(t Type, payload []byte) Frame {
	return Frame{TypeNumber: uint16(t), Payload: payload}
}

// Type maps the frame's type number into the known kinds.
func (f Frame) Type() (Type, error) {
	return TypeOf(f.TypeNumber)
}

// TypeName returns the kind name, or the raw number for unknown kinds.
func (f Frame) TypeName() string {
	return Type(f.TypeNumber).String()
}

// Voice parses a UDPTunnel frame as an inbound voice datagram. The returned
// frame's payload aliases f.Payload.
func (f Frame) Voice() (*voice.Frame, error) {
	if Type(f.TypeNumber) != TypeUDPTunnel {
		return nil, fmt.Errorf("%w: got %s", ErrNotVoice, f.TypeName())
	}
	return voice.Parse(f.Payload, true)
}

// FromMessage encodes m into a frame.
func FromMessage(codec Codec, m Message) (Frame, error) {
	payload, err := codec.Marshal(m)
	if err != nil {
		return Frame{}, err
	}
	return NewFrame(m.Type(), payload), nil
}

// FromVoice encodes an outbound voice datagram into a UDPTunnel frame.
func FromVoice(v *voice.Frame) (Frame, error) {
	payload, err := v.Encode()
	if err != nil {
		return Frame{}, err
	}
	return NewFrame(TypeUDPTunnel, payload), nil
}

// AppendWire appends the header and payload of f to dst.
func (f Frame) AppendWire(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint16(dst, f.TypeNumber)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(f.Payload)))
	return append(dst, f.Payload...)
}

// ReadFrame reads one frame from r. A peer that closes the stream yields an
// error matching transport.ErrRemoteClosed.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [limits.ControlHeaderSize]byte
	if err := transport.ReadExact(r, header[:]); err != nil {
		return Frame{}, fmt.Errorf("read control header: %w", err)
	}

	f := Frame{TypeNumber: binary.BigEndian.Uint16(header[0:2])}
	length := binary.BigEndian.Uint32(header[2:6])
	if err := limits.ValidateControlLength(length); err != nil {
		return Frame{}, fmt.Errorf("%s frame: %w", f.TypeName(), err)
	}

	f.Payload = make([]byte, length)
	if err := transport.ReadExact(r, f.Payload); err != nil {
		return Frame{}, fmt.Errorf("read %s payload: %w", f.TypeName(), err)
	}
	return f, nil
}

// WriteFrame writes f to w with a single write call.
func WriteFrame(w io.Writer, f Frame) error {
	if err := limits.ValidateSize(len(f.Payload), limits.MaxControlPayload); err != nil {
		return fmt.Errorf("%s frame: %w", f.TypeName(), err)
	}
	buf := f.AppendWire(make([]byte, 0, limits.ControlHeaderSize+len(f.Payload)))
	return transport.WriteAll(w, buf)
}
