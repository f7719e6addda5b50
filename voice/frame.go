// Package voice implements the Mumble audio datagram: the binary sub-format
// carried inside UDPTunnel control frames.
//
// Layout:
//
//	byte 0          codec (top 3 bits) | target (low 5 bits)
//	varint          sender session (inbound only)
//	varint          frame sequence
//	varint          payload length (low 13 bits) | terminator (bit 13)
//	payload         length bytes
//	[12 bytes]      optional positional audio trailer
package voice

import (
	"fmt"

	"github.com/opd-ai/voxlink/limits"
	"github.com/opd-ai/voxlink/varint"
)

const (
	codecShift     = 5
	targetMask     = 0x1f
	lengthMask     = 0x1fff
	terminatorFlag = 0x2000
)

// Target values with special meaning to the server.
const (
	// TargetNormal speaks to the current channel.
	TargetNormal uint8 = 0
	// TargetLoopback asks the server to echo the frame back.
	TargetLoopback uint8 = 31
)

// Frame is a single audio datagram.
//
// Payload of a parsed frame aliases the input buffer.
type Frame struct {
	Codec           CodecType
	Target          uint8
	SenderSession   uint32
	FrameSequence   uint64
	Terminator      bool
	HasPositionInfo bool
	Payload         []byte
}

// NewOutgoing returns a frame ready to be encoded and sent to the server.
func NewOutgoing(codec CodecType, sequence uint64, payload []byte) *Frame {
	return &Frame{
		Codec:         codec,
		Target:        TargetNormal,
		FrameSequence: sequence,
		Payload:       payload,
	}
}

// Parse decodes a datagram. senderPresent is true for datagrams received from
// the server, which prefix the sequence with the speaker's session id.
func Parse(b []byte, senderPresent bool) (*Frame, error) {
	r := varint.NewReader(b)

	header, err := r.ReadByte()
	if err != nil {
		return nil, parseFailure("missing header byte")
	}

	f := &Frame{
		Codec:  CodecType(header >> codecShift),
		Target: header & targetMask,
	}
	if !f.Codec.Valid() {
		return nil, parseFailure("unknown codec type %d", uint8(f.Codec))
	}

	if senderPresent {
		f.SenderSession, err = varint.ReadNarrow[uint32](r)
		if err != nil {
			return nil, parseFailure("sender session: %w", err)
		}
	}

	f.FrameSequence, err = r.ReadUint64()
	if err != nil {
		return nil, parseFailure("frame sequence: %w", err)
	}

	header16, err := varint.ReadNarrow[uint16](r)
	if err != nil {
		return nil, parseFailure("payload header: %w", err)
	}
	length := int(header16 & lengthMask)
	f.Terminator = header16&terminatorFlag != 0

	switch r.Remaining() {
	case length:
	case length + limits.PositionTrailerSize:
		f.HasPositionInfo = true
	default:
		return nil, parseFailure("payload length %d does not match %d remaining bytes", length, r.Remaining())
	}

	f.Payload, err = r.Next(length)
	if err != nil {
		return nil, parseFailure("payload: %w", err)
	}
	return f, nil
}

// AppendEncode appends the outbound wire form of f to dst. Only Opus frames can
// be encoded; sender session and positional data are never written.
func (f *Frame) AppendEncode(dst []byte) ([]byte, error) {
	if f.Codec != CodecOpus {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, f.Codec)
	}
	if err := limits.ValidateVoicePayload(f.Payload); err != nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(f.Payload))
	}

	dst = append(dst, byte(f.Codec)<<codecShift|f.Target&targetMask)
	dst = varint.Append(dst, f.FrameSequence)

	header := uint64(len(f.Payload))
	if f.Terminator {
		header |= terminatorFlag
	}
	dst = varint.Append(dst, header)
	return append(dst, f.Payload...), nil
}

// Encode returns the outbound wire form of f.
func (f *Frame) Encode() ([]byte, error) {
	size := 1 + varint.Size(f.FrameSequence) + 2 + len(f.Payload)
	return f.AppendEncode(make([]byte, 0, size))
}

// String returns a debug description of the frame.
func (f *Frame) String() string {
	return fmt.Sprintf(
		"AudioPacket(Type=%s, Target=%d, SenderSession=%d, FrameSequence=%d, IsTerminator=%t, HasPositionInfo=%t, Payload[%d])",
		f.Codec, f.Target, f.SenderSession, f.FrameSequence, f.Terminator, f.HasPositionInfo, len(f.Payload))
}
