package control

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voxlink/limits"
	"github.com/opd-ai/voxlink/transport"
	"github.com/opd-ai/voxlink/voice"
)

// trickleReader hands out one byte per Read.
type trickleReader struct{ r io.Reader }

func (t trickleReader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	return t.r.Read(b[:1])
}

func TestFrameWireLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, NewFrame(TypePing, []byte{0x08, 0x01})))
	assert.Equal(t, []byte{0x00, 0x03, 0x00, 0x00, 0x00, 0x02, 0x08, 0x01}, buf.Bytes())
}

func TestReadFrameToleratesPartialReads(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, NewFrame(TypeTextMessage, []byte("hello"))))
	require.NoError(t, WriteFrame(&buf, NewFrame(TypeVersion, nil)))

	r := trickleReader{r: &buf}
	f, err := ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, uint16(TypeTextMessage), f.TypeNumber)
	assert.Equal(t, []byte("hello"), f.Payload)

	f, err = ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, uint16(TypeVersion), f.TypeNumber)
	assert.Empty(t, f.Payload)

	_, err = ReadFrame(r)
	assert.ErrorIs(t, err, transport.ErrRemoteClosed)
}

func TestReadFrameUnknownTypeIsReadable(t *testing.T) {
	data := []byte{0x00, 0x63, 0x00, 0x00, 0x00, 0x01, 0xaa}
	f, err := ReadFrame(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint16(99), f.TypeNumber)

	_, err = f.Type()
	assert.ErrorIs(t, err, ErrParse)

	_, err = Resolve(WireCodec{}, f)
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, Describe(WireCodec{}, f), "unknown control packet type 99")
}

func TestReadFrameErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"closed before header", nil, transport.ErrRemoteClosed},
		{"truncated header", []byte{0x00, 0x03, 0x00}, transport.ErrRemoteClosed},
		{"truncated payload", []byte{0x00, 0x03, 0x00, 0x00, 0x00, 0x04, 0x01}, transport.ErrRemoteClosed},
		{"oversized length", []byte{0x00, 0x03, 0xff, 0xff, 0xff, 0xff}, limits.ErrPayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestVoiceFrameThroughControlFrame(t *testing.T) {
	out := voice.NewOutgoing(voice.CodecOpus, 12, []byte{1, 2, 3})
	f, err := FromVoice(out)
	require.NoError(t, err)
	assert.Equal(t, uint16(TypeUDPTunnel), f.TypeNumber)

	// Outbound frames carry no sender, so parse them as the server would.
	parsed, err := voice.Parse(f.Payload, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), parsed.FrameSequence)
	assert.Equal(t, []byte{1, 2, 3}, parsed.Payload)

	_, err = FromVoice(voice.NewOutgoing(voice.CodecSpeex, 1, nil))
	assert.ErrorIs(t, err, voice.ErrNotImplemented)
}

func TestResolveInboundVoice(t *testing.T) {
	// opus, session 5, sequence 7, length 2 with terminator, payload.
	f := NewFrame(TypeUDPTunnel, []byte{0x80, 0x05, 0x07, 0xa0, 0x02, 0xde, 0xad})

	r, err := Resolve(WireCodec{}, f)
	require.NoError(t, err)
	require.NotNil(t, r.Voice)
	assert.Nil(t, r.Message)
	assert.Equal(t, uint32(5), r.Voice.SenderSession)
	assert.True(t, r.Voice.Terminator)
	assert.Equal(t, []byte{0xde, 0xad}, r.Voice.Payload)
	assert.Contains(t, Describe(WireCodec{}, f), "AudioPacket(Type=Opus")

	_, err = NewFrame(TypePing, nil).Voice()
	assert.ErrorIs(t, err, ErrNotVoice)

	_, err = Resolve(WireCodec{}, NewFrame(TypeUDPTunnel, []byte{0x80}))
	assert.ErrorIs(t, err, voice.ErrParse)
}
