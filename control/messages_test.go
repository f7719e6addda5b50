package control

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestMessagesRoundTrip(t *testing.T) {
	tests := []Message{
		&Version{Version: EncodeVersion(1, 2, 4), Release: "voxlink", OS: "linux", OSVersion: "6.1", VersionV2: EncodeVersionV2(1, 5, 0)},
		&Authenticate{Username: "alice", Password: "pw", Tokens: []string{"a", "b"}, CELTVersions: []int32{-2147483637}, Opus: true},
		&Ping{Timestamp: 1700000000000, Good: 10, Lost: 2, TCPPingAvg: 12.5, TCPPingVar: 0.25},
		&Reject{Kind: RejectWrongUserPassword, Reason: "wrong password"},
		&ServerSync{Session: 42, MaxBandwidth: 72000, WelcomeText: "hi", Permissions: 0xf07ff},
		&CryptSetup{Key: []byte{1, 2, 3}, ClientNonce: []byte{4}, ServerNonce: []byte{5, 6}},
		&CodecVersion{Alpha: -2147483637, Beta: 0, PreferAlpha: true, Opus: true},
		&TextMessage{Actor: 3, Sessions: []uint32{1, 2}, ChannelIDs: []uint32{0}, Message: "hello"},
		&PermissionDenied{Permission: 4, ChannelID: 1, Reason: "nope", DenyType: 1, Name: "bob"},
		&ServerConfig{MaxBandwidth: 1, WelcomeText: "w", AllowHTML: true, MessageLength: 5000, MaxUsers: 100},
	}

	codec := WireCodec{}
	for _, msg := range tests {
		t.Run(msg.Type().String(), func(t *testing.T) {
			payload, err := codec.Marshal(msg)
			require.NoError(t, err)

			got, err := codec.Unmarshal(msg.Type(), payload)
			require.NoError(t, err)
			if diff := cmp.Diff(msg, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVersionEncodingMatchesMumble(t *testing.T) {
	assert.Equal(t, uint32(0x010204), EncodeVersion(1, 2, 4))
	assert.Equal(t, "1.2.4", FormatVersion(0x010204))
	assert.Equal(t, uint64(0x0001000500000000), EncodeVersionV2(1, 5, 0))
}

func TestUnmarshalPackedRepeated(t *testing.T) {
	var packed []byte
	packed = protowire.AppendVarint(packed, 7)
	packed = protowire.AppendVarint(packed, 300)

	var b []byte
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, packed)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 9)

	var m TextMessage
	require.NoError(t, m.Unmarshal(b))
	assert.Equal(t, []uint32{7, 300, 9}, m.Sessions)
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "future")
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 77)

	var m ServerSync
	require.NoError(t, m.Unmarshal(b))
	assert.Equal(t, uint32(77), m.Session)
}

func TestUnmarshalMalformed(t *testing.T) {
	wrongType := protowire.AppendTag(nil, 1, protowire.BytesType)
	wrongType = protowire.AppendString(wrongType, "x")

	tests := []struct {
		name    string
		typ     Type
		payload []byte
	}{
		{"truncated tag", TypeVersion, []byte{0x80}},
		{"truncated length", TypeTextMessage, []byte{0x2a, 0x05, 'a'}},
		{"wrong wire type", TypeServerSync, wrongType},
		{"raw kind truncated", TypeUserState, []byte{0x0a, 0x10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WireCodec{}.Unmarshal(tt.typ, tt.payload)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestRawMessage(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 12)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendString(b, "bob")
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{0xff, 0xfe})

	m, err := WireCodec{}.Unmarshal(TypeUserState, b)
	require.NoError(t, err)

	raw, ok := m.(*RawMessage)
	require.True(t, ok)
	assert.Equal(t, TypeUserState, raw.Type())
	assert.Len(t, raw.Fields, 3)
	assert.Equal(t, `UserState{1=12 3="bob" 4=bytes[2]}`, raw.String())
	assert.Equal(t, b, raw.Marshal())
}

func TestAuthenticateStringRedactsPassword(t *testing.T) {
	m := &Authenticate{Username: "alice", Password: "hunter2", Tokens: []string{"t"}, Opus: true}
	s := m.String()
	assert.NotContains(t, s, "hunter2")
	assert.Contains(t, s, `username="alice"`)
	assert.Contains(t, s, "<redacted>")
}

func TestCodecRejectsVoiceAsMessage(t *testing.T) {
	_, err := NewMessage(TypeUDPTunnel)
	assert.ErrorIs(t, err, ErrNotMessage)

	_, err = WireCodec{}.Marshal(&RawMessage{Kind: TypeUDPTunnel})
	assert.ErrorIs(t, err, ErrNotMessage)

	_, err = NewMessage(Type(40))
	assert.ErrorIs(t, err, ErrParse)
}

func TestFromMessage(t *testing.T) {
	f, err := FromMessage(WireCodec{}, &Ping{Timestamp: 5})
	require.NoError(t, err)
	assert.Equal(t, uint16(TypePing), f.TypeNumber)
	assert.Equal(t, "Ping{timestamp=5 good=0 late=0 lost=0 tcp_packets=0}", Describe(WireCodec{}, f))
}
