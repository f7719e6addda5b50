package audio

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/pion/opus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silkPacket returns the single wideband 20 ms SILK packet in tiny.ogg.
func silkPacket(t *testing.T) []byte {
	t.Helper()
	f, err := os.Open("testdata/tiny.ogg")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	packet, err := NewOggReader(f).Next()
	require.NoError(t, err)
	require.Equal(t, byte(9<<3), packet[0], "expected SILK WB 20 ms mono")
	return packet
}

// referencePCM decodes packet with a fresh pion decoder.
func referencePCM(t *testing.T, packet []byte) []int16 {
	t.Helper()
	dec := opus.NewDecoder()
	raw := make([]byte, 1920)
	_, _, err := dec.Decode(packet, raw)
	require.NoError(t, err)

	pcm := make([]int16, len(raw)/2)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return pcm
}

func TestPureDecoderMatchesReference(t *testing.T) {
	packet := silkPacket(t)
	want := referencePCM(t, packet)

	tests := []struct {
		name  string
		setup Setup
		// reference samples advanced per output frame
		step int
	}{
		{"48k mono", Setup{Rate: Rate48k, Channels: Mono}, 1},
		{"16k mono", Setup{Rate: Rate16k, Channels: Mono}, 3},
		{"24k stereo", Setup{Rate: Rate24k, Channels: Stereo}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewPureDecoder(tt.setup)
			require.NoError(t, err)

			spc, err := dec.SamplesPerChannel(packet)
			require.NoError(t, err)
			assert.Equal(t, 960/tt.step, spc)

			pcm := make([]int16, spc*int(tt.setup.Channels))
			n, err := dec.DecodeInto(packet, pcm)
			require.NoError(t, err)
			assert.Equal(t, spc, n)

			got := make([]int16, spc)
			expected := make([]int16, spc)
			for i := range got {
				got[i] = pcm[i*int(tt.setup.Channels)]
				expected[i] = want[i*tt.step]
				for ch := 1; ch < int(tt.setup.Channels); ch++ {
					require.Equal(t, got[i], pcm[i*int(tt.setup.Channels)+ch], "channel %d frame %d", ch, i)
				}
			}
			assert.Equal(t, expected, got)
		})
	}
}

func TestPureDecoderThroughPlayback(t *testing.T) {
	packet := silkPacket(t)
	want := referencePCM(t, packet)

	dec, err := NewPureDecoder(Setup{Rate: Rate48k, Channels: Mono})
	require.NoError(t, err)
	p, err := NewPlayback(Setup{Rate: Rate48k, Channels: Mono}, dec)
	require.NoError(t, err)

	n, err := p.DecodeToBuffer(packet)
	require.NoError(t, err)
	assert.Equal(t, 960, n)
	assert.Equal(t, want, p.ConsumeAudio(960))
}

func TestPureDecoderRejectsUnsupportedPackets(t *testing.T) {
	dec, err := NewPureDecoder(Setup{Rate: Rate48k, Channels: Mono})
	require.NoError(t, err)
	pcm := make([]int16, 2880)

	tests := []struct {
		name   string
		packet []byte
	}{
		{"stereo", []byte{9<<3 | 0x04, 0x00}},
		{"10 ms frame", []byte{8 << 3, 0x00}},
		{"two frames", []byte{9<<3 | 0x01, 0x00}},
		{"celt", []byte{31 << 3, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dec.DecodeInto(tt.packet, pcm)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}
