package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/opd-ai/voxlink/metrics"
)

func TestPlaybackDecodeAndConsume(t *testing.T) {
	dec := &fakeDecoder{samplesPerChannel: 960}
	p, err := NewPlayback(DefaultSetup, dec)
	require.NoError(t, err)

	assert.Nil(t, p.ConsumeAudio(480))

	n, err := p.DecodeToBuffer([]byte{7})
	require.NoError(t, err)
	assert.Equal(t, 960, n)
	assert.Equal(t, 1920, p.Buffered())

	out := p.ConsumeAudio(480)
	require.Len(t, out, 960)
	assert.Equal(t, int16(7), out[0])

	// Asking for more than is buffered returns only what is there.
	out = p.ConsumeAudio(10000)
	assert.Len(t, out, 960)
	assert.Nil(t, p.ConsumeAudio(480))
}

func TestPlaybackDropsWhenFull(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := metrics.NewMetrics(mp)
	require.NoError(t, err)

	dec := &fakeDecoder{samplesPerChannel: 960}
	// One 60 ms stereo frame: 5760 samples, room for three 20 ms packets.
	p, err := NewPlayback(DefaultSetup, dec, WithBufferFrames(1), WithMetrics(m))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		n, err := p.DecodeToBuffer([]byte{byte(i)})
		require.NoError(t, err)
		assert.Equal(t, 960, n)
	}

	n, err := p.DecodeToBuffer([]byte{9})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, []int{960}, dec.discarded)
	assert.Equal(t, 5760, p.Buffered())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name == "voxlink.audio.playback_drops" {
				found = true
				sum := md.Data.(metricdata.Sum[int64])
				assert.Equal(t, int64(1), sum.DataPoints[0].Value)
			}
		}
	}
	assert.True(t, found)

	// Draining makes room again.
	p.ConsumeAudio(960)
	n, err = p.DecodeToBuffer([]byte{4})
	require.NoError(t, err)
	assert.Equal(t, 960, n)
}

func TestPlaybackDecodeFailureLeavesBufferUntouched(t *testing.T) {
	dec := &fakeDecoder{samplesPerChannel: 480, fail: true}
	p, err := NewPlayback(DefaultSetup, dec)
	require.NoError(t, err)

	_, err = p.DecodeToBuffer([]byte{1})
	assert.ErrorIs(t, err, errFakeCodec)
	assert.Equal(t, 0, p.Buffered())

	_, err = p.DecodeToBuffer(nil)
	assert.ErrorIs(t, err, ErrInvalidPacket)
}

func TestPlaybackConsumeRoundsToChannels(t *testing.T) {
	dec := &fakeDecoder{samplesPerChannel: 3}
	p, err := NewPlayback(DefaultSetup, dec)
	require.NoError(t, err)

	_, err = p.DecodeToBuffer([]byte{1})
	require.NoError(t, err)

	out := p.ConsumeAudio(2)
	assert.Len(t, out, 4)
	out = p.ConsumeAudio(2)
	assert.Len(t, out, 2)
}

func TestNewPlaybackRejectsBadSetup(t *testing.T) {
	_, err := NewPlayback(Setup{Rate: 44100, Channels: Stereo}, &fakeDecoder{})
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
}
