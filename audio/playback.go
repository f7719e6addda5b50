package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxlink/metrics"
)

// Playback decodes network packets into a buffer drained by the render side.
type Playback struct {
	mu      sync.Mutex
	setup   Setup
	decoder Decoder
	buffer  *RingBuffer[int16, int]
	metrics *metrics.Metrics
}

// NewPlayback creates a playback pipeline whose buffer holds a number of
// maximum-length Opus frames (DefaultBufferFrames unless overridden).
func NewPlayback(setup Setup, decoder Decoder, opts ...Option) (*Playback, error) {
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	capacity := setup.TotalSamples(MaxFrameDuration) * o.bufferFrames

	logrus.WithFields(logrus.Fields{
		"function": "NewPlayback",
		"setup":    setup.String(),
		"capacity": capacity,
	}).Info("Creating playback pipeline")

	return &Playback{
		setup:   setup,
		decoder: decoder,
		buffer:  NewRingBuffer[int16](capacity),
		metrics: o.metrics,
	}, nil
}

// Setup returns the PCM format the pipeline produces.
func (p *Playback) Setup() Setup { return p.setup }

// DecodeToBuffer decodes packet into the buffer and returns the number of
// samples per channel added. When the buffer lacks room the packet is dropped,
// the codec is told about the gap, and 0 is returned without error.
func (p *Playback) DecodeToBuffer(packet []byte) (int, error) {
	samplesPerChannel, err := p.decoder.SamplesPerChannel(packet)
	if err != nil {
		return 0, err
	}
	if samplesPerChannel <= 0 {
		return 0, fmt.Errorf("%w: %d samples", ErrInvalidPacket, samplesPerChannel)
	}
	needed := samplesPerChannel * int(p.setup.Channels)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buffer.WriteCapacity() < needed {
		p.decoder.Discard(samplesPerChannel)
		p.metrics.PlaybackDrops.Add(context.Background(), 1)
		logrus.WithFields(logrus.Fields{
			"function": "Playback.DecodeToBuffer",
			"needed":   needed,
			"room":     p.buffer.WriteCapacity(),
		}).Debug("Playback buffer full, dropping packet")
		return 0, nil
	}

	dest := p.buffer.WriteDest(needed)
	decoded, err := p.decoder.DecodeInto(packet, dest)
	if err != nil {
		p.buffer.RewindWrite(needed)
		return 0, err
	}
	if decoded < samplesPerChannel {
		p.buffer.RewindWrite(needed)
		return 0, fmt.Errorf("%w: decoded %d of %d samples", ErrDecode, decoded, samplesPerChannel)
	}
	return decoded, nil
}

// ConsumeAudio removes up to samplesPerChannel samples per channel from the
// buffer and returns them interleaved in a new slice. It returns nil when
// nothing is buffered.
func (p *Playback) ConsumeAudio(samplesPerChannel int) []int16 {
	channels := int(p.setup.Channels)

	p.mu.Lock()
	defer p.mu.Unlock()

	n := min(p.buffer.ReadCapacity(), samplesPerChannel*channels)
	n -= n % channels
	if n <= 0 {
		return nil
	}
	out := make([]int16, n)
	p.buffer.ReadInto(out)
	return out
}

// Buffered returns the number of interleaved samples waiting to be consumed.
func (p *Playback) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.ReadCapacity()
}
