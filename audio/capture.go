package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxlink/event"
	"github.com/opd-ai/voxlink/limits"
	"github.com/opd-ai/voxlink/metrics"
)

// Capture accumulates raw PCM quanta and encodes them one codec frame at a
// time.
//
// Every encoded frame is published on Encoded before BufferRawAudio returns.
// Handlers run without the pipeline lock held, so they may call back into the
// pipeline. Frames from a single caller are published in capture order.
type Capture struct {
	mu           sync.Mutex
	setup        Setup
	frame        time.Duration
	frameSamples int
	encoder      Encoder
	buffer       *RingBuffer[int16, int]
	scratch      []byte
	metrics      *metrics.Metrics

	// Encoded receives each encoded frame. The slice is owned by the handler.
	Encoded event.Event[[]byte]
}

// NewCapture creates a capture pipeline encoding frames of the given duration.
func NewCapture(setup Setup, frame time.Duration, encoder Encoder, opts ...Option) (*Capture, error) {
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateFrameDuration(frame); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	frameSamples := setup.TotalSamples(frame)

	logrus.WithFields(logrus.Fields{
		"function":      "NewCapture",
		"setup":         setup.String(),
		"frame":         frame.String(),
		"frame_samples": frameSamples,
	}).Info("Creating capture pipeline")

	return &Capture{
		setup:        setup,
		frame:        frame,
		frameSamples: frameSamples,
		encoder:      encoder,
		buffer:       NewRingBuffer[int16](frameSamples * o.bufferFrames),
		scratch:      make([]byte, limits.MaxEncodedFrame),
		metrics:      o.metrics,
	}, nil
}

// FrameDuration returns the duration of each encoded frame.
func (c *Capture) FrameDuration() time.Duration { return c.frame }

// Setup returns the PCM format the pipeline expects.
func (c *Capture) Setup() Setup { return c.setup }

// BufferRawAudio appends an interleaved quantum and encodes every complete
// frame now available. It fails with ErrCaptureOverflow, buffering nothing,
// when the quantum does not fit.
func (c *Capture) BufferRawAudio(pcm []int16) error {
	if len(pcm)%int(c.setup.Channels) != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", ErrMisalignedPCM, len(pcm), c.setup.Channels)
	}

	ready, err := c.bufferAndEncode(pcm)
	for _, frame := range ready {
		c.metrics.RecordEncoded(context.Background(), len(frame))
		c.Encoded.Publish(frame)
	}
	return err
}

func (c *Capture) bufferAndEncode(pcm []int16) ([][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.buffer.WriteCapacity() < len(pcm) {
		c.metrics.CaptureOverflows.Add(context.Background(), 1)
		logrus.WithFields(logrus.Fields{
			"function": "Capture.BufferRawAudio",
			"samples":  len(pcm),
			"room":     c.buffer.WriteCapacity(),
		}).Warn("Audio send buffer is overfull")
		return nil, fmt.Errorf("%w: %d samples, room for %d", ErrCaptureOverflow, len(pcm), c.buffer.WriteCapacity())
	}
	c.buffer.Write(pcm)

	var ready [][]byte
	for c.buffer.ReadCapacity() >= c.frameSamples {
		n, err := c.encoder.Encode(c.buffer.ReadSource(c.frameSamples), c.scratch)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Capture.BufferRawAudio",
				"error":    err.Error(),
			}).Error("Opus encoder error")
			return ready, err
		}
		if err := limits.ValidateEncodedFrame(c.scratch[:n]); err != nil {
			return ready, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		ready = append(ready, bytes.Clone(c.scratch[:n]))
	}
	return ready, nil
}
