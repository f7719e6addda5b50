package audio

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"layeh.com/gopus"
)

// DefaultBitrate is the constant bitrate used for outgoing voice.
const DefaultBitrate = 40000

// OpusDecoder decodes with libopus.
type OpusDecoder struct {
	setup Setup
	dec   *gopus.Decoder
}

// NewOpusDecoder creates a libopus decoder producing PCM in setup's format.
func NewOpusDecoder(setup Setup) (*OpusDecoder, error) {
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	dec, err := gopus.NewDecoder(int(setup.Rate), int(setup.Channels))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewOpusDecoder",
			"setup":    setup.String(),
			"error":    err.Error(),
		}).Error("Failed to create opus decoder")
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}
	return &OpusDecoder{setup: setup, dec: dec}, nil
}

// SamplesPerChannel implements Decoder.
func (d *OpusDecoder) SamplesPerChannel(packet []byte) (int, error) {
	return PacketSamples(packet, d.setup.Rate)
}

// DecodeInto implements Decoder.
func (d *OpusDecoder) DecodeInto(packet []byte, pcm []int16) (int, error) {
	frameSize := len(pcm) / int(d.setup.Channels)
	out, err := d.dec.Decode(packet, frameSize, false)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	samples := len(out) / int(d.setup.Channels)
	if samples < frameSize {
		return 0, fmt.Errorf("%w: decoded %d of %d samples", ErrDecode, samples, frameSize)
	}
	copy(pcm, out)
	return samples, nil
}

// Discard runs packet loss concealment for the dropped duration.
func (d *OpusDecoder) Discard(samplesPerChannel int) {
	if _, err := d.dec.Decode(nil, samplesPerChannel, false); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "OpusDecoder.Discard",
			"samples":  samplesPerChannel,
			"error":    err.Error(),
		}).Debug("Concealment decode failed")
	}
}

// OpusEncoder encodes with libopus at a constant bitrate.
type OpusEncoder struct {
	setup     Setup
	frameSize int
	enc       *gopus.Encoder
}

// NewOpusEncoder creates a libopus encoder for frames of the given duration.
func NewOpusEncoder(setup Setup, frame time.Duration, bitrate int) (*OpusEncoder, error) {
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateFrameDuration(frame); err != nil {
		return nil, err
	}
	enc, err := gopus.NewEncoder(int(setup.Rate), int(setup.Channels), gopus.Audio)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewOpusEncoder",
			"setup":    setup.String(),
			"error":    err.Error(),
		}).Error("Failed to create opus encoder")
		return nil, fmt.Errorf("create opus encoder: %w", err)
	}
	if bitrate <= 0 {
		bitrate = DefaultBitrate
	}
	enc.SetBitrate(bitrate)
	enc.SetVbr(false)

	logrus.WithFields(logrus.Fields{
		"function": "NewOpusEncoder",
		"setup":    setup.String(),
		"frame":    frame.String(),
		"bitrate":  bitrate,
	}).Info("Opus encoder created")

	return &OpusEncoder{
		setup:     setup,
		frameSize: setup.SamplesPerChannel(frame),
		enc:       enc,
	}, nil
}

// Encode implements Encoder.
func (e *OpusEncoder) Encode(pcm []int16, out []byte) (int, error) {
	data, err := e.enc.Encode(pcm, e.frameSize, len(out))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if len(data) == 0 || len(data) > len(out) {
		return 0, fmt.Errorf("%w: encoder returned %d bytes", ErrEncode, len(data))
	}
	return copy(out, data), nil
}
