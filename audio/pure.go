package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

// pureFrameSamples48k is what pion/opus writes per Decode call: one 20 ms
// SILK frame upsampled to 48 kHz mono, whatever the packet's bandwidth.
const pureFrameSamples48k = 960

// PureDecoder decodes with the pure Go pion/opus decoder. It handles mono
// single-frame 20 ms SILK packets only and resamples the 48 kHz output to the
// playback setup.
type PureDecoder struct {
	setup Setup
	dec   opus.Decoder
	raw   []byte
	mono  []int16
}

// NewPureDecoder creates a decoder producing PCM in setup's format.
func NewPureDecoder(setup Setup) (*PureDecoder, error) {
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"function": "NewPureDecoder",
		"setup":    setup.String(),
	}).Info("Creating pure Go opus decoder")

	return &PureDecoder{
		setup: setup,
		dec:   opus.NewDecoder(),
		raw:   make([]byte, pureFrameSamples48k*2),
		mono:  make([]int16, pureFrameSamples48k),
	}, nil
}

// SamplesPerChannel implements Decoder.
func (d *PureDecoder) SamplesPerChannel(packet []byte) (int, error) {
	return PacketSamples(packet, d.setup.Rate)
}

// DecodeInto implements Decoder.
func (d *PureDecoder) DecodeInto(packet []byte, pcm []int16) (int, error) {
	samples48k, err := PacketSamples(packet, Rate48k)
	if err != nil {
		return 0, err
	}
	if samples48k != pureFrameSamples48k {
		return 0, fmt.Errorf("%w: pure Go decoder needs one 20 ms frame, packet holds %d samples", ErrDecode, samples48k)
	}
	if PacketStereo(packet) {
		return 0, fmt.Errorf("%w: pure Go decoder cannot decode stereo packets", ErrDecode)
	}

	if _, _, err := d.dec.Decode(packet, d.raw); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	for i := range d.mono {
		d.mono[i] = int16(binary.LittleEndian.Uint16(d.raw[i*2:]))
	}

	resampleInto(d.mono, Rate48k, d.setup.Rate, d.setup.Channels, pcm)
	return len(pcm) / int(d.setup.Channels), nil
}

// Discard is a no-op; the SILK decoder keeps no concealment state.
func (d *PureDecoder) Discard(int) {}
