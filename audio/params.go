package audio

import (
	"fmt"
	"time"
)

// SampleRate is a sampling rate in Hz.
type SampleRate int

// Sample rates supported by Opus.
const (
	Rate8k  SampleRate = 8000
	Rate12k SampleRate = 12000
	Rate16k SampleRate = 16000
	Rate24k SampleRate = 24000
	Rate48k SampleRate = 48000
)

// Valid reports whether r is a rate Opus can run at.
func (r SampleRate) Valid() bool {
	switch r {
	case Rate8k, Rate12k, Rate16k, Rate24k, Rate48k:
		return true
	}
	return false
}

// Channels is an interleaved channel count.
type Channels int

const (
	Mono   Channels = 1
	Stereo Channels = 2
)

// Valid reports whether c is mono or stereo.
func (c Channels) Valid() bool {
	return c == Mono || c == Stereo
}

// MumbleTick is the unit of the voice frame sequence counter.
const MumbleTick = 10 * time.Millisecond

// MaxFrameDuration is the longest single Opus frame.
const MaxFrameDuration = 60 * time.Millisecond

// Opus frame durations accepted for encoding.
const (
	Frame10ms = 10 * time.Millisecond
	Frame20ms = 20 * time.Millisecond
	Frame40ms = 40 * time.Millisecond
	Frame60ms = 60 * time.Millisecond
)

// ValidateFrameDuration checks that d is an Opus frame size.
func ValidateFrameDuration(d time.Duration) error {
	switch d {
	case Frame10ms, Frame20ms, Frame40ms, Frame60ms:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidFrameDuration, d)
}

// TicksPer returns how many sequence ticks a frame of duration d advances.
func TicksPer(d time.Duration) uint64 {
	if d < MumbleTick {
		return 1
	}
	return uint64(d / MumbleTick)
}

// Setup describes an interleaved PCM stream.
type Setup struct {
	Rate     SampleRate
	Channels Channels
}

// DefaultSetup is the 48 kHz stereo format the codec runs at.
var DefaultSetup = Setup{Rate: Rate48k, Channels: Stereo}

// Validate checks rate and channel count.
func (s Setup) Validate() error {
	if !s.Rate.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, s.Rate)
	}
	if !s.Channels.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, s.Channels)
	}
	return nil
}

// SamplesPerChannel returns the per-channel sample count for duration d.
func (s Setup) SamplesPerChannel(d time.Duration) int {
	return int(int64(s.Rate) * int64(d) / int64(time.Second))
}

// TotalSamples returns the interleaved sample count for duration d.
func (s Setup) TotalSamples(d time.Duration) int {
	return s.SamplesPerChannel(d) * int(s.Channels)
}

func (s Setup) String() string {
	return fmt.Sprintf("%dHz/%dch", s.Rate, s.Channels)
}
