package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxVoicePayload is the largest payload a voice datagram can carry (13 bits).
	MaxVoicePayload = 0x1fff

	// PositionTrailerSize is the size of the optional positional audio trailer
	// (three 32-bit floats) that may follow a voice payload.
	PositionTrailerSize = 12

	// MaxEncodedFrame is the output buffer size used for a single encoded frame.
	MaxEncodedFrame = 4000

	// MaxControlPayload bounds the body of a single control frame.
	MaxControlPayload = 8*1024*1024 - 1

	// ControlHeaderSize is the fixed control frame header: type (2) + length (4).
	ControlHeaderSize = 6
)

var (
	// ErrPayloadEmpty indicates an empty payload where one is required
	ErrPayloadEmpty = errors.New("empty payload")

	// ErrPayloadTooLarge indicates a payload exceeds its maximum size
	ErrPayloadTooLarge = errors.New("payload too large")
)

// ValidateSize checks size against maxSize and returns a wrapped
// ErrPayloadTooLarge carrying both numbers when it does not fit.
func ValidateSize(size, maxSize int) error {
	if size > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrPayloadTooLarge, size, maxSize)
	}
	return nil
}

// ValidateVoicePayload validates an audio payload against MaxVoicePayload.
func ValidateVoicePayload(payload []byte) error {
	if len(payload) > MaxVoicePayload {
		return fmt.Errorf("%w: voice payload size %d exceeds limit %d", ErrPayloadTooLarge, len(payload), MaxVoicePayload)
	}
	return nil
}

// ValidateControlLength validates a declared control frame length before the
// body is read.
func ValidateControlLength(length uint32) error {
	if uint64(length) > MaxControlPayload {
		return fmt.Errorf("%w: control frame length %d exceeds limit %d", ErrPayloadTooLarge, length, MaxControlPayload)
	}
	return nil
}

// ValidateEncodedFrame validates an encoder output against MaxEncodedFrame.
// Returns ErrPayloadEmpty when the encoder produced nothing.
func ValidateEncodedFrame(frame []byte) error {
	if len(frame) == 0 {
		return ErrPayloadEmpty
	}
	if len(frame) > MaxEncodedFrame {
		return fmt.Errorf("%w: encoded frame size %d exceeds limit %d", ErrPayloadTooLarge, len(frame), MaxEncodedFrame)
	}
	return nil
}
