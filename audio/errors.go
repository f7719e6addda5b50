package audio

import "errors"

// Setup errors.
var (
	// ErrInvalidSampleRate indicates a rate Opus does not support.
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrInvalidChannels indicates a channel count other than mono or stereo.
	ErrInvalidChannels = errors.New("invalid channel count")

	// ErrInvalidFrameDuration indicates a frame duration Opus cannot encode.
	ErrInvalidFrameDuration = errors.New("invalid frame duration")
)

// Pipeline errors.
var (
	// ErrCaptureOverflow indicates the capture buffer has no room for a quantum.
	ErrCaptureOverflow = errors.New("audio send buffer is overfull")

	// ErrInvalidPacket indicates an Opus packet whose table of contents is bogus.
	ErrInvalidPacket = errors.New("invalid opus packet")

	// ErrDecode indicates the codec failed to decode a packet.
	ErrDecode = errors.New("opus decode failed")

	// ErrEncode indicates the codec failed to encode a frame.
	ErrEncode = errors.New("opus encode failed")

	// ErrMisalignedPCM indicates a PCM slice that is not a whole number of
	// interleaved frames.
	ErrMisalignedPCM = errors.New("pcm length is not a multiple of the channel count")
)
