package voice

import "fmt"

// CodecType is the 3-bit audio codec tag carried in the first datagram byte.
type CodecType uint8

const (
	CodecCELTAlpha CodecType = iota
	CodecPing
	CodecSpeex
	CodecCELTBeta
	CodecOpus
)

// String returns the codec name.
func (c CodecType) String() string {
	switch c {
	case CodecCELTAlpha:
		return "CELTAlpha"
	case CodecPing:
		return "Ping"
	case CodecSpeex:
		return "Speex"
	case CodecCELTBeta:
		return "CELTBeta"
	case CodecOpus:
		return "Opus"
	default:
		return fmt.Sprintf("CodecType(%d)", uint8(c))
	}
}

// Valid reports whether c is one of the defined codec tags.
func (c CodecType) Valid() bool {
	return c <= CodecOpus
}
