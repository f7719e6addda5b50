package control

import "errors"

var (
	// ErrParse indicates a frame whose type or payload could not be
	// interpreted.
	ErrParse = errors.New("control packet parse failure")

	// ErrNotVoice indicates a request to read a voice datagram from a frame
	// of another kind.
	ErrNotVoice = errors.New("control packet is not a UDPTunnel")

	// ErrNotMessage indicates a request to decode a UDPTunnel frame as a
	// structured message.
	ErrNotMessage = errors.New("UDPTunnel frames carry voice, not messages")
)
