package voice

import (
	"errors"
	"fmt"
)

// ErrParse classifies every datagram parse failure.
var ErrParse = errors.New("failed datagram packet parse")

// Encode errors.
var (
	// ErrNotImplemented indicates an encode request for a codec other than Opus.
	ErrNotImplemented = errors.New("voice encoding only implemented for opus")

	// ErrPayloadTooLarge indicates a payload above 8191 bytes.
	ErrPayloadTooLarge = errors.New("voice payload too large")
)

// ParseError wraps the underlying reason a datagram could not be parsed.
// errors.Is(err, ErrParse) holds for every ParseError.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrParse.Error(), e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

func parseFailure(format string, args ...any) error {
	return &ParseError{Err: fmt.Errorf(format, args...)}
}
