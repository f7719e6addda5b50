package varint

import (
	"errors"
	"fmt"
)

// ErrParse is the base error for every varint decoding failure.
var ErrParse = errors.New("varint parse failure")

var (
	// ErrTruncated indicates the input ended before the value was complete.
	ErrTruncated = fmt.Errorf("%w: truncated input", ErrParse)

	// ErrMalformed indicates a prefix byte that matches no defined width.
	ErrMalformed = fmt.Errorf("%w: malformed prefix", ErrParse)

	// ErrTooWide indicates a decoded value does not fit the requested width.
	ErrTooWide = fmt.Errorf("%w: value too wide", ErrParse)
)
