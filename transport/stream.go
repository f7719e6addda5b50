package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
)

// DefaultPort is the standard Mumble server port.
const DefaultPort uint16 = 64738

// Stream is an ordered, reliable duplex byte stream. Close unblocks pending
// reads and writes.
type Stream interface {
	io.ReadWriteCloser
}

// Dialer opens streams to a server.
type Dialer interface {
	Dial(ctx context.Context, host string, port uint16) (Stream, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, host string, port uint16) (Stream, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, host string, port uint16) (Stream, error) {
	return f(ctx, host, port)
}

// Address joins host and port, bracketing IPv6 literals.
func Address(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}

// ReadExact reads exactly len(buf) bytes from r. A stream that ends before the
// first byte or part way through yields ErrRemoteClosed.
func ReadExact(r io.Reader, buf []byte) error {
	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && n == 0:
		return ErrRemoteClosed
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w after %d of %d bytes", ErrRemoteClosed, n, len(buf))
	default:
		return err
	}
}

// WriteAll writes buf to w in full.
func WriteAll(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrShortWrite
		}
		buf = buf[n:]
	}
	return nil
}
