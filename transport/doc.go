// Package transport provides the duplex byte streams the control channel runs
// over.
//
// # Architecture
//
// The connection state machine never touches sockets directly. It asks a
// Dialer for a Stream and then only reads and writes bytes:
//
//	type Dialer interface {
//	    Dial(ctx context.Context, host string, port uint16) (Stream, error)
//	}
//
// Tests substitute an in-memory Stream (net.Pipe works well) without any
// changes to the protocol code.
//
// # Dialers
//
// TLS Dialer:
//
//	dialer := transport.NewTLSDialer(transport.TLSOptions{InsecureSkipVerify: true})
//	stream, err := dialer.Dial(ctx, "voice.example.org", 64738)
//
// Mumble servers usually present self-signed certificates, so verification can
// be turned off. A client certificate may be supplied as a PEM pair or as a
// PKCS#12 bundle; servers use it to identify registered users.
//
// WebSocket Dialer:
//
//	dialer := transport.NewWebSocketDialer(transport.WebSocketOptions{Secure: true, Path: "/mumble"})
//
// For servers reached through a WebSocket proxy. Control frames are carried in
// binary messages; message boundaries carry no meaning.
//
// # Reading and Writing
//
// ReadExact fills a buffer completely, tolerating partial reads, and reports a
// peer that closed the stream as ErrRemoteClosed. WriteAll writes a buffer
// completely or fails.
package transport
