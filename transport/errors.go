package transport

import "errors"

var (
	// ErrRemoteClosed indicates the peer closed the stream.
	ErrRemoteClosed = errors.New("remote closed the connection")

	// ErrShortWrite indicates a writer accepted fewer bytes than offered
	// without returning an error.
	ErrShortWrite = errors.New("short write")

	// ErrClientCertificate indicates the configured client certificate could
	// not be loaded.
	ErrClientCertificate = errors.New("failed to load client certificate")
)
