package connection

import "errors"

var (
	// ErrProtocolViolation indicates the server sent an unexpected message at
	// a fixed point of the handshake.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrNotConnected indicates a send on a connection that has not reached
	// the Connected state.
	ErrNotConnected = errors.New("connection not established")

	// ErrClosed indicates the connection was closed.
	ErrClosed = errors.New("connection closed")

	// ErrInvalidTransition indicates an operation the current state does not
	// allow, such as a second Connect.
	ErrInvalidTransition = errors.New("invalid state transition")
)
