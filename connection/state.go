package connection

import "fmt"

// State is the lifecycle position of a Connection.
type State uint8

const (
	// StateIdle means Connect has not been called.
	StateIdle State = iota
	// StateConnecting means the stream is being dialed.
	StateConnecting
	// StateAwaitingServerVersion means the stream is open and the server's
	// Version frame has not arrived yet.
	StateAwaitingServerVersion
	// StateAuthenticating means the client is sending its version and
	// credentials.
	StateAuthenticating
	// StateConnected means the ping and read loops are running.
	StateConnected
	// StateClosed means the connection was torn down.
	StateClosed
	// StateFailed means the connection attempt failed before completing.
	StateFailed
)

var stateNames = [...]string{
	StateIdle:                  "Idle",
	StateConnecting:            "Connecting",
	StateAwaitingServerVersion: "AwaitingServerVersion",
	StateAuthenticating:        "Authenticating",
	StateConnected:             "Connected",
	StateClosed:                "Closed",
	StateFailed:                "Failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// transitions lists the legal successors of each state. Closed and Failed
// have none.
var transitions = map[State][]State{
	StateIdle:                  {StateConnecting, StateClosed},
	StateConnecting:            {StateAwaitingServerVersion, StateFailed, StateClosed},
	StateAwaitingServerVersion: {StateAuthenticating, StateFailed, StateClosed},
	StateAuthenticating:        {StateConnected, StateFailed, StateClosed},
	StateConnected:             {StateClosed},
}

// CanTransition reports whether the state machine allows moving from s to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no successors.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateFailed
}
