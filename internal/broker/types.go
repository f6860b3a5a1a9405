package broker

import "time"

// ConnectionStatus represents the broker connection status as surfaced
// on the dashboard: a single connected flag plus how it is being fed.
type ConnectionStatus struct {
	Connected   bool      `json:"connected"`
	LiveSockets int       `json:"live_sockets"`
	Polling     bool      `json:"polling"`
	LastError   string    `json:"last_error,omitempty"`
	LastSeen    time.Time `json:"last_seen,omitempty"`
}

// connState is the per-printer transport state. A socket cycles
// connecting -> open -> closed -> connecting for the whole session;
// there is no terminal state.
type connState int

const (
	stateConnecting connState = iota
	stateOpen
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateOpen:
		return "open"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
