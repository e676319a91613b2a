package core

type SessionID string

// SessionState is the lifecycle of one connection's room membership.
type SessionState int

const (
	StateConnected SessionState = iota
	StateJoined
	StateDeparted
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	case StateDeparted:
		return "departed"
	default:
		return "unknown"
	}
}
