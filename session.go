package imap

import "strconv"

// State is the lifecycle state of a client session.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// session is the mutable protocol state of one connection: the open
// transport, the tag counter and the last error seen.
type session struct {
	conn    Transport
	counter int
	lastErr string
}

// tag returns the tag of the most recently sent command.
func (s *session) tag() string {
	return TagPrefix + strconv.Itoa(s.counter)
}

// nextTag advances the counter and returns the new tag.
func (s *session) nextTag() string {
	s.counter++
	return s.tag()
}

func (s *session) connected() bool {
	return s.conn != nil
}

// reset drops the transport. The counter and last error stay readable until
// the next connect starts a fresh session.
func (s *session) reset() {
	s.conn = nil
}
