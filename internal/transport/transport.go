// Package transport owns the live connection to the GELF endpoint.
// One Conn is driven by exactly one goroutine (the dispatch worker);
// only State is safe to observe from outside.
package transport

import (
	"sync/atomic"
	"time"
)

// State is the connection lifecycle state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Conn sends wire-ready payloads to the endpoint. Send applies the
// transport's own framing (NUL termination for TCP, chunking for UDP)
// and returns an explicit error on failure instead of panicking across
// the dispatch boundary. Close is idempotent.
type Conn interface {
	Send(payload []byte) error
	Close() error
	State() State
}

// Options configures a connection.
type Options struct {
	Addr           string // host:port
	ConnectTimeout time.Duration
	SendBufferSize int // <=0 leaves the OS default
	NoDelay        bool
	KeepAlive      bool
}

// state wraps the atomic lifecycle value shared by both transports.
type state struct {
	v atomic.Int32
}

func (s *state) set(st State) { s.v.Store(int32(st)) }
func (s *state) get() State   { return State(s.v.Load()) }
