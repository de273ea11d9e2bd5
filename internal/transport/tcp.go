package transport

import (
	"fmt"
	"net"
	"sync"
)

// frameTerminator ends every GELF TCP payload. No length prefix.
const frameTerminator = 0x00

// TCP is a stream connection that dials lazily and redials
// transparently on the next Send after a dropped stream. The dispatch
// worker paces retry attempts; this type only owns the mechanics.
//
// The worker drives Send, but Close may arrive from another goroutine
// to sever a write wedged on a peer that never reads, so the stream
// handle is guarded by a mutex. Writes themselves happen on a captured
// local handle, outside the lock.
type TCP struct {
	opts      Options
	st        state
	closeOnce sync.Once
	closed    chan struct{}

	mu   sync.Mutex
	conn net.Conn
}

// NewTCP prepares a connection without dialing. The first Send (or an
// explicit Connect) establishes the stream.
func NewTCP(opts Options) *TCP {
	t := &TCP{opts: opts, closed: make(chan struct{})}
	t.st.set(Disconnected)
	return t
}

// Connect dials the endpoint, enforcing ConnectTimeout and applying
// the TCP socket hints. On failure the state moves to Failed and the
// error is returned; the caller decides when to retry. Safe to call
// concurrently: the first established stream wins, later ones are
// discarded.
func (t *TCP) Connect() error {
	if err := t.closedErr(); err != nil {
		return err
	}

	t.st.set(Connecting)
	conn, err := net.DialTimeout("tcp", t.opts.Addr, t.opts.ConnectTimeout)
	if err != nil {
		t.st.set(Failed)
		return fmt.Errorf("transport: tcp dial %s: %w", t.opts.Addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(t.opts.NoDelay)
		_ = tc.SetKeepAlive(t.opts.KeepAlive)
		if t.opts.SendBufferSize > 0 {
			_ = tc.SetWriteBuffer(t.opts.SendBufferSize)
		}
	}

	t.mu.Lock()
	if t.conn != nil {
		// Another Connect won the race; keep the live stream.
		t.mu.Unlock()
		conn.Close()
		return nil
	}
	select {
	case <-t.closed:
		t.mu.Unlock()
		conn.Close()
		return fmt.Errorf("transport: tcp %s: connection closed", t.opts.Addr)
	default:
	}
	t.conn = conn
	t.mu.Unlock()
	t.st.set(Connected)
	return nil
}

// stream returns the live handle, dialing first when there is none.
func (t *TCP) stream() (net.Conn, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn != nil {
		return conn, nil
	}
	if err := t.Connect(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	conn = t.conn
	t.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("transport: tcp %s: connection closed", t.opts.Addr)
	}
	return conn, nil
}

// Send writes the payload followed by the NUL terminator, dialing
// first if the stream is down. A write failure drops the stream,
// transitions to Disconnected, and is returned to the caller; the
// failed payload is not retried here.
func (t *TCP) Send(payload []byte) error {
	conn, err := t.stream()
	if err != nil {
		return err
	}

	framed := make([]byte, 0, len(payload)+1)
	framed = append(framed, payload...)
	framed = append(framed, frameTerminator)

	if _, err := conn.Write(framed); err != nil {
		t.drop(conn)
		return fmt.Errorf("transport: tcp send: %w", err)
	}
	return nil
}

// drop discards a failed stream. Close may already have taken the
// handle; only the matching one is cleared.
func (t *TCP) drop(conn net.Conn) {
	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
	}
	t.mu.Unlock()
	t.st.set(Disconnected)
	conn.Close()
}

// Close severs the stream, unblocking a Send wedged on a peer that
// never reads. Idempotent.
func (t *TCP) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		t.mu.Lock()
		conn := t.conn
		t.conn = nil
		t.mu.Unlock()
		t.st.set(Disconnected)
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

func (t *TCP) State() State {
	return t.st.get()
}

func (t *TCP) closedErr() error {
	select {
	case <-t.closed:
		return fmt.Errorf("transport: tcp %s: connection closed", t.opts.Addr)
	default:
		return nil
	}
}
