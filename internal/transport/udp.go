package transport

import (
	"fmt"
	"net"
	"sync"

	"github.com/crimson-sun/flume/internal/gelf"
)

// UDP is a fire-and-forget datagram connection. There is no connection
// state beyond socket creation; failures are local send errors such as
// oversized messages.
type UDP struct {
	opts      Options
	conn      net.Conn
	st        state
	closeOnce sync.Once
}

// DialUDP creates the socket up front. Resolution errors surface here;
// after that Send never reports remote delivery status.
func DialUDP(opts Options) (*UDP, error) {
	u := &UDP{opts: opts}
	u.st.set(Connecting)
	conn, err := net.DialTimeout("udp", opts.Addr, opts.ConnectTimeout)
	if err != nil {
		u.st.set(Failed)
		return nil, fmt.Errorf("transport: udp dial %s: %w", opts.Addr, err)
	}
	if uc, ok := conn.(*net.UDPConn); ok && opts.SendBufferSize > 0 {
		// Best effort; a refused buffer hint is not a send failure.
		_ = uc.SetWriteBuffer(opts.SendBufferSize)
	}
	u.conn = conn
	u.st.set(Connected)
	return u, nil
}

// Send writes the payload as one datagram, or as GELF chunks when it
// exceeds the safe datagram size.
func (u *UDP) Send(payload []byte) error {
	chunks, err := gelf.Chunk(payload, gelf.SafeDatagramSize)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if _, err := u.conn.Write(c); err != nil {
			return fmt.Errorf("transport: udp send: %w", err)
		}
	}
	return nil
}

func (u *UDP) Close() error {
	var err error
	u.closeOnce.Do(func() {
		u.st.set(Disconnected)
		err = u.conn.Close()
	})
	return err
}

func (u *UDP) State() State {
	return u.st.get()
}
