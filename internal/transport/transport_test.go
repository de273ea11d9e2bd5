package transport

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUDPSendDeliversDatagram(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	u, err := DialUDP(Options{Addr: pc.LocalAddr().String(), ConnectTimeout: time.Second})
	require.NoError(t, err)
	defer u.Close()
	assert.Equal(t, Connected, u.State())

	payload := []byte(`{"version":"1.1","short_message":"hi"}`)
	require.NoError(t, u.Send(payload))

	buf := make([]byte, 2048)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[:n])
}

func TestUDPSendChunksOversizedPayload(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	u, err := DialUDP(Options{Addr: pc.LocalAddr().String(), ConnectTimeout: time.Second})
	require.NoError(t, err)
	defer u.Close()

	payload := bytes.Repeat([]byte("a"), 3000)
	require.NoError(t, u.Send(payload))

	buf := make([]byte, 4096)
	var got int
	for i := 0; i < 3; i++ {
		pc.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _, err := pc.ReadFrom(buf)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 12)
		assert.Equal(t, byte(0x1e), buf[0])
		assert.Equal(t, byte(0x0f), buf[1])
		got += n - 12
	}
	assert.Equal(t, len(payload), got)
}

func TestUDPCloseIdempotent(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	u, err := DialUDP(Options{Addr: pc.LocalAddr().String(), ConnectTimeout: time.Second})
	require.NoError(t, err)
	require.NoError(t, u.Close())
	require.NoError(t, u.Close())
	assert.Equal(t, Disconnected, u.State())
}

// acceptAndReadFrames accepts one connection and sends each
// NUL-terminated frame it reads to the returned channel.
func acceptAndReadFrames(t *testing.T, ln net.Listener) <-chan []byte {
	t.Helper()
	frames := make(chan []byte, 16)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var buf []byte
		tmp := make([]byte, 4096)
		for {
			n, err := conn.Read(tmp)
			if n > 0 {
				buf = append(buf, tmp[:n]...)
				for {
					i := bytes.IndexByte(buf, 0x00)
					if i < 0 {
						break
					}
					frame := make([]byte, i)
					copy(frame, buf[:i])
					frames <- frame
					buf = buf[i+1:]
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return frames
}

func TestTCPSendFramesWithNUL(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	frames := acceptAndReadFrames(t, ln)

	tc := NewTCP(Options{Addr: ln.Addr().String(), ConnectTimeout: time.Second, NoDelay: true})
	defer tc.Close()
	assert.Equal(t, Disconnected, tc.State())

	require.NoError(t, tc.Send([]byte(`{"short_message":"one"}`)))
	require.NoError(t, tc.Send([]byte(`{"short_message":"two"}`)))
	assert.Equal(t, Connected, tc.State())

	select {
	case f := <-frames:
		assert.Equal(t, []byte(`{"short_message":"one"}`), f)
	case <-time.After(2 * time.Second):
		t.Fatal("first frame not received")
	}
	select {
	case f := <-frames:
		assert.Equal(t, []byte(`{"short_message":"two"}`), f)
	case <-time.After(2 * time.Second):
		t.Fatal("second frame not received")
	}
}

func TestTCPConnectFailureThenRecovery(t *testing.T) {
	// Reserve a port, then close the listener so the dial fails.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	tc := NewTCP(Options{Addr: addr, ConnectTimeout: 500 * time.Millisecond})
	defer tc.Close()

	err = tc.Send([]byte("down"))
	require.Error(t, err)
	assert.Equal(t, Failed, tc.State())

	// Endpoint comes back on the same port: the next send redials.
	ln, err = net.Listen("tcp", addr)
	require.NoError(t, err)
	defer ln.Close()
	frames := acceptAndReadFrames(t, ln)

	require.NoError(t, tc.Send([]byte("back up")))
	assert.Equal(t, Connected, tc.State())

	select {
	case f := <-frames:
		assert.Equal(t, []byte("back up"), f)
	case <-time.After(2 * time.Second):
		t.Fatal("frame not received after recovery")
	}
}

func TestTCPCloseIdempotentAndTerminal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	tc := NewTCP(Options{Addr: ln.Addr().String(), ConnectTimeout: time.Second})
	require.NoError(t, tc.Connect())
	require.NoError(t, tc.Close())
	require.NoError(t, tc.Close())
	assert.Equal(t, Disconnected, tc.State())

	// A closed connection refuses to redial.
	assert.Error(t, tc.Connect())
}

func TestTCPCloseUnblocksWedgedSend(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// Accept and hold the connection without ever reading, so the
	// kernel buffers fill and the writer wedges inside Send.
	hold := make(chan struct{})
	t.Cleanup(func() { close(hold) })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		<-hold
	}()

	tc := NewTCP(Options{Addr: ln.Addr().String(), ConnectTimeout: time.Second, SendBufferSize: 4096})

	payload := bytes.Repeat([]byte("w"), 1<<20)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 64; i++ {
			if tc.Send(payload) != nil {
				return
			}
		}
	}()

	// Give the writer time to wedge, then sever the stream from this
	// goroutine, the way a facade Stop does after its grace period.
	time.Sleep(300 * time.Millisecond)
	require.NoError(t, tc.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Send did not unblock after Close")
	}
	assert.Equal(t, Disconnected, tc.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(9).String())
}
