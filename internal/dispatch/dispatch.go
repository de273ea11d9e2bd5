// Package dispatch decouples log producers from the transport: a
// bounded multiple-producer/single-consumer queue drained by one
// worker goroutine that owns the connection exclusively.
package dispatch

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/crimson-sun/flume/internal/gelf"
	"github.com/crimson-sun/flume/internal/transport"
)

const (
	defaultQueueSize = 512
	drainTimeout     = 5 * time.Second
)

// Option configures a Queue.
type Option func(*Queue)

// WithQueueSize sets the bounded queue capacity. Default: 512.
func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.size = n
		}
	}
}

// WithReconnectDelay sets the fixed wait after a failed send before
// the worker attempts the next one. Default: 500ms.
func WithReconnectDelay(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.reconnectDelay = d
		}
	}
}

// WithOnError sets the callback invoked when a send fails. Default:
// logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(q *Queue) { q.errFunc = f }
}

// Queue is the bounded delivery pipeline. Enqueue never blocks the
// producer: when the queue is full the newest message is dropped and
// counted. The worker drains FIFO, serializes, and sends; a failed
// message is not re-enqueued (at-most-once), the connection's redial
// on the next send picks delivery back up.
type Queue struct {
	conn           transport.Conn
	ch             chan *gelf.Message
	stop           chan struct{}
	done           chan struct{}
	size           int
	reconnectDelay time.Duration
	errFunc        func(error)
	dropped        atomic.Uint64
	dropWarn       *rate.Limiter
	stopOnce       sync.Once
}

// New builds the queue and starts its worker goroutine.
func New(conn transport.Conn, opts ...Option) *Queue {
	q := &Queue{
		conn:           conn,
		size:           defaultQueueSize,
		reconnectDelay: 500 * time.Millisecond,
		errFunc:        func(err error) { slog.Warn("gelf send failed", "error", err) },
		dropWarn:       rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.ch = make(chan *gelf.Message, q.size)
	q.stop = make(chan struct{})
	q.done = make(chan struct{})
	go q.run()
	return q
}

// Enqueue hands a message to the worker without blocking. On overflow
// the message is dropped, the drop counter increments, and a
// rate-limited diagnostic is logged; reporting every drop would itself
// cause a log storm.
func (q *Queue) Enqueue(m *gelf.Message) {
	if m == nil {
		return
	}
	select {
	case q.ch <- m:
	default:
		q.dropped.Add(1)
		if q.dropWarn.Allow() {
			slog.Warn("gelf queue full, dropping messages", "dropped", q.dropped.Load())
		}
	}
}

// Dropped reports how many messages have been discarded on overflow.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Stop drains remaining messages best-effort within a grace period,
// then closes the connection. Safe to call more than once. A pending
// reconnect wait in the worker is interrupted promptly.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stop)
		select {
		case <-q.done:
		case <-time.After(drainTimeout):
			slog.Warn("gelf queue drain timed out", "remaining", len(q.ch))
		}
		q.conn.Close()
	})
}

// run is the worker loop: the only goroutine that touches the
// connection.
func (q *Queue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.stop:
			q.drain()
			return
		case m := <-q.ch:
			if !q.send(m) {
				// Fixed-delay pacing before the next attempt, no
				// busy loop, interruptible by Stop.
				select {
				case <-q.stop:
					q.drain()
					return
				case <-time.After(q.reconnectDelay):
				}
			}
		}
	}
}

// drain flushes whatever is still queued. Send failures here stop the
// drain: with the endpoint down, pushing the backlog through would
// only stall shutdown.
func (q *Queue) drain() {
	for {
		select {
		case m := <-q.ch:
			if !q.send(m) {
				return
			}
		default:
			return
		}
	}
}

// send serializes and ships one message, reporting failure through the
// error callback. Returns false when the send did not go through.
func (q *Queue) send(m *gelf.Message) bool {
	payload, err := m.Encode()
	if err != nil {
		q.errFunc(fmt.Errorf("dispatch: %w", err))
		return true // unencodable message, nothing to retry
	}
	if err := q.conn.Send(payload); err != nil {
		q.errFunc(err)
		return false
	}
	return true
}
