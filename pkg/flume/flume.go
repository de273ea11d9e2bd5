package flume

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/crimson-sun/flume/internal/dispatch"
	"github.com/crimson-sun/flume/internal/gelf"
	"github.com/crimson-sun/flume/internal/transport"
)

// Sink is the capability the host framework drives. An Appender
// satisfies it; callers should depend on this interface rather than
// the concrete type.
type Sink interface {
	Start() error
	Append(*Event)
	Stop()
}

// Appender ships log events to a GELF endpoint. Append is the hot
// path: it builds the wire message and enqueues it, with no I/O and no
// blocking; a background worker owns the connection. Failures never
// propagate to the logging call site.
type Appender struct {
	cfg Config

	mu      sync.RWMutex
	started bool
	opts    gelf.BuildOptions
	conn    transport.Conn
	queue   *dispatch.Queue
	onError func(error)
}

var _ Sink = (*Appender)(nil)

// New creates an appender from the given configuration. Nothing is
// validated or connected until Start.
func New(cfg Config) *Appender {
	a := &Appender{cfg: cfg, onError: cfg.OnError}
	if a.onError == nil {
		a.onError = func(err error) { slog.Warn("flume: append failed", "error", err) }
	}
	return a
}

// Start validates the configuration, resolves the host name and static
// fields once, opens the transport, and starts the dispatch worker.
func (a *Appender) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return nil
	}

	cfg := a.cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}

	a.opts = gelf.BuildOptions{
		HostName:          resolveHostName(cfg.HostName),
		IncludeSource:     cfg.IncludeSource,
		IncludeMDC:        cfg.IncludeMDC,
		IncludeStackTrace: cfg.IncludeStackTrace,
		IncludeLevelName:  cfg.IncludeLevelName,
		StaticFields:      parseAdditionalFields(cfg.AdditionalFields),
	}

	topts := transport.Options{
		Addr:           cfg.addr(),
		ConnectTimeout: cfg.ConnectTimeout,
		SendBufferSize: cfg.SendBufferSize,
		NoDelay:        cfg.TCPNoDelay,
		KeepAlive:      cfg.TCPKeepAlive,
	}

	switch normalizeProtocol(cfg.Protocol) {
	case "TCP":
		tc := transport.NewTCP(topts)
		a.conn = tc
		// Begin the connect attempt without blocking Start; a failure
		// surfaces through OnError and the dispatch loop retries at
		// the reconnect interval.
		go func() {
			if err := tc.Connect(); err != nil {
				a.onError(err)
			}
		}()
	default:
		udp, err := transport.DialUDP(topts)
		if err != nil {
			return fmt.Errorf("flume: start: %w", err)
		}
		a.conn = udp
	}

	a.queue = dispatch.New(a.conn,
		dispatch.WithQueueSize(cfg.QueueSize),
		dispatch.WithReconnectDelay(cfg.ReconnectDelay),
		dispatch.WithOnError(a.onError),
	)
	a.started = true
	return nil
}

// Append builds a GELF message from the event and enqueues it. A nil
// event is a silent no-op; appending before Start or after Stop is a
// reported no-op. Every failure, including a panic while building, is
// absorbed and reported through OnError; nothing ever reaches the
// caller's logging call site.
func (a *Appender) Append(e *Event) {
	if e == nil {
		return
	}

	a.mu.RLock()
	started, opts, queue, report := a.started, a.opts, a.queue, a.onError
	a.mu.RUnlock()

	if !started {
		report(fmt.Errorf("flume: append %q: appender not started", e.Message))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			report(fmt.Errorf("flume: append %q: %v", e.Message, r))
		}
	}()

	queue.Enqueue(gelf.Build(e.toModel(), opts))
}

// Stop drains the queue best-effort within a bounded grace period and
// closes the connection. Idempotent; Append afterwards is a reported
// no-op.
func (a *Appender) Stop() {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return
	}
	a.started = false
	queue := a.queue
	a.mu.Unlock()

	queue.Stop()
}

// Dropped reports how many messages were discarded because the queue
// was full.
func (a *Appender) Dropped() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.queue == nil {
		return 0
	}
	return a.queue.Dropped()
}

// State reports the transport connection state, mainly for
// diagnostics and tests.
func (a *Appender) State() transport.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.conn == nil {
		return transport.Disconnected
	}
	return a.conn.State()
}
