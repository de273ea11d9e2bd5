package flume

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/crimson-sun/flume/internal/model"
)

// Config is the immutable transport and policy configuration for an
// Appender. Build one with DefaultConfig and adjust fields before
// Start; no component mutates it afterwards.
type Config struct {
	// Server and Port locate the GELF endpoint.
	Server string
	Port   int

	// HostName overrides the host field of every message. Blank means
	// the local machine's host name, falling back to "localhost".
	HostName string

	// Protocol is "UDP" or "TCP", case-insensitive. Unrecognized
	// values silently normalize to UDP.
	Protocol string

	IncludeSource     bool
	IncludeMDC        bool
	IncludeStackTrace bool
	IncludeLevelName  bool

	// QueueSize bounds the dispatch queue; overflowing messages are
	// dropped, never blocking the producer.
	QueueSize int

	ConnectTimeout time.Duration
	ReconnectDelay time.Duration

	// SendBufferSize hints the socket write buffer. <=0 keeps the OS
	// default.
	SendBufferSize int

	TCPNoDelay   bool
	TCPKeepAlive bool

	// AdditionalFields is a raw comma-separated "key=value" list of
	// static fields merged into every message, overriding same-named
	// per-event fields. Malformed entries are skipped with a warning.
	AdditionalFields string

	// OnError is the one-way diagnostic channel for send and append
	// failures. Nil means a slog warning.
	OnError func(error)
}

// DefaultConfig returns the conventional defaults: UDP to
// localhost:12201, source/MDC/stack-trace inclusion on, level name
// off, queue of 512, 1s connect timeout, 500ms reconnect delay.
func DefaultConfig() Config {
	return Config{
		Server:            "localhost",
		Port:              12201,
		Protocol:          "UDP",
		IncludeSource:     true,
		IncludeMDC:        true,
		IncludeStackTrace: true,
		QueueSize:         512,
		ConnectTimeout:    time.Second,
		ReconnectDelay:    500 * time.Millisecond,
	}
}

// validate checks the fields Start cannot default its way around.
func (c Config) validate() error {
	if c.Server == "" {
		return fmt.Errorf("flume: config: server must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("flume: config: invalid port %d", c.Port)
	}
	return nil
}

// withDefaults fills unset numeric fields so a zero-value Config still
// behaves.
func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 512
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = time.Second
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 500 * time.Millisecond
	}
	return c
}

// addr renders the endpoint as host:port.
func (c Config) addr() string {
	return net.JoinHostPort(c.Server, strconv.Itoa(c.Port))
}

// normalizeProtocol folds the configured protocol onto "UDP" or "TCP".
// Anything else is a configuration mistake but not fatal: it becomes
// UDP.
func normalizeProtocol(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TCP":
		return "TCP"
	default:
		return "UDP"
	}
}

// parseAdditionalFields parses "key=value,key=value". Entries without
// both a key and a value are logged as a warning and skipped.
func parseAdditionalFields(raw string) []model.Field {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var fields []model.Field
	for _, entry := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			slog.Warn("flume: skipping malformed additional field", "entry", entry)
			continue
		}
		fields = append(fields, model.Field{Key: key, Value: value})
	}
	return fields
}

// resolveHostName picks the message host field: the configured
// override if non-blank, else the machine host name, else the literal
// "localhost". Never fails.
func resolveHostName(override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "localhost"
}
