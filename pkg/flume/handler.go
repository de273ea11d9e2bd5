package flume

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
)

// HandlerOptions configures the slog bridge.
type HandlerOptions struct {
	// Level is the minimum level handled. Nil means slog.LevelInfo.
	Level slog.Leveler

	// Logger becomes the loggerName field. Blank means "slog".
	Logger string

	// AddSource attaches the caller location from the record's PC.
	AddSource bool
}

// Handler adapts a Sink to log/slog so the standard structured logger
// can ship straight to GELF:
//
//	app := flume.New(cfg)
//	app.Start()
//	slog.SetDefault(slog.New(flume.NewHandler(app, nil)))
//
// Attributes become context fields; an error-valued attribute also
// becomes the event's Thrown.
type Handler struct {
	sink   Sink
	opts   HandlerOptions
	attrs  []Field
	thrown *Thrown
	groups []string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler wraps a started Sink. opts may be nil for defaults.
func NewHandler(sink Sink, opts *HandlerOptions) *Handler {
	h := &Handler{sink: sink}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Logger == "" {
		h.opts.Logger = "slog"
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	ev := &Event{
		Level:           levelFromSlog(r.Level),
		Message:         r.Message,
		TimestampMillis: r.Time.UnixMilli(),
		LoggerName:      h.opts.Logger,
		ThreadName:      "goroutine",
		Thrown:          h.thrown,
	}

	ev.Context = append(ev.Context, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(ev, a)
		return true
	})

	if h.opts.AddSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		ev.Caller = &Caller{
			File:   f.File,
			Method: f.Function,
			Class:  packageOf(f.Function),
			Line:   f.Line,
		}
	}

	h.sink.Append(ev)
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]Field, len(h.attrs), len(h.attrs)+len(attrs))
	copy(clone.attrs, h.attrs)
	for _, a := range attrs {
		if err, ok := a.Value.Any().(error); ok && clone.thrown == nil {
			clone.thrown = ThrownFromError(err)
		}
		clone.attrs = append(clone.attrs, Field{Key: h.qualify(a.Key), Value: a.Value.String()})
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = make([]string, len(h.groups), len(h.groups)+1)
	copy(clone.groups, h.groups)
	clone.groups = append(clone.groups, name)
	return &clone
}

// appendAttr flattens one record attribute into the event. The first
// error-valued attribute also becomes the event's Thrown so stack
// traces flow through without explicit plumbing.
func (h *Handler) appendAttr(ev *Event, a slog.Attr) {
	if err, ok := a.Value.Any().(error); ok && ev.Thrown == nil {
		ev.Thrown = ThrownFromError(err)
	}
	ev.Context = append(ev.Context, Field{Key: h.qualify(a.Key), Value: a.Value.String()})
}

// qualify prefixes a key with the open group names, dot-separated.
func (h *Handler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

// levelFromSlog maps slog's sparse level scale onto Level.
func levelFromSlog(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// packageOf extracts the package path from a fully qualified function
// name like "github.com/acme/app/server.(*Worker).run".
func packageOf(fn string) string {
	if fn == "" {
		return ""
	}
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		if j := strings.Index(fn[i:], "."); j >= 0 {
			return fn[:i+j]
		}
	} else if j := strings.Index(fn, "."); j >= 0 {
		return fn[:j]
	}
	return fn
}
