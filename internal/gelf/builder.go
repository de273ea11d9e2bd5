package gelf

import (
	"github.com/crimson-sun/flume/internal/model"
)

// BuildOptions carries the field-inclusion policy and the values
// resolved once at appender start.
type BuildOptions struct {
	HostName          string
	IncludeSource     bool
	IncludeMDC        bool
	IncludeStackTrace bool
	IncludeLevelName  bool
	StaticFields      []model.Field
}

// Build translates one log event into a GELF message. A nil event
// produces no message; callers skip silently.
func Build(ev *model.Event, opts BuildOptions) *Message {
	if ev == nil {
		return nil
	}

	m := NewMessage(opts.HostName, ev.Message, float64(ev.TimestampMillis)/1000.0, Severity(ev.Level))
	m.SetField("loggerName", ev.LoggerName)
	m.SetField("threadName", ev.ThreadName)

	if ev.Marker != "" {
		m.SetField("marker", ev.Marker)
	}

	if opts.IncludeMDC {
		// Insertion order defines precedence: later entries overwrite.
		for _, f := range ev.Context {
			m.SetField(f.Key, f.Value)
		}
	}

	if opts.IncludeSource && ev.Caller != nil {
		m.SetField("sourceFileName", ev.Caller.File)
		m.SetField("sourceMethodName", ev.Caller.Method)
		m.SetField("sourceClassName", ev.Caller.Class)
		m.SetField("sourceLineNumber", ev.Caller.Line)
	}

	if opts.IncludeStackTrace && ev.Thrown != nil {
		m.SetField("exceptionClass", ev.Thrown.Class)
		m.SetField("exceptionMessage", ev.Thrown.Message)
		m.SetField("exceptionStackTrace", ev.Thrown.StackTrace)
		m.FullMessage = ev.Message + "\n\n" + ev.Thrown.StackTrace
	}

	if opts.IncludeLevelName {
		m.SetField("levelName", ev.Level.String())
	}

	// Static configuration fields merge last and win over per-event ones.
	for _, f := range opts.StaticFields {
		m.SetField(f.Key, f.Value)
	}

	return m
}
