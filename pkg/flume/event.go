package flume

import (
	"github.com/crimson-sun/flume/internal/model"
)

// Level is the severity of a log event, least to most severe.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the uppercase level name.
func (l Level) String() string {
	return model.Level(l).String()
}

// ParseLevel converts a level name (case-insensitive) to a Level.
// Unknown names default to LevelInfo.
func ParseLevel(s string) Level {
	return Level(model.ParseLevel(s))
}

// Field is one contextual key/value pair. Fields are ordered: when two
// share a key, the later one wins.
type Field struct {
	Key   string
	Value string
}

// Caller identifies the frame that produced an event.
type Caller struct {
	File   string
	Method string
	Class  string
	Line   int
}

// Thrown carries error information: the error's type name, message,
// and a formatted multi-line stack trace with "Caused by:" sections.
type Thrown struct {
	Class      string
	Message    string
	StackTrace string
}

// Event is one structured log event. Message and TimestampMillis are
// mandatory; everything else is optional metadata.
type Event struct {
	Level           Level
	Message         string
	TimestampMillis int64
	LoggerName      string
	ThreadName      string
	Marker          string
	Context         []Field
	Caller          *Caller
	Thrown          *Thrown
}

// ThrownFromError renders a Go error chain as a Thrown, one
// "Caused by:" line per wrapped cause.
func ThrownFromError(err error) *Thrown {
	t := model.ThrownFromError(err)
	if t == nil {
		return nil
	}
	return &Thrown{Class: t.Class, Message: t.Message, StackTrace: t.StackTrace}
}

// toModel converts the public event into the internal model consumed
// by the builder.
func (e *Event) toModel() *model.Event {
	if e == nil {
		return nil
	}
	ev := &model.Event{
		Level:           model.Level(e.Level),
		Message:         e.Message,
		TimestampMillis: e.TimestampMillis,
		LoggerName:      e.LoggerName,
		ThreadName:      e.ThreadName,
		Marker:          e.Marker,
	}
	if len(e.Context) > 0 {
		ev.Context = make([]model.Field, len(e.Context))
		for i, f := range e.Context {
			ev.Context[i] = model.Field{Key: f.Key, Value: f.Value}
		}
	}
	if e.Caller != nil {
		ev.Caller = &model.Caller{
			File:   e.Caller.File,
			Method: e.Caller.Method,
			Class:  e.Caller.Class,
			Line:   e.Caller.Line,
		}
	}
	if e.Thrown != nil {
		ev.Thrown = &model.Thrown{
			Class:      e.Thrown.Class,
			Message:    e.Thrown.Message,
			StackTrace: e.Thrown.StackTrace,
		}
	}
	return ev
}
