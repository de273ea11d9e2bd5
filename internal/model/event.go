package model

import (
	"errors"
	"fmt"
	"strings"
)

// Level represents the severity of a log event, ordered from least to
// most severe.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
	Fatal
)

// String returns the uppercase name of the level. Out-of-range values
// render as "UNKNOWN".
func (l Level) String() string {
	if l < Trace || l > Fatal {
		return "UNKNOWN"
	}
	return [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}[l]
}

// ParseLevel converts a string (case-insensitive) to a Level.
// Unknown strings default to Info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return Trace
	case "DEBUG":
		return Debug
	case "WARN", "WARNING":
		return Warn
	case "ERROR":
		return Error
	case "FATAL", "CRITICAL":
		return Fatal
	default:
		return Info
	}
}

// Field is one contextual key/value pair. Context is a slice rather
// than a map so that insertion order is preserved: when two entries
// share a key, the later one wins.
type Field struct {
	Key   string
	Value string
}

// Caller identifies the innermost frame that produced an event.
// Class holds the owning type where the runtime has one; for Go
// callers it is the package path.
type Caller struct {
	File   string
	Method string
	Class  string
	Line   int
}

// Thrown carries error information attached to an event. StackTrace is
// the conventional multi-line rendering: "class: message" followed by
// "\tat frame" lines and "Caused by:" sections for wrapped causes.
type Thrown struct {
	Class      string
	Message    string
	StackTrace string
}

// Event is one structured log event as handed over by the host
// framework. It is read-only to everything downstream.
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

// ThrownFromError builds a Thrown from a Go error, rendering the
// unwrap chain as "Caused by:" sections.
func ThrownFromError(err error) *Thrown {
	if err == nil {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%T: %s", err, err.Error())
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(&b, "\nCaused by: %T: %s", cause, cause.Error())
	}
	return &Thrown{
		Class:      fmt.Sprintf("%T", err),
		Message:    err.Error(),
		StackTrace: b.String(),
	}
}
