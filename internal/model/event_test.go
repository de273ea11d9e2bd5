package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "TRACE", Trace.String())
	assert.Equal(t, "DEBUG", Debug.String())
	assert.Equal(t, "INFO", Info.String())
	assert.Equal(t, "WARN", Warn.String())
	assert.Equal(t, "ERROR", Error.String())
	assert.Equal(t, "FATAL", Fatal.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]Level{
		"trace":    Trace,
		"DEBUG":    Debug,
		"Info":     Info,
		"warn":     Warn,
		"WARNING":  Warn,
		"error":    Error,
		"fatal":    Fatal,
		"critical": Fatal,
		"bogus":    Info,
		"":         Info,
	} {
		assert.Equal(t, want, ParseLevel(name), "input %q", name)
	}
}

func TestThrownFromError(t *testing.T) {
	root := errors.New("disk full")
	wrapped := fmt.Errorf("flush failed: %w", root)

	th := ThrownFromError(wrapped)
	require.NotNil(t, th)
	assert.Equal(t, "flush failed: disk full", th.Message)
	assert.Contains(t, th.StackTrace, "flush failed: disk full")
	assert.Contains(t, th.StackTrace, "Caused by:")
	assert.Contains(t, th.StackTrace, "disk full")
}

func TestThrownFromNilError(t *testing.T) {
	assert.Nil(t, ThrownFromError(nil))
}
