package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/flume/pkg/flume"
)

func TestParsePlainLine(t *testing.T) {
	p := NewParser()
	ev := p.Parse("something happened")
	require.NotNil(t, ev)
	assert.Equal(t, flume.LevelInfo, ev.Level)
	assert.Equal(t, "something happened", ev.Message)
	assert.InDelta(t, time.Now().UnixMilli(), ev.TimestampMillis, 2000)
}

func TestParseBlankLine(t *testing.T) {
	p := NewParser()
	assert.Nil(t, p.Parse(""))
	assert.Nil(t, p.Parse("   "))
}

func TestParseJSONLine(t *testing.T) {
	p := NewParser()
	ev := p.Parse(`{"level":"error","message":"db down","logger":"app.db","region":"eu-1","attempt":3}`)
	require.NotNil(t, ev)
	assert.Equal(t, flume.LevelError, ev.Level)
	assert.Equal(t, "db down", ev.Message)
	assert.Equal(t, "app.db", ev.LoggerName)

	ctx := map[string]string{}
	for _, f := range ev.Context {
		ctx[f.Key] = f.Value
	}
	assert.Equal(t, "eu-1", ctx["region"])
	assert.Equal(t, "3", ctx["attempt"])
	// Core keys never leak into the context.
	assert.NotContains(t, ctx, "level")
	assert.NotContains(t, ctx, "message")
}

func TestParseJSONMsgAlias(t *testing.T) {
	p := NewParser()
	ev := p.Parse(`{"level":"warn","msg":"short form"}`)
	require.NotNil(t, ev)
	assert.Equal(t, flume.LevelWarn, ev.Level)
	assert.Equal(t, "short form", ev.Message)
}

func TestParseJSONTimestamps(t *testing.T) {
	p := NewParser()

	ev := p.Parse(`{"msg":"millis","timestamp":1712345678901}`)
	require.NotNil(t, ev)
	assert.Equal(t, int64(1712345678901), ev.TimestampMillis)

	ev = p.Parse(`{"msg":"seconds","timestamp":1712345678.5}`)
	require.NotNil(t, ev)
	assert.Equal(t, int64(1712345678500), ev.TimestampMillis)

	ev = p.Parse(`{"msg":"rfc3339","time":"2024-04-05T17:34:38.901Z"}`)
	require.NotNil(t, ev)
	assert.Equal(t, time.Date(2024, 4, 5, 17, 34, 38, 901e6, time.UTC).UnixMilli(), ev.TimestampMillis)
}

func TestParseMalformedJSONShipsAsPlainText(t *testing.T) {
	p := NewParser()
	ev := p.Parse(`{"broken": `)
	require.NotNil(t, ev)
	assert.Equal(t, flume.LevelInfo, ev.Level)
	assert.Equal(t, `{"broken":`, ev.Message)
}

func TestParseJSONWithoutMessageShipsAsPlainText(t *testing.T) {
	p := NewParser()
	ev := p.Parse(`{"level":"info"}`)
	require.NotNil(t, ev)
	assert.Equal(t, `{"level":"info"}`, ev.Message)
}
