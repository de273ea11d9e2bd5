// Package ingest turns raw log lines into events for the shipper
// binary. JSON lines are decoded field-by-field; anything else becomes
// a plain Info event.
package ingest

import (
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/crimson-sun/flume/pkg/flume"
)

// Well-known keys looked up in JSON lines. Remaining string and number
// members land in the event context verbatim.
var coreKeys = map[string]bool{
	"level":     true,
	"message":   true,
	"msg":       true,
	"timestamp": true,
	"time":      true,
	"logger":    true,
}

// Parser converts lines to events. Safe for sequential reuse; the
// shipper binary reads stdin from a single goroutine.
type Parser struct {
	pool fastjson.ParserPool
}

func NewParser() *Parser {
	return &Parser{}
}

// Parse converts one line. Blank lines yield nil. Malformed JSON is
// not an error: the line ships as-is with Info severity, so a mixed
// stream never loses data.
func (ps *Parser) Parse(line string) *flume.Event {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, "{") {
		if ev := ps.parseJSON(line); ev != nil {
			return ev
		}
	}
	return &flume.Event{
		Level:           flume.LevelInfo,
		Message:         line,
		TimestampMillis: time.Now().UnixMilli(),
	}
}

func (ps *Parser) parseJSON(line string) *flume.Event {
	p := ps.pool.Get()
	defer ps.pool.Put(p)

	v, err := p.Parse(line)
	if err != nil || v.Type() != fastjson.TypeObject {
		return nil
	}
	obj, err := v.Object()
	if err != nil {
		return nil
	}

	msg := str(v, "message")
	if msg == "" {
		msg = str(v, "msg")
	}
	if msg == "" {
		return nil
	}

	ev := &flume.Event{
		Level:           flume.ParseLevel(str(v, "level")),
		Message:         msg,
		TimestampMillis: timestampMillis(v),
		LoggerName:      str(v, "logger"),
	}

	obj.Visit(func(key []byte, val *fastjson.Value) {
		k := string(key)
		if coreKeys[k] {
			return
		}
		switch val.Type() {
		case fastjson.TypeString:
			ev.Context = append(ev.Context, flume.Field{Key: k, Value: string(val.GetStringBytes())})
		case fastjson.TypeNumber, fastjson.TypeTrue, fastjson.TypeFalse:
			ev.Context = append(ev.Context, flume.Field{Key: k, Value: val.String()})
		}
	})
	return ev
}

func str(v *fastjson.Value, key string) string {
	return string(v.GetStringBytes(key))
}

// timestampMillis accepts epoch milliseconds, epoch seconds, or an
// RFC3339 string under "timestamp"/"time"; anything else means now.
func timestampMillis(v *fastjson.Value) int64 {
	for _, key := range []string{"timestamp", "time"} {
		tv := v.Get(key)
		if tv == nil {
			continue
		}
		switch tv.Type() {
		case fastjson.TypeNumber:
			n := tv.GetFloat64()
			if n > 1e12 { // already milliseconds
				return int64(n)
			}
			return int64(n * 1000)
		case fastjson.TypeString:
			if t, err := time.Parse(time.RFC3339Nano, string(tv.GetStringBytes())); err == nil {
				return t.UnixMilli()
			}
		}
	}
	return time.Now().UnixMilli()
}
