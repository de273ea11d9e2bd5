// Package gelf builds and serializes GELF (Graylog Extended Log
// Format) messages: a JSON payload with a fixed core field set plus
// arbitrary additional fields, chunked for UDP transports when it
// exceeds the safe datagram size.
package gelf

import (
	"encoding/json"
	"fmt"
)

// Version is the GELF spec version written into every payload.
const Version = "1.1"

// Message is one wire-ready log record. Additional field names are
// stored unprefixed; the underscore prefix required by GELF is applied
// during serialization. Build once, serialize, discard.
type Message struct {
	Host         string
	ShortMessage string
	FullMessage  string
	Timestamp    float64 // seconds since epoch, millisecond precision
	Level        int     // syslog severity, 0-7
	fields       map[string]any
}

// NewMessage creates a message with the mandatory core fields.
func NewMessage(host, shortMessage string, timestamp float64, level int) *Message {
	return &Message{
		Host:         host,
		ShortMessage: shortMessage,
		Timestamp:    timestamp,
		Level:        level,
		fields:       make(map[string]any),
	}
}

// SetField records an additional field. Same-named fields overwrite.
// The reserved name "id" is silently refused, as the GELF spec forbids
// an _id field.
func (m *Message) SetField(key string, value any) {
	if key == "id" || key == "" {
		return
	}
	m.fields[key] = value
}

// Field returns an additional field's value, or nil when unset.
func (m *Message) Field(key string) any {
	return m.fields[key]
}

// FieldCount reports the number of additional fields.
func (m *Message) FieldCount() int {
	return len(m.fields)
}

// MarshalJSON serializes the message as a GELF payload: core keys at
// the top level, every additional field prefixed with an underscore.
func (m *Message) MarshalJSON() ([]byte, error) {
	payload := make(map[string]any, len(m.fields)+6)
	payload["version"] = Version
	payload["host"] = m.Host
	payload["short_message"] = m.ShortMessage
	payload["timestamp"] = m.Timestamp
	payload["level"] = m.Level
	if m.FullMessage != "" {
		payload["full_message"] = m.FullMessage
	}
	for k, v := range m.fields {
		payload["_"+k] = v
	}
	return json.Marshal(payload)
}

// Encode returns the UTF-8 JSON wire payload.
func (m *Message) Encode() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("gelf: encode: %w", err)
	}
	return b, nil
}
