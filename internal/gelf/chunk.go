package gelf

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// SafeDatagramSize is the conservative per-datagram payload limit
	// used before chunking kicks in. 1420 bytes fits an Ethernet MTU
	// with IP and UDP headers subtracted.
	SafeDatagramSize = 1420

	// MaxChunks is the hard limit imposed by the GELF chunk header's
	// 1-byte count field.
	MaxChunks = 128

	chunkHeaderSize = 12
)

var chunkMagic = []byte{0x1e, 0x0f}

// Chunk splits a payload into GELF chunks of at most size body bytes
// each: 2 magic bytes, an 8-byte message id shared across the chunks,
// a 1-byte sequence number and a 1-byte total count, then the slice of
// the payload. Payloads that already fit are returned as a single
// unchunked datagram. Payloads needing more than MaxChunks chunks are
// a local send error.
func Chunk(payload []byte, size int) ([][]byte, error) {
	if size <= 0 {
		size = SafeDatagramSize
	}
	if len(payload) <= size {
		return [][]byte{payload}, nil
	}

	body := size - chunkHeaderSize
	count := (len(payload) + body - 1) / body
	if count > MaxChunks {
		return nil, fmt.Errorf("gelf: message of %d bytes needs %d chunks, limit is %d", len(payload), count, MaxChunks)
	}

	id := messageID()
	chunks := make([][]byte, 0, count)
	for seq := 0; seq < count; seq++ {
		start := seq * body
		end := start + body
		if end > len(payload) {
			end = len(payload)
		}
		chunk := make([]byte, 0, chunkHeaderSize+end-start)
		chunk = append(chunk, chunkMagic...)
		chunk = append(chunk, id[:]...)
		chunk = append(chunk, byte(seq), byte(count))
		chunk = append(chunk, payload[start:end]...)
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// messageID returns the 8 random bytes identifying one chunked message.
func messageID() [8]byte {
	u := uuid.New()
	var id [8]byte
	copy(id[:], u[:8])
	return id
}
