// Package payload implements the typed sub-formats carried inside a wire's
// data region: text, file, stat, ctrl, and session-key. Rather than the
// token-pasting macros the protocol this was distilled from used to mint
// near-identical structs, every payload shares one generic envelope —
// {sub-type byte, 8-byte little-endian inner length, type-specific fixed
// fields, variable trailing bytes} — described once here and reused by
// each concrete type.
package payload

import (
	"encoding/binary"
	"errors"
)

// EnvelopeHeaderSize is the size of the {sub-type, length} prefix shared
// by every typed payload.
const EnvelopeHeaderSize = 1 + 8

var ErrTruncated = errors.New("payload: buffer shorter than its declared envelope")

// Envelope is the {sub-type, length} pair every typed payload begins with.
type Envelope struct {
	SubType byte
	Length  uint64
}

// encodeEnvelope serializes the shared header.
func encodeEnvelope(e Envelope) []byte {
	buf := make([]byte, EnvelopeHeaderSize)
	buf[0] = e.SubType
	binary.LittleEndian.PutUint64(buf[1:], e.Length)
	return buf
}

// decodeEnvelope parses the shared header and returns the remaining bytes.
func decodeEnvelope(buf []byte) (Envelope, []byte, error) {
	if len(buf) < EnvelopeHeaderSize {
		return Envelope{}, nil, ErrTruncated
	}
	e := Envelope{
		SubType: buf[0],
		Length:  binary.LittleEndian.Uint64(buf[1:EnvelopeHeaderSize]),
	}
	return e, buf[EnvelopeHeaderSize:], nil
}

// fixedField copies s into a zero-padded field of width n, truncating if
// s is longer (the username and filename fields are fixed-width caps).
func fixedField(s []byte, n int) []byte {
	field := make([]byte, n)
	copy(field, s)
	return field
}

// trimField trims trailing NUL bytes from a fixed-width field, returning
// the logical (variable-length) string it carries.
func trimField(field []byte) []byte {
	i := len(field)
	for i > 0 && field[i-1] == 0 {
		i--
	}
	return field[:i]
}
