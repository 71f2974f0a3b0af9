// Package wire implements the canonical authenticated, encrypted message
// envelope: build, serialize, encrypt, MAC, receive, verify, and decrypt.
package wire

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
)

// Field sizes, in declared wire order.
const (
	MacSize    = 16
	IVSize     = 16
	HeaderSize = signatureSize + 8 /* wire_len */ + 1 /* alignment */ + 1 /* type */

	signatureSize = 6

	// AuthAndHeaderSize is the fixed overhead preceding the (aligned) data
	// region: mac_outer + mac_inner + iv + header.
	AuthAndHeaderSize = MacSize + MacSize + IVSize + HeaderSize
)

// Signature is the constant magic carried inside the header, and thus
// encrypted on the wire.
var Signature = [signatureSize]byte{'-', 'w', 'i', 'r', 'e', '-'}

// Type discriminates the payload carried in Data.
type Type uint8

const (
	TypeText Type = iota
	TypeFile
	TypeCtrl
	TypeStat
	TypeSessionKey
)

var (
	ErrPayloadTooLarge   = errors.New("wire: payload exceeds maximum size")
	ErrTruncated         = errors.New("wire: buffer shorter than the fixed-size fields it must hold")
	ErrInvalidAlignment  = errors.New("wire: alignment byte has non-zero upper bits")
	ErrSignatureMismatch = errors.New("wire: header signature does not match magic")
	ErrLengthMismatch    = errors.New("wire: wire_len does not match received length")
)

// maxPayload bounds payload_len so wire_len (and thus aligned_data_len)
// cannot overflow or exceed sane limits; generous enough for the ~2GiB file
// payload cap in §3.
const maxPayload = 1 << 31

// Header is the 16-byte {signature, wire_len, alignment, type} tuple, the
// first AES block the codec encrypts.
type Header struct {
	Signature [signatureSize]byte
	WireLen   uint64
	Alignment uint8
	Type      Type
}

// Encode serializes the header to its 16-byte little-endian wire layout.
func (h *Header) Encode() [HeaderSize]byte {
	var buf [HeaderSize]byte
	copy(buf[0:signatureSize], h.Signature[:])
	binary.LittleEndian.PutUint64(buf[signatureSize:signatureSize+8], h.WireLen)
	buf[signatureSize+8] = h.Alignment
	buf[signatureSize+9] = byte(h.Type)
	return buf
}

// DecodeHeader parses a 16-byte header. It does not validate the signature
// or alignment upper bits; callers (wire.Decrypt) do that after choosing
// the correct key.
func DecodeHeader(buf []byte) (Header, error) {
	var h Header
	if len(buf) < HeaderSize {
		return h, ErrTruncated
	}
	copy(h.Signature[:], buf[0:signatureSize])
	h.WireLen = binary.LittleEndian.Uint64(buf[signatureSize : signatureSize+8])
	h.Alignment = buf[signatureSize+8]
	h.Type = Type(buf[signatureSize+9])
	return h, nil
}

// Wire is the in-memory envelope: the two MAC tags, the IV, the raw header
// bytes, and the raw (aligned) data bytes. HeaderBytes and Data hold
// plaintext before Encrypt and ciphertext after; Decrypt restores them to
// plaintext in place.
type Wire struct {
	MacOuter    [MacSize]byte
	MacInner    [MacSize]byte
	IV          [IVSize]byte
	HeaderBytes [HeaderSize]byte
	Data        []byte
}

// roundUp16 rounds n up to the next multiple of 16.
func roundUp16(n int) int {
	return (n + 15) &^ 15
}

// Init builds a zeroed wire sized for payload, fills a random IV, and
// copies payload into the (zero-padded) data region. wire_len and
// alignment are computed per §4.4.
func Init(typ Type, payload []byte) (*Wire, error) {
	if len(payload) > maxPayload {
		return nil, ErrPayloadTooLarge
	}

	aligned := roundUp16(len(payload))
	alignment := aligned - len(payload)

	w := &Wire{
		Data: make([]byte, aligned),
	}
	if _, err := rand.Read(w.IV[:]); err != nil {
		return nil, err
	}
	copy(w.Data, payload)

	h := Header{
		Signature: Signature,
		WireLen:   uint64(AuthAndHeaderSize + aligned),
		Alignment: uint8(alignment),
		Type:      typ,
	}
	w.HeaderBytes = h.Encode()

	return w, nil
}

// Len returns the total wire length this value would serialize to.
func (w *Wire) Len() int {
	return AuthAndHeaderSize + len(w.Data)
}

// Bytes serializes the wire in its on-wire field order: mac_outer,
// mac_inner, iv, header, data.
func (w *Wire) Bytes() []byte {
	buf := make([]byte, w.Len())
	off := 0
	copy(buf[off:], w.MacOuter[:])
	off += MacSize
	copy(buf[off:], w.MacInner[:])
	off += MacSize
	copy(buf[off:], w.IV[:])
	off += IVSize
	copy(buf[off:], w.HeaderBytes[:])
	off += HeaderSize
	copy(buf[off:], w.Data)
	return buf
}

// Parse reconstructs a Wire from its on-wire byte layout. It performs no
// decryption or validation beyond checking the buffer is large enough to
// hold the fixed-size prefix; the data region is whatever remains.
func Parse(buf []byte) (*Wire, error) {
	if len(buf) < AuthAndHeaderSize {
		return nil, ErrTruncated
	}
	w := &Wire{}
	off := 0
	copy(w.MacOuter[:], buf[off:off+MacSize])
	off += MacSize
	copy(w.MacInner[:], buf[off:off+MacSize])
	off += MacSize
	copy(w.IV[:], buf[off:off+IVSize])
	off += IVSize
	copy(w.HeaderBytes[:], buf[off:off+HeaderSize])
	off += HeaderSize
	w.Data = append([]byte(nil), buf[off:]...)
	return w, nil
}

// headerSlice returns the mutable view over HeaderBytes, the span the CBC
// context encrypts/decrypts first and mac_inner authenticates.
func (w *Wire) headerSlice() []byte { return w.HeaderBytes[:] }
