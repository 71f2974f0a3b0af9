package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// CableMagicSize and CableLenSize are the cable header's field widths.
const (
	CableMagicSize   = 6
	CableLenSize     = 8
	CableHeaderSize  = CableMagicSize + CableLenSize
	maxCableBodySize = 64 << 20 // sane cap against a hostile declared length
)

// CableMagic is the outer frame's constant tag. The source this protocol
// was distilled from used both ".cable" and "parcel" across revisions;
// ".cable" is the one this implementation speaks and accepts.
var CableMagic = [CableMagicSize]byte{'.', 'c', 'a', 'b', 'l', 'e'}

var (
	ErrCableMagic     = errors.New("wire: cable magic mismatch")
	ErrCableTooLarge  = errors.New("wire: declared cable length exceeds sane cap")
	ErrCableTruncated = errors.New("wire: cable shorter than its header")
)

// Send writes body (an already-encrypted wire's bytes) to w, framed with
// the cable magic and a little-endian total-length prefix.
func Send(w io.Writer, body []byte) error {
	var hdr [CableHeaderSize]byte
	copy(hdr[:CableMagicSize], CableMagic[:])
	binary.LittleEndian.PutUint64(hdr[CableMagicSize:], uint64(CableHeaderSize+len(body)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// Recv reads one cable frame from r: the fixed-size header first (to learn
// the total length and validate the magic), then the remainder. It returns
// the encrypted wire bytes (the cable body).
func Recv(r io.Reader) ([]byte, error) {
	var hdr [CableHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	if string(hdr[:CableMagicSize]) != string(CableMagic[:]) {
		return nil, ErrCableMagic
	}

	total := binary.LittleEndian.Uint64(hdr[CableMagicSize:])
	if total < CableHeaderSize {
		return nil, ErrCableTruncated
	}
	if total > maxCableBodySize {
		return nil, ErrCableTooLarge
	}

	body := make([]byte, total-CableHeaderSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}
