// Package keyexchange implements the pre-handshake key-exchange frames,
// the two-party client↔relay handshake, and the N-party ring rekey.
package keyexchange

import (
	"errors"
	"io"

	"github.com/zentalk/parcel/pkg/dhkey"
)

// Frame type discriminants for the 33-byte pre-handshake frame
// {1-byte type, 32-byte key}.
const (
	FrameClientPublic byte = iota
	FrameServerPublic
	FrameIntermediate
)

// FrameSize is the wire size of a key-exchange frame.
const FrameSize = 1 + dhkey.Size

var ErrUnexpectedFrameType = errors.New("keyexchange: unexpected frame type")

// Frame is the pre-handshake {type, 32-byte key} message used for the
// initial public-key exchange and for each ring-rekey intermediate value.
type Frame struct {
	Type byte
	Key  [dhkey.Size]byte
}

// WriteFrame writes f to w in its 33-byte wire layout.
func WriteFrame(w io.Writer, f Frame) error {
	var buf [FrameSize]byte
	buf[0] = f.Type
	copy(buf[1:], f.Key[:])
	_, err := w.Write(buf[:])
	return err
}

// ReadFrame reads one 33-byte key-exchange frame from r.
func ReadFrame(r io.Reader) (Frame, error) {
	var buf [FrameSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Frame{}, err
	}
	f := Frame{Type: buf[0]}
	copy(f.Key[:], buf[1:])
	return f, nil
}

// ReadFrameExpect reads a frame and verifies its type matches want.
func ReadFrameExpect(r io.Reader, want byte) (Frame, error) {
	f, err := ReadFrame(r)
	if err != nil {
		return Frame{}, err
	}
	if f.Type != want {
		return Frame{}, ErrUnexpectedFrameType
	}
	return f, nil
}
