package payload

import (
	"encoding/binary"
	"errors"
)

// Ctrl sub-types.
const (
	CtrlExit byte = iota
	CtrlDHKE
)

// ControlKeySize is the size of the renewed control key carried by a
// CtrlDHKE message.
const ControlKeySize = 32

var ErrInvalidCtrlKey = errors.New("payload: ctrl dhke key must be ControlKeySize bytes")

// Ctrl carries a relay-originated control message: either a graceful exit
// instruction, or the start-of-rekey announcement (remaining DH rounds and
// the renewed control key).
type Ctrl struct {
	SubType    byte
	Rounds     uint16
	RenewedKey [ControlKeySize]byte
}

// Encode serializes c into {sub-type, length, rounds, renewed-key (dhke only)}.
func (c *Ctrl) Encode() []byte {
	var trailing []byte
	if c.SubType == CtrlDHKE {
		trailing = c.RenewedKey[:]
	}

	env := encodeEnvelope(Envelope{SubType: c.SubType, Length: uint64(len(trailing))})
	buf := make([]byte, 0, len(env)+2+len(trailing))
	buf = append(buf, env...)

	var rounds [2]byte
	binary.LittleEndian.PutUint16(rounds[:], c.Rounds)
	buf = append(buf, rounds[:]...)
	buf = append(buf, trailing...)
	return buf
}

// DecodeCtrl parses a Ctrl payload from its wire data region.
func DecodeCtrl(buf []byte) (*Ctrl, error) {
	env, rest, err := decodeEnvelope(buf)
	if err != nil {
		return nil, err
	}
	if len(rest) < 2 {
		return nil, ErrTruncated
	}
	rounds := binary.LittleEndian.Uint16(rest[:2])
	rest = rest[2:]
	if uint64(len(rest)) < env.Length {
		return nil, ErrTruncated
	}

	c := &Ctrl{SubType: env.SubType, Rounds: rounds}
	if env.SubType == CtrlDHKE {
		if env.Length != ControlKeySize {
			return nil, ErrInvalidCtrlKey
		}
		copy(c.RenewedKey[:], rest[:ControlKeySize])
	}
	return c, nil
}
