package wire

import (
	"bytes"
	"errors"

	"github.com/zentalk/parcel/pkg/crypto"
)

var (
	// ErrInvalidKey means none of the candidate keys' mac_inner verified,
	// or the decrypted header's signature didn't match any candidate.
	ErrInvalidKey = errors.New("wire: no candidate key decrypts this wire")
	// ErrPartial means a candidate key's mac_inner verified and its header
	// decrypted to a valid signature, but wire_len disagrees with the
	// number of bytes actually received.
	ErrPartial = errors.New("wire: wire_len does not match bytes received")
	// ErrCMACError means mac_inner verified under a key but mac_outer did
	// not; the frame has been tampered with or corrupted in transit.
	ErrCMACError = errors.New("wire: mac_outer verification failed")
)

// Encrypt encrypts w in place under key: the header block first, then the
// data region (CBC-chained from the header), then computes mac_inner over
// the encrypted header and mac_outer over mac_inner‖iv‖header‖data.
func Encrypt(w *Wire, key crypto.Key) error {
	cbc, err := crypto.NewCBC(key.CipherHalf(), w.IV[:])
	if err != nil {
		return err
	}

	if err := cbc.Encrypt(w.headerSlice()); err != nil {
		return err
	}
	if err := cbc.Encrypt(w.Data); err != nil {
		return err
	}

	macInner, err := crypto.CMAC(key.MACHalf(), w.HeaderBytes[:])
	if err != nil {
		return err
	}
	copy(w.MacInner[:], macInner)

	macOuter, err := crypto.CMAC(key.MACHalf(), outerSpan(w))
	if err != nil {
		return err
	}
	copy(w.MacOuter[:], macOuter)

	return nil
}

// Decrypt tries each candidate key in order, returning the index of the
// first one that verifies and decrypts the wire in place. Candidates
// should be passed most-likely-first (e.g. session key, then control key)
// per §4.4's two-key fallback and §9's Open Question resolution: a single
// call taking a slice of candidates, reporting which one verified.
func Decrypt(w *Wire, receivedLen int, keys ...crypto.Key) (int, error) {
	for i, key := range keys {
		cbc, err := crypto.NewCBC(key.CipherHalf(), w.IV[:])
		if err != nil {
			return -1, err
		}

		innerOK, err := crypto.VerifyCMAC(key.MACHalf(), w.HeaderBytes[:], w.MacInner[:])
		if err != nil {
			return -1, err
		}
		if !innerOK {
			continue
		}

		scratch := w.HeaderBytes
		if err := cbc.Decrypt(scratch[:]); err != nil {
			return -1, err
		}
		header, err := DecodeHeader(scratch[:])
		if err != nil {
			return -1, err
		}
		if header.Signature != Signature {
			continue
		}
		if header.Alignment&0xF0 != 0 {
			return -1, ErrInvalidAlignment
		}
		if header.WireLen != uint64(receivedLen) {
			return -1, ErrPartial
		}

		outerOK, err := crypto.VerifyCMAC(key.MACHalf(), outerSpan(w), w.MacOuter[:])
		if err != nil {
			return -1, err
		}
		if !outerOK {
			return -1, ErrCMACError
		}

		if err := cbc.Decrypt(w.Data); err != nil {
			return -1, err
		}
		w.HeaderBytes = scratch

		return i, nil
	}
	return -1, ErrInvalidKey
}

// outerSpan returns mac_inner ‖ iv ‖ (encrypted) header ‖ (encrypted) data,
// the span mac_outer authenticates.
func outerSpan(w *Wire) []byte {
	var buf bytes.Buffer
	buf.Grow(MacSize + IVSize + HeaderSize + len(w.Data))
	buf.Write(w.MacInner[:])
	buf.Write(w.IV[:])
	buf.Write(w.HeaderBytes[:])
	buf.Write(w.Data)
	return buf.Bytes()
}
