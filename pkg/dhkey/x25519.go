// Package dhkey implements the X25519 scalar multiplication the two-party
// handshake and the N-party ring rekey are built on.
package dhkey

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/curve25519"
)

// Size is the length in bytes of an X25519 scalar, public value, or shared
// secret.
const Size = 32

// Private is a clamped X25519 scalar.
type Private [Size]byte

// Public is an X25519 u-coordinate.
type Public [Size]byte

// GeneratePrivate draws 32 random bytes and clamps them per RFC 7748 §5:
// clear bits 0,1,2 of byte 0, clear bit 7 and set bit 6 of byte 31.
// golang.org/x/crypto/curve25519 also applies this clamping internally on
// every X25519 call, so PublicFromPrivate and SharedSecret give the same
// result for a clamped or an unclamped scalar.
func GeneratePrivate() (Private, error) {
	var d Private
	if _, err := rand.Read(d[:]); err != nil {
		return d, err
	}
	d[0] &^= 0b0000_0111
	d[31] &^= 0b1000_0000
	d[31] |= 0b0100_0000
	return d, nil
}

// PublicFromPrivate computes d*G, the public value for a private scalar.
func PublicFromPrivate(d Private) (Public, error) {
	var pub Public
	out, err := curve25519.X25519(d[:], curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], out)
	return pub, nil
}

// SharedSecret computes d*Q for a local private scalar and a peer's public
// value.
func SharedSecret(d Private, peer Public) ([Size]byte, error) {
	var secret [Size]byte
	out, err := curve25519.X25519(d[:], peer[:])
	if err != nil {
		return secret, err
	}
	copy(secret[:], out)
	return secret, nil
}

// Fingerprint returns the first 16 bytes of SHA-256(pub), a human-readable
// identifier for a public key. Not part of the protocol's critical path.
func Fingerprint(pub Public) [16]byte {
	sum := sha256.Sum256(pub[:])
	var fp [16]byte
	copy(fp[:], sum[:16])
	return fp
}
