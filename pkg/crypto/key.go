// Package crypto implements the symmetric primitives the wire codec is
// built on: AES-128 block/CBC, CMAC (OMAC1), and the 32-byte session/control
// key split.
package crypto

import (
	"crypto/rand"
	"errors"
)

// KeySize is the size in bytes of a session or control key.
const KeySize = 32

// CipherKeySize is the size of the AES-128 half of a Key.
const CipherKeySize = 16

// MACKeySize is the size of the CMAC half of a Key.
const MACKeySize = 16

var ErrInvalidKeySize = errors.New("crypto: key must be 32 bytes")

// Key is a 32-byte symmetric key split into an AES-128 cipher half and a
// CMAC half, per the wire format's key layout.
type Key [KeySize]byte

// CipherHalf returns the low 16 bytes, used as the AES-128 key.
func (k Key) CipherHalf() []byte { return k[:CipherKeySize] }

// MACHalf returns the high 16 bytes, used as the CMAC key.
func (k Key) MACHalf() []byte { return k[CipherKeySize:] }

// NewKey copies b into a Key, requiring exactly KeySize bytes.
func NewKey(b []byte) (Key, error) {
	var k Key
	if len(b) != KeySize {
		return k, ErrInvalidKeySize
	}
	copy(k[:], b)
	return k, nil
}

// RandomKey generates a fresh 32-byte key from crypto/rand.
func RandomKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k[:]); err != nil {
		return k, err
	}
	return k, nil
}

// Zero overwrites the key material with zeroes. The rekey paths do not call
// it: a superseded key is replaced by assignment, and copies of it held
// elsewhere (for example in a client Snapshot) are not cleared.
func (k *Key) Zero() {
	for i := range k {
		k[i] = 0
	}
}
