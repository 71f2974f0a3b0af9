package crypto

import "crypto/aes"

// BlockSize is the AES block size in bytes (also the CMAC block size).
const BlockSize = aes.BlockSize // 16

// NewCipher builds an AES-128 block cipher from a 16-byte key. It is a thin
// wrapper over crypto/aes so the rest of the package never imports it
// directly — every AES-128 key schedule in this module goes through here.
func NewCipher(key []byte) (cipherBlock, error) {
	return aes.NewCipher(key)
}

// cipherBlock is the subset of cipher.Block this package relies on; declared
// locally so callers don't need to import crypto/cipher just to hold the
// return value of NewCipher.
type cipherBlock interface {
	BlockSize() int
	Encrypt(dst, src []byte)
	Decrypt(dst, src []byte)
}
