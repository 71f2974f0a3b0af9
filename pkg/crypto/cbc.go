package crypto

import (
	"crypto/cipher"
	"errors"
)

var ErrNotBlockAligned = errors.New("crypto: buffer length not a multiple of the block size")

// CBC is a streaming AES-128-CBC context: it holds the running IV as state
// so that successive Encrypt/Decrypt calls on disjoint regions of a message
// chain correctly, matching the wire codec's "encrypt header, then encrypt
// data" two-step sequence.
type CBC struct {
	block cipher.Block
	iv    [BlockSize]byte
}

// NewCBC initializes a CBC context with the given AES-128 key and starting
// IV (16 bytes each).
func NewCBC(key, iv []byte) (*CBC, error) {
	block, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	b, ok := block.(cipher.Block)
	if !ok {
		return nil, errors.New("crypto: unexpected cipher implementation")
	}
	c := &CBC{block: b}
	copy(c.iv[:], iv)
	return c, nil
}

// Encrypt encrypts buf in place. len(buf) must be a multiple of BlockSize.
// The running IV is updated to the last ciphertext block so a subsequent
// call continues the chain.
func (c *CBC) Encrypt(buf []byte) error {
	if len(buf)%BlockSize != 0 {
		return ErrNotBlockAligned
	}
	mode := cipher.NewCBCEncrypter(c.block, c.iv[:])
	mode.CryptBlocks(buf, buf)
	if len(buf) > 0 {
		copy(c.iv[:], buf[len(buf)-BlockSize:])
	}
	return nil
}

// Decrypt decrypts buf in place. len(buf) must be a multiple of BlockSize.
// The running IV is updated to the last *ciphertext* block (saved before
// decryption) so chaining matches Encrypt's.
func (c *CBC) Decrypt(buf []byte) error {
	if len(buf)%BlockSize != 0 {
		return ErrNotBlockAligned
	}
	mode := cipher.NewCBCDecrypter(c.block, c.iv[:])
	var nextIV [BlockSize]byte
	if len(buf) > 0 {
		copy(nextIV[:], buf[len(buf)-BlockSize:])
	}
	mode.CryptBlocks(buf, buf)
	if len(buf) > 0 {
		c.iv = nextIV
	}
	return nil
}
