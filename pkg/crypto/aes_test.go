package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex decode %q: %v", s, err)
	}
	return b
}

// FIPS-197 / NIST AES-128 single-block test vector.
func TestAES128BlockVector(t *testing.T) {
	key := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	plaintext := mustHex(t, "00112233445566778899aabbccddeeff")
	wantCiphertext := mustHex(t, "69c4e0d86a7b0430d8cdb78070b4c55a")

	block, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	ciphertext := make([]byte, BlockSize)
	block.Encrypt(ciphertext, plaintext)
	if !bytes.Equal(ciphertext, wantCiphertext) {
		t.Fatalf("Encrypt = %x, want %x", ciphertext, wantCiphertext)
	}

	roundTrip := make([]byte, BlockSize)
	block.Decrypt(roundTrip, ciphertext)
	if !bytes.Equal(roundTrip, plaintext) {
		t.Fatalf("Decrypt = %x, want %x", roundTrip, plaintext)
	}
}

func TestCBCStreamingChaining(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	iv := mustHex(t, "000102030405060708090a0b0c0d0e0f")

	block1 := mustHex(t, "6bc1bee22e409f96e93d7e117393172a")
	block2 := mustHex(t, "ae2d8a571e03ac9c9eb76fac45af8e51")

	enc, err := NewCBC(key, iv)
	if err != nil {
		t.Fatalf("NewCBC: %v", err)
	}
	buf1 := append([]byte(nil), block1...)
	if err := enc.Encrypt(buf1); err != nil {
		t.Fatalf("Encrypt header: %v", err)
	}
	buf2 := append([]byte(nil), block2...)
	if err := enc.Encrypt(buf2); err != nil {
		t.Fatalf("Encrypt data: %v", err)
	}

	// Decrypting with the same IV and key, in two matching chained steps,
	// must recover the original plaintext.
	dec, err := NewCBC(key, iv)
	if err != nil {
		t.Fatalf("NewCBC: %v", err)
	}
	d1 := append([]byte(nil), buf1...)
	if err := dec.Decrypt(d1); err != nil {
		t.Fatalf("Decrypt header: %v", err)
	}
	d2 := append([]byte(nil), buf2...)
	if err := dec.Decrypt(d2); err != nil {
		t.Fatalf("Decrypt data: %v", err)
	}

	if !bytes.Equal(d1, block1) {
		t.Errorf("decrypted block1 = %x, want %x", d1, block1)
	}
	if !bytes.Equal(d2, block2) {
		t.Errorf("decrypted block2 = %x, want %x", d2, block2)
	}

	// A single CBC pass over the concatenation of both blocks must equal
	// the two chained single-block passes, proving chaining is correct.
	oneShot, err := NewCBC(key, iv)
	if err != nil {
		t.Fatalf("NewCBC: %v", err)
	}
	whole := append(append([]byte(nil), block1...), block2...)
	if err := oneShot.Encrypt(whole); err != nil {
		t.Fatalf("Encrypt whole: %v", err)
	}
	if !bytes.Equal(whole[:BlockSize], buf1) || !bytes.Equal(whole[BlockSize:], buf2) {
		t.Fatalf("chained encrypt diverges from one-shot encrypt")
	}
}

func TestCBCRejectsUnalignedLength(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	iv := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	c, err := NewCBC(key, iv)
	if err != nil {
		t.Fatalf("NewCBC: %v", err)
	}
	if err := c.Encrypt(make([]byte, 17)); err != ErrNotBlockAligned {
		t.Fatalf("Encrypt(17 bytes) error = %v, want ErrNotBlockAligned", err)
	}
}
