package crypto

import (
	"bytes"
	"testing"
)

// RFC 4493 §4 test vectors for AES-128-CMAC.
func TestCMACRFC4493Vectors(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")

	tests := []struct {
		name string
		msg  []byte
		tag  []byte
	}{
		{
			name: "empty message",
			msg:  mustHex(t, ""),
			tag:  mustHex(t, "bb1d6929e95937287fa37d129b756746"),
		},
		{
			name: "16-byte message",
			msg:  mustHex(t, "6bc1bee22e409f96e93d7e117393172a"),
			tag:  mustHex(t, "070a16b46b4d4144f79bdd9dd04a287c"),
		},
		{
			name: "40-byte message",
			msg: mustHex(t, "6bc1bee22e409f96e93d7e117393172a"+
				"ae2d8a571e03ac9c9eb76fac45af8e51"+
				"30c81c46a35ce411"),
			tag: mustHex(t, "dfa66747de9ae63030ca32611497c827"),
		},
		{
			name: "64-byte message",
			msg: mustHex(t, "6bc1bee22e409f96e93d7e117393172a"+
				"ae2d8a571e03ac9c9eb76fac45af8e51"+
				"30c81c46a35ce411e5fbc1191a0a52ef"+
				"f69f2445df4f9b17ad2b417be66c3710"),
			tag: mustHex(t, "51f0bebf7e3b9d92fc49741779363cfe"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CMAC(key, tt.msg)
			if err != nil {
				t.Fatalf("CMAC: %v", err)
			}
			if !bytes.Equal(got, tt.tag) {
				t.Fatalf("CMAC(%s) = %x, want %x", tt.name, got, tt.tag)
			}

			ok, err := VerifyCMAC(key, tt.msg, tt.tag)
			if err != nil {
				t.Fatalf("VerifyCMAC: %v", err)
			}
			if !ok {
				t.Fatalf("VerifyCMAC(%s) = false, want true", tt.name)
			}
		})
	}
}

func TestCMACBitFlipDetected(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	msg := mustHex(t, "6bc1bee22e409f96e93d7e117393172a")

	tag, err := CMAC(key, msg)
	if err != nil {
		t.Fatalf("CMAC: %v", err)
	}

	flipped := append([]byte(nil), msg...)
	flipped[0] ^= 0x01

	ok, err := VerifyCMAC(key, flipped, tag)
	if err != nil {
		t.Fatalf("VerifyCMAC: %v", err)
	}
	if ok {
		t.Fatal("VerifyCMAC succeeded after flipping a message bit")
	}
}
