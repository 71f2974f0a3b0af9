package crypto

import (
	"bytes"
	"strings"
	"testing"
)

// FIPS-180-4 Appendix B SHA-256 test vectors.
func TestKeyDigestFIPSVectors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{
			name: "empty string",
			in:   []byte(""),
			want: mustHex(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"),
		},
		{
			name: "abc",
			in:   []byte("abc"),
			want: mustHex(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeyDigest(tt.in)
			if !bytes.Equal(got[:], tt.want) {
				t.Fatalf("KeyDigest(%q) = %x, want %x", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyDigestLongRepeatedPattern(t *testing.T) {
	// FIPS-180-4 Appendix B.3: one million repetitions of "a".
	want := mustHex(t, "cdc76e5c9914fb9281a1c7e284d73e67f1809a48a497200e046d39ccc7112cd0")

	data := strings.Repeat("a", 1_000_000)
	got := KeyDigest([]byte(data))
	if !bytes.Equal(got[:], want) {
		t.Fatalf("KeyDigest(1M 'a') = %x, want %x", got, want)
	}
}
