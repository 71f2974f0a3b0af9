package wire

import (
	"bytes"
	"testing"
)

func TestCableRoundTrip(t *testing.T) {
	key := randomKey(t)

	w, err := Init(TypeText, []byte("hello cable"))
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := Encrypt(w, key); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	original := w.Bytes()

	var buf bytes.Buffer
	if err := Send(&buf, original); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, err := Recv(&buf)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("Recv returned %x, want %x", got, original)
	}
}

func TestCableWrongMagicRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("parcel")
	lenBuf := make([]byte, CableLenSize)
	lenBuf[0] = CableHeaderSize
	buf.Write(lenBuf)

	if _, err := Recv(&buf); err != ErrCableMagic {
		t.Fatalf("Recv error = %v, want ErrCableMagic", err)
	}
}

func TestCableMultipleFramesOnOneStream(t *testing.T) {
	key := randomKey(t)
	var buf bytes.Buffer

	var originals [][]byte
	for _, msg := range []string{"first", "second", "third"} {
		w, err := Init(TypeText, []byte(msg))
		if err != nil {
			t.Fatalf("Init: %v", err)
		}
		if err := Encrypt(w, key); err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		original := w.Bytes()
		originals = append(originals, original)
		if err := Send(&buf, original); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	for i, want := range originals {
		got, err := Recv(&buf)
		if err != nil {
			t.Fatalf("Recv frame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d = %x, want %x", i, got, want)
		}
	}
}
