package payload

import "testing"

func TestTextRoundTrip(t *testing.T) {
	original := &Text{Username: "alice", Message: []byte("hello")}
	encoded, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Simulate the wire codec's 16-byte zero padding.
	padded := append(append([]byte(nil), encoded...), make([]byte, 2)...)

	got, err := DecodeText(padded)
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want alice", got.Username)
	}
	if string(got.Message) != "hello" {
		t.Errorf("Message = %q, want hello", got.Message)
	}
}

func TestTextUsernameTooLong(t *testing.T) {
	long := make([]byte, UsernameFieldSize+1)
	for i := range long {
		long[i] = 'x'
	}
	txt := &Text{Username: string(long), Message: []byte("hi")}
	if _, err := txt.Encode(); err != ErrUsernameTooLong {
		t.Fatalf("Encode error = %v, want ErrUsernameTooLong", err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i)
	}
	original := &File{
		Username: "bob",
		Filename: "x.bin",
		Gid:      1000,
		Uid:      1000,
		Mode:     0640,
		Data:     data,
	}
	encoded, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := DecodeFile(encoded)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if got.Filename != "x.bin" {
		t.Errorf("Filename = %q, want x.bin", got.Filename)
	}
	if got.Mode != 0640 {
		t.Errorf("Mode = %o, want 0640", got.Mode)
	}
	if len(got.Data) != len(data) {
		t.Fatalf("Data length = %d, want %d", len(got.Data), len(data))
	}
	for i := range data {
		if got.Data[i] != data[i] {
			t.Fatalf("Data[%d] = %x, want %x", i, got.Data[i], data[i])
		}
	}
}

func TestStatRenameRoundTrip(t *testing.T) {
	original := &Stat{SubType: StatRename, Username: "carol", NewUsername: "caroline"}
	encoded, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeStat(encoded)
	if err != nil {
		t.Fatalf("DecodeStat: %v", err)
	}
	if got.NewUsername != "caroline" {
		t.Errorf("NewUsername = %q, want caroline", got.NewUsername)
	}
}

func TestStatConnectHasNoTrailingData(t *testing.T) {
	original := &Stat{SubType: StatConnect, Username: "dave"}
	encoded, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeStat(encoded)
	if err != nil {
		t.Fatalf("DecodeStat: %v", err)
	}
	if got.NewUsername != "" {
		t.Errorf("NewUsername = %q, want empty", got.NewUsername)
	}
}

func TestCtrlDHKERoundTrip(t *testing.T) {
	var key [ControlKeySize]byte
	for i := range key {
		key[i] = byte(i)
	}
	original := &Ctrl{SubType: CtrlDHKE, Rounds: 2, RenewedKey: key}
	encoded := original.Encode()

	got, err := DecodeCtrl(encoded)
	if err != nil {
		t.Fatalf("DecodeCtrl: %v", err)
	}
	if got.Rounds != 2 {
		t.Errorf("Rounds = %d, want 2", got.Rounds)
	}
	if got.RenewedKey != key {
		t.Errorf("RenewedKey mismatch")
	}
}

func TestCtrlExitRoundTrip(t *testing.T) {
	original := &Ctrl{SubType: CtrlExit}
	encoded := original.Encode()

	got, err := DecodeCtrl(encoded)
	if err != nil {
		t.Fatalf("DecodeCtrl: %v", err)
	}
	if got.SubType != CtrlExit {
		t.Errorf("SubType = %d, want CtrlExit", got.SubType)
	}
}

func TestSessionKeyRoundTrip(t *testing.T) {
	var key [SessionKeySize]byte
	for i := range key {
		key[i] = byte(255 - i)
	}
	original := &SessionKey{Key: key}
	encoded := original.Encode()

	got, err := DecodeSessionKey(encoded)
	if err != nil {
		t.Fatalf("DecodeSessionKey: %v", err)
	}
	if got.Key != key {
		t.Errorf("Key mismatch")
	}
}
