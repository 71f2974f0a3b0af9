package payload

import "errors"

// SessionKeySize is the size of the key material carried by a SessionKey
// payload (delivered by the two-party handshake).
const SessionKeySize = 32

var ErrInvalidSessionKey = errors.New("payload: session-key data must be SessionKeySize bytes")

// SessionKey carries 32 bytes of key material handed from relay to client
// during the two-party handshake (§4.6 step 3).
type SessionKey struct {
	Key [SessionKeySize]byte
}

// Encode serializes k into {sub-type=0, length=32, key}.
func (k *SessionKey) Encode() []byte {
	env := encodeEnvelope(Envelope{SubType: 0, Length: SessionKeySize})
	buf := make([]byte, 0, len(env)+SessionKeySize)
	buf = append(buf, env...)
	buf = append(buf, k.Key[:]...)
	return buf
}

// DecodeSessionKey parses a SessionKey payload from its wire data region.
func DecodeSessionKey(buf []byte) (*SessionKey, error) {
	env, rest, err := decodeEnvelope(buf)
	if err != nil {
		return nil, err
	}
	if env.Length != SessionKeySize || len(rest) < SessionKeySize {
		return nil, ErrInvalidSessionKey
	}
	k := &SessionKey{}
	copy(k.Key[:], rest[:SessionKeySize])
	return k, nil
}
