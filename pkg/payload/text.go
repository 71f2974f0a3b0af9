package payload

import "errors"

// UsernameFieldSize is the fixed width of every payload's username field.
const UsernameFieldSize = 32

var ErrUsernameTooLong = errors.New("payload: username exceeds UsernameFieldSize")

// Text carries a chat message: a fixed-width username and the UTF-8
// message bytes as trailing data.
type Text struct {
	Username string
	Message  []byte
}

// Encode serializes t into {sub-type=0, length, username[32], message}.
func (t *Text) Encode() ([]byte, error) {
	if len(t.Username) > UsernameFieldSize {
		return nil, ErrUsernameTooLong
	}
	env := encodeEnvelope(Envelope{SubType: 0, Length: uint64(len(t.Message))})
	buf := make([]byte, 0, len(env)+UsernameFieldSize+len(t.Message))
	buf = append(buf, env...)
	buf = append(buf, fixedField([]byte(t.Username), UsernameFieldSize)...)
	buf = append(buf, t.Message...)
	return buf, nil
}

// DecodeText parses a Text payload from its wire data region. buf may carry
// trailing zero padding beyond the envelope's declared length (the wire
// codec zero-pads data to a 16-byte multiple); only the declared length of
// message bytes is returned.
func DecodeText(buf []byte) (*Text, error) {
	env, rest, err := decodeEnvelope(buf)
	if err != nil {
		return nil, err
	}
	if len(rest) < UsernameFieldSize {
		return nil, ErrTruncated
	}
	username := trimField(rest[:UsernameFieldSize])
	rest = rest[UsernameFieldSize:]
	if uint64(len(rest)) < env.Length {
		return nil, ErrTruncated
	}
	message := rest[:env.Length]
	return &Text{
		Username: string(username),
		Message:  append([]byte(nil), message...),
	}, nil
}
