package payload

// Stat sub-types.
const (
	StatConnect byte = iota
	StatDisconnect
	StatRename
)

// Stat carries a presence/roster event: connect, disconnect, or rename.
// For rename, NewUsername is the trailing data; for connect/disconnect it
// is empty.
type Stat struct {
	SubType     byte
	Username    string
	NewUsername string
}

// Encode serializes s into
// {sub-type, length, username[32], new-username (rename only)}.
func (s *Stat) Encode() ([]byte, error) {
	if len(s.Username) > UsernameFieldSize {
		return nil, ErrUsernameTooLong
	}
	trailing := []byte(nil)
	if s.SubType == StatRename {
		trailing = []byte(s.NewUsername)
	}

	env := encodeEnvelope(Envelope{SubType: s.SubType, Length: uint64(len(trailing))})
	buf := make([]byte, 0, len(env)+UsernameFieldSize+len(trailing))
	buf = append(buf, env...)
	buf = append(buf, fixedField([]byte(s.Username), UsernameFieldSize)...)
	buf = append(buf, trailing...)
	return buf, nil
}

// DecodeStat parses a Stat payload from its wire data region.
func DecodeStat(buf []byte) (*Stat, error) {
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

	st := &Stat{
		SubType:  env.SubType,
		Username: string(username),
	}
	if env.SubType == StatRename {
		st.NewUsername = string(rest[:env.Length])
	}
	return st, nil
}
