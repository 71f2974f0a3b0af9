package payload

import (
	"encoding/binary"
	"errors"
)

// FilenameFieldSize is the fixed width of the filename field (spec cap).
const FilenameFieldSize = 255

// MaxFileSize bounds the trailing file-bytes region to keep a hostile
// length field from causing unbounded allocation (spec: "cap ≈ 2 GiB −
// header").
const MaxFileSize = (2 << 30) - UsernameFieldSize - FilenameFieldSize - 10

var (
	ErrFilenameTooLong = errors.New("payload: filename exceeds FilenameFieldSize")
	ErrFileTooLarge    = errors.New("payload: file data exceeds MaxFileSize")
)

// File carries a file transfer: username, filename, POSIX ownership/mode
// bits, and the raw file bytes as trailing data.
type File struct {
	Username string
	Filename string
	Gid      uint32
	Uid      uint32
	Mode     uint16
	Data     []byte
}

// Encode serializes f into
// {sub-type=0, length, username[32], filename[255], gid, uid, mode, data}.
func (f *File) Encode() ([]byte, error) {
	if len(f.Username) > UsernameFieldSize {
		return nil, ErrUsernameTooLong
	}
	if len(f.Filename) > FilenameFieldSize {
		return nil, ErrFilenameTooLong
	}
	if len(f.Data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	env := encodeEnvelope(Envelope{SubType: 0, Length: uint64(len(f.Data))})
	buf := make([]byte, 0, len(env)+UsernameFieldSize+FilenameFieldSize+4+4+2+len(f.Data))
	buf = append(buf, env...)
	buf = append(buf, fixedField([]byte(f.Username), UsernameFieldSize)...)
	buf = append(buf, fixedField([]byte(f.Filename), FilenameFieldSize)...)

	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], f.Gid)
	buf = append(buf, n[:]...)
	binary.LittleEndian.PutUint32(n[:], f.Uid)
	buf = append(buf, n[:]...)

	var m [2]byte
	binary.LittleEndian.PutUint16(m[:], f.Mode)
	buf = append(buf, m[:]...)

	buf = append(buf, f.Data...)
	return buf, nil
}

// DecodeFile parses a File payload from its wire data region.
func DecodeFile(buf []byte) (*File, error) {
	env, rest, err := decodeEnvelope(buf)
	if err != nil {
		return nil, err
	}

	const fixedSize = UsernameFieldSize + FilenameFieldSize + 4 + 4 + 2
	if len(rest) < fixedSize {
		return nil, ErrTruncated
	}

	username := trimField(rest[:UsernameFieldSize])
	rest = rest[UsernameFieldSize:]
	filename := trimField(rest[:FilenameFieldSize])
	rest = rest[FilenameFieldSize:]

	gid := binary.LittleEndian.Uint32(rest[0:4])
	uid := binary.LittleEndian.Uint32(rest[4:8])
	mode := binary.LittleEndian.Uint16(rest[8:10])
	rest = rest[10:]

	if uint64(len(rest)) < env.Length {
		return nil, ErrTruncated
	}

	return &File{
		Username: string(username),
		Filename: string(filename),
		Gid:      gid,
		Uid:      uid,
		Mode:     mode,
		Data:     append([]byte(nil), rest[:env.Length]...),
	}, nil
}
