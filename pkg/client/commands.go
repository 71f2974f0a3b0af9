package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zentalk/parcel/pkg/crypto"
)

var (
	ErrUnknownCommand     = errors.New("client: unknown command")
	ErrAmbiguousCommand   = errors.New("client: ambiguous command prefix")
	ErrCommandNeedsArgs   = errors.New("client: command requires an argument")
)

// commandNames is the full runtime command surface (§6 "Client runtime
// commands"), in a fixed order so prefix-ambiguity messages are stable.
var commandNames = []string{"list", "q", "username", "encinfo", "file", "clear", "version"}

// ResolveCommand maps a typed prefix (without its leading '/') to exactly
// one full command name, or fails if it matches zero or more than one.
func ResolveCommand(typed string) (string, error) {
	typed = strings.ToLower(typed)
	var match string
	count := 0
	for _, name := range commandNames {
		if name == typed {
			return name, nil
		}
		if strings.HasPrefix(name, typed) {
			match = name
			count++
		}
	}
	switch count {
	case 0:
		return "", ErrUnknownCommand
	case 1:
		return match, nil
	default:
		return "", ErrAmbiguousCommand
	}
}

// ParsedCommand is a command line split into its resolved name and
// trailing argument text (everything after the command word, trimmed).
type ParsedCommand struct {
	Name string
	Args string
}

// ParseCommand parses a line starting with '/' into a ParsedCommand.
// line must already be confirmed to start with '/'.
func ParseCommand(line string) (ParsedCommand, error) {
	body := strings.TrimPrefix(line, "/")
	fields := strings.SplitN(body, " ", 2)
	name, err := ResolveCommand(fields[0])
	if err != nil {
		return ParsedCommand{}, err
	}
	var args string
	if len(fields) == 2 {
		args = strings.TrimSpace(fields[1])
	}
	return ParsedCommand{Name: name, Args: args}, nil
}

// EncInfo renders the /encinfo command's human-readable summary of the
// currently installed keys, identified by a short digest rather than the
// key bytes themselves.
func EncInfo(snap Snapshot) string {
	sessionDigest := crypto.KeyDigest(snap.SessionKey[:])
	controlDigest := crypto.KeyDigest(snap.ControlKey[:])
	return fmt.Sprintf(
		"session key digest: %x\ncontrol key digest: %x",
		sessionDigest[:8], controlDigest[:8],
	)
}
