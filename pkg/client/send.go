package client

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/zentalk/parcel/pkg/payload"
	"github.com/zentalk/parcel/pkg/wire"
)

// SendLoop reads lines from prompt until EOF or the kill flag is set,
// parses runtime commands, and otherwise builds a Text payload, wraps it
// in a wire, encrypts under the current session key, and emits it as a
// cable (§4.8 "sender").
func SendLoop(ctx *Context, prompt io.Reader) error {
	scanner := bufio.NewScanner(prompt)
	for scanner.Scan() {
		if ctx.Killed() {
			return nil
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if err := handleCommand(ctx, line); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
			continue
		}
		if err := sendText(ctx, line); err != nil {
			log.Printf("client: send failed: %v", err)
		}
	}
	return scanner.Err()
}

func sendText(ctx *Context, message string) error {
	snap := ctx.Snapshot()
	txt := &payload.Text{Username: snap.Username, Message: []byte(message)}
	encoded, err := txt.Encode()
	if err != nil {
		return err
	}
	return sendWire(snap, wire.TypeText, encoded)
}

// SendFile builds and sends a File payload for the file at path, per the
// /file command.
func SendFile(ctx *Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	snap := ctx.Snapshot()
	f := &payload.File{
		Username: snap.Username,
		Filename: info.Name(),
		Mode:     uint16(info.Mode().Perm()),
		Data:     data,
	}
	encoded, err := f.Encode()
	if err != nil {
		return err
	}
	return sendWire(snap, wire.TypeFile, encoded)
}

func sendWire(snap Snapshot, typ wire.Type, encoded []byte) error {
	w, err := wire.Init(typ, encoded)
	if err != nil {
		return err
	}
	if err := wire.Encrypt(w, snap.SessionKey); err != nil {
		return err
	}
	return wire.Send(snap.Conn, w.Bytes())
}

func handleCommand(ctx *Context, line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		return err
	}
	switch cmd.Name {
	case "q":
		ctx.Kill()
		return sendExit(ctx)
	case "username":
		if cmd.Args == "" {
			return ErrCommandNeedsArgs
		}
		return renameUsername(ctx, cmd.Args)
	case "encinfo":
		fmt.Println(EncInfo(ctx.Snapshot()))
		return nil
	case "file":
		if cmd.Args == "" {
			return ErrCommandNeedsArgs
		}
		return SendFile(ctx, cmd.Args)
	case "clear":
		fmt.Print("\033[H\033[2J")
		return nil
	case "version":
		fmt.Println("parcel client")
		return nil
	case "list":
		fmt.Println("(peer roster is tracked by the relay; not shown locally)")
		return nil
	}
	return ErrUnknownCommand
}

func renameUsername(ctx *Context, newName string) error {
	snap := ctx.Snapshot()
	st := &payload.Stat{SubType: payload.StatRename, Username: snap.Username, NewUsername: newName}
	encoded, err := st.Encode()
	if err != nil {
		return err
	}
	if err := sendWire(snap, wire.TypeStat, encoded); err != nil {
		return err
	}
	ctx.SetUsername(newName)
	return nil
}

func sendExit(ctx *Context) error {
	snap := ctx.Snapshot()
	c := &payload.Ctrl{SubType: payload.CtrlExit}
	return sendWire(snap, wire.TypeCtrl, c.Encode())
}
