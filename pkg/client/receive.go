package client

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/zentalk/parcel/pkg/crypto"
	"github.com/zentalk/parcel/pkg/keyexchange"
	"github.com/zentalk/parcel/pkg/payload"
	"github.com/zentalk/parcel/pkg/wire"
)

// ReceiveLoop reads cables off ctx's connection until it fails or Kill has
// been called, decrypting each against the session key and falling back to
// the control key (§4.4's two-key candidate rule: a CTRL/DHKE announcement
// is still encrypted under the control key that was current before it took
// effect). downloadDir is where incoming files are written.
func ReceiveLoop(ctx *Context, downloadDir string) error {
	for {
		if ctx.Killed() {
			return nil
		}
		body, err := wire.Recv(ctx.Conn())
		if err != nil {
			return err
		}
		if err := handleCable(ctx, body, downloadDir); err != nil {
			log.Printf("client: dropping cable: %v", err)
		}
	}
}

func handleCable(ctx *Context, body []byte, downloadDir string) error {
	w, err := wire.Parse(body)
	if err != nil {
		return err
	}
	snap := ctx.Snapshot()
	used, err := wire.Decrypt(w, len(body), snap.SessionKey, snap.ControlKey)
	if err != nil {
		return err
	}
	header, err := wire.DecodeHeader(w.HeaderBytes[:])
	if err != nil {
		return err
	}

	switch header.Type {
	case wire.TypeText:
		return handleText(w.Data)
	case wire.TypeFile:
		return handleFile(w.Data, downloadDir)
	case wire.TypeStat:
		return handleStat(w.Data)
	case wire.TypeCtrl:
		// Only the relay holds the control key: a CTRL wire that verified
		// under a distinct session key came from a peer and is not obeyed.
		if used == 0 && snap.SessionKey != snap.ControlKey {
			return fmt.Errorf("client: ignoring CTRL wire not sent by the relay")
		}
		return handleCtrl(ctx, w.Data)
	default:
		return fmt.Errorf("client: unhandled wire type %d", header.Type)
	}
}

func handleText(data []byte) error {
	txt, err := payload.DecodeText(data)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", txt.Username, txt.Message)
	return nil
}

func handleFile(data []byte, downloadDir string) error {
	f, err := payload.DecodeFile(data)
	if err != nil {
		return err
	}
	path := filepath.Join(downloadDir, filepath.Base(f.Filename))
	if err := os.WriteFile(path, f.Data, os.FileMode(f.Mode)); err != nil {
		return err
	}
	fmt.Printf("%s sent a file: %s\n", f.Username, path)
	return nil
}

func handleStat(data []byte) error {
	st, err := payload.DecodeStat(data)
	if err != nil {
		return err
	}
	switch st.SubType {
	case payload.StatConnect:
		fmt.Printf("* %s joined\n", st.Username)
	case payload.StatDisconnect:
		fmt.Printf("* %s left\n", st.Username)
	case payload.StatRename:
		fmt.Printf("* %s is now known as %s\n", st.Username, st.NewUsername)
	}
	return nil
}

// handleCtrl handles relay-originated control messages: a graceful exit
// instruction, or a rekey announcement. For the latter, rounds=0 means the
// relay is down to a single live peer and the renewed control key is
// installed as the session key directly rather than running a degenerate
// one-party ring (§4.5 "n<=1" short-circuit).
func handleCtrl(ctx *Context, data []byte) error {
	ctrl, err := payload.DecodeCtrl(data)
	if err != nil {
		return err
	}
	switch ctrl.SubType {
	case payload.CtrlExit:
		ctx.Kill()
		return nil
	case payload.CtrlDHKE:
		return handleRekey(ctx, ctrl)
	}
	return nil
}

func handleRekey(ctx *Context, ctrl *payload.Ctrl) error {
	renewed, err := crypto.NewKey(ctrl.RenewedKey[:])
	if err != nil {
		return err
	}

	if ctrl.Rounds == 0 {
		ctx.SetKeys(renewed, renewed)
		announceIfFirst(ctx)
		return nil
	}

	ctx.SetControlKey(renewed)
	session, err := keyexchange.ClientRing(ctx.Conn(), ctrl.Rounds)
	if err != nil {
		return err
	}
	ctx.SetKeys(session, renewed)
	announceIfFirst(ctx)
	return nil
}

// announceIfFirst sends the one-time USER_CONNECT announcement the first
// time this client completes a rekey after connecting (§4.8): every later
// rekey only updates keys silently.
func announceIfFirst(ctx *Context) {
	if !ctx.MarkAnnounced() {
		return
	}
	snap := ctx.Snapshot()
	st := &payload.Stat{SubType: payload.StatConnect, Username: snap.Username}
	encoded, err := st.Encode()
	if err != nil {
		log.Printf("client: encode announcement: %v", err)
		return
	}
	if err := sendWire(ctx.Snapshot(), wire.TypeStat, encoded); err != nil {
		log.Printf("client: send announcement: %v", err)
	}
}
