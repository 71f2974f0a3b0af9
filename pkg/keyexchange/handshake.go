package keyexchange

import (
	"errors"
	"io"

	"github.com/zentalk/parcel/pkg/crypto"
	"github.com/zentalk/parcel/pkg/dhkey"
	"github.com/zentalk/parcel/pkg/payload"
	"github.com/zentalk/parcel/pkg/wire"
)

// ErrUnexpectedWireType means the handshake's SESSION_KEY cable decrypted
// but carried a different wire type than expected.
var ErrUnexpectedWireType = errors.New("keyexchange: expected a session-key wire")

// ClientHandshake runs the client side of the two-party handshake (§4.6
// steps 1, 4): generate an ephemeral scalar, exchange public values with
// the relay over conn, then receive and decrypt the relay's current
// control key under the freshly derived shared secret.
func ClientHandshake(conn io.ReadWriter) (crypto.Key, error) {
	d, err := dhkey.GeneratePrivate()
	if err != nil {
		return crypto.Key{}, err
	}
	q, err := dhkey.PublicFromPrivate(d)
	if err != nil {
		return crypto.Key{}, err
	}
	if err := WriteFrame(conn, Frame{Type: FrameClientPublic, Key: q}); err != nil {
		return crypto.Key{}, err
	}

	serverFrame, err := ReadFrameExpect(conn, FrameServerPublic)
	if err != nil {
		return crypto.Key{}, err
	}
	shared, err := dhkey.SharedSecret(d, dhkey.Public(serverFrame.Key))
	if err != nil {
		return crypto.Key{}, err
	}
	sharedKey := crypto.Key(shared)

	body, err := wire.Recv(conn)
	if err != nil {
		return crypto.Key{}, err
	}
	w, err := wire.Parse(body)
	if err != nil {
		return crypto.Key{}, err
	}
	if _, err := wire.Decrypt(w, len(body), sharedKey); err != nil {
		return crypto.Key{}, err
	}
	header, err := wire.DecodeHeader(w.HeaderBytes[:])
	if err != nil {
		return crypto.Key{}, err
	}
	if header.Type != wire.TypeSessionKey {
		return crypto.Key{}, ErrUnexpectedWireType
	}
	sk, err := payload.DecodeSessionKey(w.Data)
	if err != nil {
		return crypto.Key{}, err
	}
	return crypto.NewKey(sk.Key[:])
}

// RelayHandshakeDH runs the network-bound half of the relay side of the
// two-party handshake (§4.6 steps 2, 3): read the client's public value and
// respond with an ephemeral public value of its own, returning the derived
// shared secret. It touches no relay state, so it's safe to run in its own
// goroutine per accepted connection without blocking the accept loop or any
// other peer — unlike RelayHandshakeFinish below, which must run on whatever
// goroutine currently owns the relay's control key.
func RelayHandshakeDH(conn io.ReadWriter) (crypto.Key, error) {
	clientFrame, err := ReadFrameExpect(conn, FrameClientPublic)
	if err != nil {
		return crypto.Key{}, err
	}
	d, err := dhkey.GeneratePrivate()
	if err != nil {
		return crypto.Key{}, err
	}
	q, err := dhkey.PublicFromPrivate(d)
	if err != nil {
		return crypto.Key{}, err
	}
	if err := WriteFrame(conn, Frame{Type: FrameServerPublic, Key: q}); err != nil {
		return crypto.Key{}, err
	}
	shared, err := dhkey.SharedSecret(d, dhkey.Public(clientFrame.Key))
	if err != nil {
		return crypto.Key{}, err
	}
	return crypto.Key(shared), nil
}

// RelayHandshakeFinish completes the handshake (§4.6 step 3's second half):
// hand the relay's control key to the new peer, wrapped under the shared
// secret RelayHandshakeDH derived. Call this with whatever control key is
// current at the moment of the call — not a value snapshotted earlier —
// since a concurrent rekey between RelayHandshakeDH returning and this
// running would otherwise hand the new peer a control key the relay has
// already moved past, leaving it unable to decrypt any future broadcast.
func RelayHandshakeFinish(conn io.ReadWriter, sharedKey, currentControlKey crypto.Key) error {
	sk := &payload.SessionKey{Key: currentControlKey}
	w, err := wire.Init(wire.TypeSessionKey, sk.Encode())
	if err != nil {
		return err
	}
	if err := wire.Encrypt(w, sharedKey); err != nil {
		return err
	}
	return wire.Send(conn, w.Bytes())
}
