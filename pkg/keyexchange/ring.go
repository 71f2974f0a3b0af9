package keyexchange

import (
	"crypto/sha256"
	"io"

	"github.com/zentalk/parcel/pkg/crypto"
	"github.com/zentalk/parcel/pkg/dhkey"
	"github.com/zentalk/parcel/pkg/payload"
	"github.com/zentalk/parcel/pkg/wire"
)

// ComposeDHKEWire builds and encrypts the CTRL/DHKE wire the relay sends
// to every live peer to start an N-party rekey (§4.5 "Start"): rounds
// remaining DH rounds and renewedKey the relay's next control key,
// encrypted under the control key still in effect.
func ComposeDHKEWire(rounds uint16, renewedKey crypto.Key, currentControlKey crypto.Key) (*wire.Wire, error) {
	c := &payload.Ctrl{SubType: payload.CtrlDHKE, Rounds: rounds, RenewedKey: renewedKey}
	w, err := wire.Init(wire.TypeCtrl, c.Encode())
	if err != nil {
		return nil, err
	}
	if err := wire.Encrypt(w, currentControlKey); err != nil {
		return nil, err
	}
	return w, nil
}

// ClientRing runs the client side of the N-party ring rekey (§4.5
// "Client side") after a CTRL/DHKE message announcing rounds remaining
// rounds has been received and decrypted. It returns the freshly derived
// session key.
func ClientRing(conn io.ReadWriter, rounds uint16) (crypto.Key, error) {
	d, err := dhkey.GeneratePrivate()
	if err != nil {
		return crypto.Key{}, err
	}
	q, err := dhkey.PublicFromPrivate(d)
	if err != nil {
		return crypto.Key{}, err
	}
	if err := WriteFrame(conn, Frame{Type: FrameIntermediate, Key: q}); err != nil {
		return crypto.Key{}, err
	}

	var secret [dhkey.Size]byte
	for r := uint16(0); r < rounds; r++ {
		f, err := ReadFrameExpect(conn, FrameIntermediate)
		if err != nil {
			return crypto.Key{}, err
		}
		secret, err = dhkey.SharedSecret(d, dhkey.Public(f.Key))
		if err != nil {
			return crypto.Key{}, err
		}
		if r < rounds-1 {
			if err := WriteFrame(conn, Frame{Type: FrameIntermediate, Key: secret}); err != nil {
				return crypto.Key{}, err
			}
		}
	}
	return crypto.Key(sha256.Sum256(secret[:])), nil
}

// RelayRing runs the relay side of the ring rekey (§4.5 "Ring"): rounds
// rounds of strictly interleaved reads and forwards around peers in slot
// order. The relay never inspects the 32-byte blobs it shuttles.
func RelayRing(peers []io.ReadWriter) error {
	n := len(peers)
	if n <= 1 {
		return nil
	}
	rounds := n - 1
	for r := 0; r < rounds; r++ {
		for i := 0; i < n; i++ {
			f, err := ReadFrameExpect(peers[i], FrameIntermediate)
			if err != nil {
				return err
			}
			next := (i + 1) % n
			if err := WriteFrame(peers[next], f); err != nil {
				return err
			}
		}
	}
	return nil
}
