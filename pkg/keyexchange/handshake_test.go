package keyexchange

import (
	"net"
	"testing"

	"github.com/zentalk/parcel/pkg/crypto"
)

func TestTwoPartyHandshakeInstallsControlKey(t *testing.T) {
	clientConn, relayConn := net.Pipe()
	defer clientConn.Close()
	defer relayConn.Close()

	serverKey, err := crypto.RandomKey()
	if err != nil {
		t.Fatalf("RandomKey: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		sharedKey, err := RelayHandshakeDH(relayConn)
		if err != nil {
			errCh <- err
			return
		}
		errCh <- RelayHandshakeFinish(relayConn, sharedKey, serverKey)
	}()

	got, err := ClientHandshake(clientConn)
	if err != nil {
		t.Fatalf("ClientHandshake: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("RelayHandshake: %v", err)
	}
	if got != serverKey {
		t.Fatalf("client installed control key %x, want %x", got, serverKey)
	}
}
