package relay

import (
	"net"

	"github.com/zentalk/parcel/pkg/crypto"
	"github.com/zentalk/parcel/pkg/keyexchange"
)

type eventKind int

const (
	eventAccept eventKind = iota
	eventHandshakeDH
	eventHandshakeOK
	eventHandshakeFail
	eventFrame
	eventRingFrame
	eventDisconnect
)

// relayEvent is the single channel type every goroutine in a Relay speaks:
// acceptLoop, handshake workers, and per-peer readers all funnel through
// it so the Run loop is the only place that mutates relay state.
type relayEvent struct {
	kind      eventKind
	id        int
	conn      net.Conn
	body      []byte
	frame     keyexchange.Frame
	sharedKey crypto.Key
}
