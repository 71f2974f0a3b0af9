package relay

import (
	"bufio"
	"net"
)

// Slot is one live peer's connection state. A Slot exists in r.peers only
// for the lifetime between a successful handshake and disconnect — there is
// no free/handshaking representation to track, since the handshake runs to
// completion (its DH half in a per-connection goroutine started by
// onAccept, its final control-key send in onHandshakeDH on the Run
// goroutine) before a Slot is ever created.
//
// Read wraps Conn's read side so a single peerLoop goroutine can
// disambiguate, frame by frame, whether the next bytes waiting on the
// socket are a cable or a raw key-exchange frame (the two formats have
// disjoint leading bytes: a cable starts with '.', a key-exchange frame
// with a small type byte).
type Slot struct {
	Conn net.Conn
	Read *bufio.Reader
}
