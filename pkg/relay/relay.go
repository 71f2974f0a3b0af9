// Package relay implements the fan-out relay state machine (§4.7):
// accept, per-peer slots, broadcast, disconnect, and rekey.
package relay

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/zentalk/parcel/pkg/crypto"
	"github.com/zentalk/parcel/pkg/keyexchange"
	"github.com/zentalk/parcel/pkg/wire"
)

var (
	ErrCapacityExceeded = errors.New("relay: peer capacity exceeded")
	errRingOutOfOrder   = errors.New("relay: peer sent a ring frame outside an active rekey")
)

// Relay fans out cables between connected peers and drives the two-party
// handshake and N-party ring rekey. Every field below is touched only by
// the goroutine running Run; acceptLoop, handshake workers, and per-peer
// readers communicate exclusively through events, never by sharing memory.
type Relay struct {
	capacity   int
	controlKey crypto.Key
	audit      *Audit
	listener   net.Listener

	peers  map[int]*Slot
	order  []int
	nextID int
	gates  map[int]chan struct{}
	done   map[int]chan struct{}

	// rekeying and deferred let a ring rekey in progress survive events
	// that aren't part of it: ordinary cable traffic from a peer that
	// finished its ring early, or a new accept arriving mid-round. Such
	// events are appended to deferred instead of handled inline, and
	// replayed once the outermost rekey call returns.
	rekeying bool
	deferred []relayEvent

	events chan relayEvent
}

// New creates a Relay with room for capacity live peers and a freshly
// generated control key, the "server key" §3 describes as relay state.
func New(capacity int, audit *Audit) (*Relay, error) {
	key, err := crypto.RandomKey()
	if err != nil {
		return nil, err
	}
	return &Relay{
		capacity:   capacity,
		controlKey: key,
		audit:      audit,
		peers:      make(map[int]*Slot),
		gates:      make(map[int]chan struct{}),
		done:       make(map[int]chan struct{}),
		events:     make(chan relayEvent, capacity*2+4),
	}, nil
}

// Listen opens the TCP listening socket. Call Run afterward to serve it.
func (r *Relay) Listen(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	r.listener = l
	return nil
}

// Close closes the listener and every live peer connection.
func (r *Relay) Close() error {
	var err error
	if r.listener != nil {
		err = r.listener.Close()
	}
	for _, s := range r.peers {
		s.Conn.Close()
	}
	return err
}

// Run drives the relay's single-threaded event loop until the listener is
// closed. Handshake and rekey failures are logged (and the affected peer
// dropped where one is identified); they do not stop the loop.
func (r *Relay) Run() error {
	if r.listener == nil {
		return errors.New("relay: Listen must be called before Run")
	}
	go r.acceptLoop()

	for ev := range r.events {
		if err := r.handle(ev); err != nil {
			return err
		}
	}
	return nil
}

func (r *Relay) acceptLoop() {
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			close(r.events)
			return
		}
		r.events <- relayEvent{kind: eventAccept, conn: conn}
	}
}

func (r *Relay) handle(ev relayEvent) error {
	switch ev.kind {
	case eventAccept:
		r.onAccept(ev.conn)
	case eventHandshakeDH:
		r.onHandshakeDH(ev.id, ev.conn, ev.sharedKey)
	case eventHandshakeOK:
		r.onHandshakeOK(ev.id, ev.conn)
	case eventHandshakeFail:
		ev.conn.Close()
		r.audit.Record("handshake_failed", ev.id, nil)
	case eventFrame:
		r.onFrame(ev.id, ev.body)
	case eventDisconnect:
		r.onDisconnect(ev.id)
	case eventRingFrame:
		// Only reachable outside ring(): a peer sent key material when no
		// rekey is in progress. A single misbehaving peer doesn't get to
		// take the whole relay down with it — drop that connection only.
		log.Printf("relay: %v (peer %d)", errRingOutOfOrder, ev.id)
		r.disconnect(ev.id)
	}
	return nil
}

// onAccept places conn in the next free slot and runs the network-bound
// half of the two-party handshake (§4.7 "Accept") in its own goroutine so a
// slow or hostile peer never stalls the accept loop or any live peer's
// traffic. The handshake's second half — handing over the relay's current
// control key — runs back on the Run goroutine (onHandshakeDH) rather than
// here, so it always uses whatever key is current at that moment rather
// than a snapshot that a concurrent rekey could have already superseded.
func (r *Relay) onAccept(conn net.Conn) {
	if len(r.order) >= r.capacity {
		conn.Close()
		r.audit.Record("reject_capacity", -1, nil)
		log.Printf("relay: %v (capacity %d)", ErrCapacityExceeded, r.capacity)
		return
	}
	id := r.nextID
	r.nextID++

	go func() {
		sharedKey, err := keyexchange.RelayHandshakeDH(conn)
		if err != nil {
			r.events <- relayEvent{kind: eventHandshakeFail, id: id, conn: conn}
			return
		}
		r.events <- relayEvent{kind: eventHandshakeDH, id: id, conn: conn, sharedKey: sharedKey}
	}()
}

// onHandshakeDH finishes the handshake with the control key current right
// now, then treats the connection as live. The finishing write is a single
// small cable, cheap enough to do inline on the Run goroutine the same way
// onFrame and rekey already write directly to peer connections.
func (r *Relay) onHandshakeDH(id int, conn net.Conn, sharedKey crypto.Key) {
	if err := keyexchange.RelayHandshakeFinish(conn, sharedKey, r.controlKey); err != nil {
		conn.Close()
		r.audit.Record("handshake_failed", id, nil)
		log.Printf("relay: finish handshake for peer %d: %v", id, err)
		return
	}
	r.onHandshakeOK(id, conn)
}

func (r *Relay) onHandshakeOK(id int, conn net.Conn) {
	r.peers[id] = &Slot{Conn: conn, Read: bufio.NewReader(conn)}
	r.order = append(r.order, id)
	r.gates[id] = make(chan struct{}, 1)
	r.done[id] = make(chan struct{})

	go peerLoop(id, r.peers[id], r.gates[id], r.done[id], r.events)
	r.gates[id] <- struct{}{}

	r.audit.Record("accept", id, nil)

	if err := r.rekey(); err != nil {
		log.Printf("relay: rekey after accept failed: %v", err)
	}
}

// onFrame fans out a received cable, byte-identical, to every other live
// peer (§4.7 "Broadcast"). The relay never inspects or decrypts body.
func (r *Relay) onFrame(id int, body []byte) {
	var failed []int
	for _, peerID := range r.order {
		if peerID == id {
			continue
		}
		if err := wire.Send(r.peers[peerID].Conn, body); err != nil {
			failed = append(failed, peerID)
		}
	}
	for _, peerID := range failed {
		r.disconnect(peerID)
	}
	if gate, ok := r.gates[id]; ok {
		gate <- struct{}{}
	}
}

func (r *Relay) onDisconnect(id int) {
	r.disconnect(id)
}

func (r *Relay) disconnect(id int) {
	slot, ok := r.peers[id]
	if !ok {
		return
	}
	slot.Conn.Close()
	delete(r.peers, id)
	if done, ok := r.done[id]; ok {
		close(done)
		delete(r.done, id)
	}
	delete(r.gates, id)

	// Compact: the last live peer takes over the vacated position.
	for i, peerID := range r.order {
		if peerID == id {
			last := len(r.order) - 1
			r.order[i] = r.order[last]
			r.order = r.order[:last]
			break
		}
	}

	r.audit.Record("disconnect", id, nil)

	if len(r.order) >= 2 {
		if err := r.rekey(); err != nil {
			log.Printf("relay: rekey after disconnect failed: %v", err)
		}
	}
}

// rekey drives the N-party group rekey (§4.5) across every live peer in
// slot order. With fewer than two live peers the ring phase is skipped:
// the announcement carries rounds=0 and the lone peer adopts the renewed
// control key as its session key.
//
// rekey can recurse: disconnect() calls it again for a peer that drops out
// mid-ring, and that nested call must not re-drain events a still-running
// outer call already owns. Only the outermost call (the one that finds
// rekeying false on entry) drains deferred events once ring() returns.
func (r *Relay) rekey() error {
	n := len(r.order)
	if n == 0 {
		return nil
	}

	top := !r.rekeying
	r.rekeying = true
	if top {
		defer func() { r.rekeying = false }()
	}

	renewed, err := crypto.RandomKey()
	if err != nil {
		return fmt.Errorf("relay: generate renewed control key: %w", err)
	}
	dhke, err := keyexchange.ComposeDHKEWire(uint16(n-1), renewed, r.controlKey)
	if err != nil {
		return fmt.Errorf("relay: compose dhke wire: %w", err)
	}
	body := dhke.Bytes()
	r.controlKey = renewed

	for _, id := range r.order {
		if err := wire.Send(r.peers[id].Conn, body); err != nil {
			log.Printf("relay: send dhke to peer %d failed: %v", id, err)
		}
	}
	r.audit.Record("rekey_start", -1, nil)

	var ringErr error
	if n > 1 {
		ringErr = r.ring()
	}

	if top {
		r.drainDeferred()
	}
	return ringErr
}

// ring runs the N-party ring rekey's relay side (§4.5 "Ring"): n-1 rounds,
// each forwarding one intermediate value from every live peer to its
// cyclic successor. The membership snapshot (r.order at the moment ring
// starts) is fixed for the whole rekey, even though r.order itself can
// change out from under it via a nested disconnect.
func (r *Relay) ring() error {
	ringOrder := append([]int(nil), r.order...)
	rounds := len(ringOrder) - 1
	succ := cyclicSuccessors(ringOrder)

	for round := 0; round < rounds; round++ {
		if err := r.ringRound(ringOrder, succ); err != nil {
			return err
		}
	}
	r.audit.Record("rekey_done", -1, nil)
	return nil
}

// ringRound drives a single round: every peer in ringOrder contributes
// exactly one intermediate frame before the round is considered done.
//
// Frames are matched by the sending peer's id, not by an expected
// per-index turn: every peerLoop already holds a standing gate token
// carried over from the handshake or the previous round's re-prime (see
// peerLoop and the re-prime below), so a peer starts reading the instant
// its client writes, independent of the order this function visits
// ringOrder in. In round 0 every client writes its first intermediate
// value unprompted and concurrently, so frames routinely arrive out of
// ringOrder's sequence — that is expected, not an error.
//
// Events that aren't this round's ring frames (a peer that finished its
// ring early and is already sending ordinary cables, or a fresh accept)
// are deferred rather than treated as fatal; rekey replays them once the
// whole rekey completes.
func (r *Relay) ringRound(ringOrder []int, succ map[int]int) error {
	pending := make(map[int]bool, len(ringOrder))
	for _, id := range ringOrder {
		pending[id] = true
	}

	for len(pending) > 0 {
		ev := <-r.events
		switch ev.kind {
		case eventRingFrame:
			if !pending[ev.id] {
				// A duplicate or stray frame from a peer that already
				// completed this round; harmless to drop.
				continue
			}
			delete(pending, ev.id)

			next := succ[ev.id]
			nextSlot, ok := r.peers[next]
			if !ok {
				return fmt.Errorf("relay: peer %d vanished mid-rekey", next)
			}
			if err := keyexchange.WriteFrame(nextSlot.Conn, ev.frame); err != nil {
				return fmt.Errorf("relay: forward ring frame to peer %d: %w", next, err)
			}
			if gate, ok := r.gates[ev.id]; ok {
				gate <- struct{}{}
			}
		case eventDisconnect:
			r.disconnect(ev.id)
			return fmt.Errorf("relay: peer %d disconnected mid-rekey", ev.id)
		default:
			r.deferred = append(r.deferred, ev)
		}
	}
	return nil
}

// drainDeferred replays events that arrived during a ring rekey and
// weren't part of it, in arrival order. Handling one can itself trigger a
// nested rekey that defers further events, so this loops until the queue
// is genuinely empty rather than taking one pass.
func (r *Relay) drainDeferred() {
	for len(r.deferred) > 0 {
		pending := r.deferred
		r.deferred = nil
		for _, ev := range pending {
			if err := r.handle(ev); err != nil {
				log.Printf("relay: deferred event handling failed: %v", err)
			}
		}
	}
}

// cyclicSuccessors maps each id in order to the next id, wrapping around.
func cyclicSuccessors(order []int) map[int]int {
	n := len(order)
	succ := make(map[int]int, n)
	for i, id := range order {
		succ[id] = order[(i+1)%n]
	}
	return succ
}

// peerLoop owns the exclusive right to read slot's connection. It waits
// for a token on gate before peeking the next frame: a leading cable-magic
// byte means ordinary traffic, anything else means a key-exchange frame
// (the pre-handshake exchange and every ring-rekey intermediate use that
// format, per §6). done signals the loop to exit without reading again
// after a disconnect has already been processed.
func peerLoop(id int, slot *Slot, gate <-chan struct{}, done <-chan struct{}, events chan<- relayEvent) {
	for {
		select {
		case <-done:
			return
		case <-gate:
		}

		lead, err := slot.Read.Peek(1)
		if err != nil {
			events <- relayEvent{kind: eventDisconnect, id: id}
			return
		}

		if lead[0] == wire.CableMagic[0] {
			body, err := wire.Recv(slot.Read)
			if err != nil {
				events <- relayEvent{kind: eventDisconnect, id: id}
				return
			}
			events <- relayEvent{kind: eventFrame, id: id, body: body}
			continue
		}

		f, err := keyexchange.ReadFrame(slot.Read)
		if err != nil {
			events <- relayEvent{kind: eventDisconnect, id: id}
			return
		}
		events <- relayEvent{kind: eventRingFrame, id: id, frame: f}
	}
}
