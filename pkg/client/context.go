// Package client implements the chat client's cooperating send and
// receive loops over a mutex-guarded shared context (§4.8).
package client

import (
	"net"
	"sync"

	"github.com/zentalk/parcel/pkg/crypto"
)

// Context is the mutable state the send and receive loops share: username,
// keys, socket, the one-time announcement flag, and the kill flag. Every
// field is read and written only through its methods, each of which takes
// the lock for the duration of the access — callers that need several
// fields together should use Snapshot rather than chaining separate calls.
type Context struct {
	mu sync.Mutex

	username   string
	sessionKey crypto.Key
	controlKey crypto.Key
	conn       net.Conn
	announced  bool
	killed     bool
}

// NewContext builds a Context for an already-connected socket, installing
// the control key the two-party handshake produced.
func NewContext(conn net.Conn, username string, controlKey crypto.Key) *Context {
	return &Context{conn: conn, username: username, controlKey: controlKey}
}

// Snapshot is a point-in-time, lock-free-to-use copy of the fields the
// send loop needs to build and emit a wire: current keys and the socket.
// The socket itself is still shared (net.Conn is safe for concurrent use
// by one reader and one writer), but the snapshot's keys cannot be
// invalidated out from under an in-flight Encrypt call.
type Snapshot struct {
	Username   string
	SessionKey crypto.Key
	ControlKey crypto.Key
	Conn       net.Conn
}

// Snapshot takes a consistent copy of the shared context under the lock.
func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Username:   c.username,
		SessionKey: c.sessionKey,
		ControlKey: c.controlKey,
		Conn:       c.conn,
	}
}

// SetKeys installs a freshly derived (session, control) pair, overwriting
// whatever was there before — the old keys are never retained once
// superseded by a rekey.
func (c *Context) SetKeys(session, control crypto.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionKey = session
	c.controlKey = control
}

// SetControlKey installs a renewed control key without touching the
// session key, for ordinary CTRL/DHKE handling before the ring phase
// derives a new session key. The rounds=0 short-circuit uses SetKeys.
func (c *Context) SetControlKey(control crypto.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controlKey = control
}

// SetUsername renames the local identity, e.g. in response to /username.
func (c *Context) SetUsername(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = name
}

// Username returns the current display name.
func (c *Context) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// MarkAnnounced reports whether this call is the first to claim the
// one-time USER_CONNECT announcement, atomically flipping the flag.
func (c *Context) MarkAnnounced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.announced {
		return false
	}
	c.announced = true
	return true
}

// Kill sets the kill flag; both loops observe it between iterations.
func (c *Context) Kill() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.killed = true
}

// Killed reports whether Kill has been called.
func (c *Context) Killed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.killed
}

// Conn returns the shared socket. Safe to call concurrently with Snapshot
// since it only ever reads the field.
func (c *Context) Conn() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}
