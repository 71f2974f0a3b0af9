package client

import (
	"net"
	"testing"

	"github.com/zentalk/parcel/pkg/crypto"
)

func TestSnapshotReflectsLatestKeys(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	control, err := crypto.RandomKey()
	if err != nil {
		t.Fatalf("RandomKey: %v", err)
	}
	ctx := NewContext(c1, "alice", control)

	snap := ctx.Snapshot()
	if snap.Username != "alice" {
		t.Fatalf("username = %q, want alice", snap.Username)
	}
	if snap.ControlKey != control {
		t.Fatalf("control key not installed by NewContext")
	}

	session, err := crypto.RandomKey()
	if err != nil {
		t.Fatalf("RandomKey: %v", err)
	}
	renewed, err := crypto.RandomKey()
	if err != nil {
		t.Fatalf("RandomKey: %v", err)
	}
	ctx.SetKeys(session, renewed)

	snap = ctx.Snapshot()
	if snap.SessionKey != session || snap.ControlKey != renewed {
		t.Fatalf("SetKeys did not update snapshot")
	}
}

func TestMarkAnnouncedOnlyOnce(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	ctx := NewContext(c1, "bob", crypto.Key{})
	if !ctx.MarkAnnounced() {
		t.Fatalf("first MarkAnnounced should return true")
	}
	if ctx.MarkAnnounced() {
		t.Fatalf("second MarkAnnounced should return false")
	}
}

func TestKillIsObservable(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	ctx := NewContext(c1, "carol", crypto.Key{})
	if ctx.Killed() {
		t.Fatalf("fresh context should not be killed")
	}
	ctx.Kill()
	if !ctx.Killed() {
		t.Fatalf("Kill did not set the flag")
	}
}
