package relay

import (
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/blake2b"
)

// Audit is a best-effort, non-critical event ledger: accept, disconnect,
// and rekey events are recorded for operational visibility. Nothing on
// the protocol's decrypt, fan-out, or rekey path ever reads from it —
// a failed or absent audit log must never change protocol behavior.
type Audit struct {
	db *sql.DB
}

// OpenAudit opens (creating if needed) a SQLite-backed event ledger at path.
func OpenAudit(path string) (*Audit, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("relay: open audit db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("relay: enable wal: %w", err)
	}
	const schema = `
	CREATE TABLE IF NOT EXISTS relay_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		slot INTEGER NOT NULL,
		fingerprint TEXT,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("relay: init audit schema: %w", err)
	}
	return &Audit{db: db}, nil
}

// Close closes the underlying database. Safe to call on a nil *Audit.
func (a *Audit) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Record logs a lifecycle event for slot. body, if non-empty, is
// fingerprinted with BLAKE2b-256 (truncated to 8 bytes) rather than stored
// raw — the ledger never holds key or wire material. Safe to call on a
// nil *Audit, so callers can wire it in optionally.
func (a *Audit) Record(kind string, slot int, body []byte) error {
	if a == nil || a.db == nil {
		return nil
	}
	var fp string
	if len(body) > 0 {
		sum := blake2b.Sum256(body)
		fp = hex.EncodeToString(sum[:8])
	}
	_, err := a.db.Exec(`INSERT INTO relay_events (kind, slot, fingerprint) VALUES (?, ?, ?)`, kind, slot, fp)
	return err
}
