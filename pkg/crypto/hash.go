package crypto

import "crypto/sha256"

// KeyDigest computes SHA-256(data). The /encinfo command uses it to show
// short key digests; keyexchange.ClientRing computes the same SHA-256 of
// the last ring shared secret directly with crypto/sha256.
func KeyDigest(data []byte) [32]byte {
	return sha256.Sum256(data)
}
