package aicrypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mr-tron/base58"
)

// HexSHA256 returns the lowercase hex encoding of SHA-256(s). Used wherever
// a signed preimage needs a stable intermediate content hash before the
// final base58 ID derivation.
func HexSHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DeriveID computes the standard identifier for a signed record: the
// base58 encoding of the first 16 bytes of SHA-256(preimage), prefixed with
// the record's type tag (e.g. "aid_", "arec_", "atrust_").
//
// preimage is itself usually a hex-encoded SHA-256 digest over the record's
// fields — double-hashing keeps the ID's entropy independent of the exact
// preimage format a caller chooses for its own hash.
func DeriveID(prefix string, preimage []byte) string {
	sum := sha256.Sum256(preimage)
	return prefix + base58.Encode(sum[:16])
}
