package aicrypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a 32-byte child key from a root Ed25519 seed and a
// context string, using HKDF-SHA256 (RFC 5869) with an empty salt: the root
// seed is the IKM, the context string is the info parameter. Context
// strings are namespaced under "agentic-identity/" so a derivation never
// collides across session, capability, device, or encryption scopes even
// when the caller-supplied suffix happens to match.
func DeriveKey(rootSeed []byte, context string) ([]byte, error) {
	if len(rootSeed) != 32 {
		return nil, fmt.Errorf("aicrypto: root seed must be 32 bytes, got %d", len(rootSeed))
	}
	r := hkdf.New(sha256.New, rootSeed, nil, []byte(context))
	out := make([]byte, 32)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("aicrypto: HKDF expand failed: %w", err)
	}
	return out, nil
}

// DeriveSigningKey derives a scoped Ed25519 key pair from a root seed and
// context string.
func DeriveSigningKey(rootSeed []byte, context string) (*KeyPair, error) {
	seed, err := DeriveKey(rootSeed, context)
	if err != nil {
		return nil, err
	}
	defer Zeroize(seed)
	return KeyPairFromSeed(seed)
}

// SessionContext builds the derivation path for a session key.
func SessionContext(sessionID string) string {
	return "agentic-identity/session/" + sessionID
}

// CapabilityContext builds the derivation path for a capability-scoped key.
func CapabilityContext(capabilityURI string) string {
	return "agentic-identity/capability/" + capabilityURI
}

// DeviceContext builds the derivation path for a device-scoped key.
func DeviceContext(deviceID string) string {
	return "agentic-identity/device/" + deviceID
}

// EncryptionContext builds the derivation path for the identity file's
// at-rest encryption key.
func EncryptionContext() string {
	return "agentic-identity/encryption"
}

// RevocationContext builds the derivation path for a trust grant's
// revocation key.
func RevocationContext(trustID string) string {
	return "agentic-identity/revocation/" + trustID
}
