package aicrypto

import (
	"crypto/ed25519"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// KeyPair is an Ed25519 signing key pair used for identity anchors, receipt
// signing, and every other Sign/Verify operation in the module.
type KeyPair struct {
	signing ed25519.PrivateKey
	public  ed25519.PublicKey
}

// GenerateKeyPair creates a new random Ed25519 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	return &KeyPair{signing: priv, public: pub}, nil
}

// KeyPairFromSeed reconstructs a key pair from a 32-byte Ed25519 seed, the
// same seed shape produced by HKDF derivation and by SigningKeyBytes.
func KeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("aicrypto: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &KeyPair{signing: priv, public: priv.Public().(ed25519.PublicKey)}, nil
}

// VerifyingKeyFromBytes parses a raw 32-byte Ed25519 public key.
func VerifyingKeyFromBytes(b []byte) (ed25519.PublicKey, error) {
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("aicrypto: verifying key must be %d bytes, got %d", ed25519.PublicKeySize, len(b))
	}
	return ed25519.PublicKey(b), nil
}

// Sign returns the raw Ed25519 signature over data.
func (k *KeyPair) Sign(data []byte) []byte {
	return ed25519.Sign(k.signing, data)
}

// PublicKey returns the Ed25519 verifying key.
func (k *KeyPair) PublicKey() ed25519.PublicKey { return k.public }

// SeedBytes returns the 32-byte seed backing this key pair. Callers that
// stash this in a long-lived buffer are responsible for zeroing it via
// Zeroize when done.
func (k *KeyPair) SeedBytes() []byte {
	return append([]byte(nil), k.signing.Seed()...)
}

// Zeroize overwrites sensitive key material in place. Go's garbage
// collector gives no hard guarantee the original allocation is gone, but
// this bounds the window a stale copy is live in buffers callers control
// directly.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// X25519KeyPair is a static Diffie-Hellman key pair used by the optional
// sealed-witness channel (SPEC_FULL.md's encrypted-witness extension).
type X25519KeyPair struct {
	secret [32]byte
	public [32]byte
}

// GenerateX25519KeyPair creates a new random X25519 key pair.
func GenerateX25519KeyPair() (*X25519KeyPair, error) {
	var secret [32]byte
	b, err := RandomBytes(32)
	if err != nil {
		return nil, err
	}
	copy(secret[:], b)
	var public [32]byte
	pub, err := curve25519.X25519(secret[:], curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	copy(public[:], pub)
	return &X25519KeyPair{secret: secret, public: public}, nil
}

// PublicKey returns the 32-byte X25519 public key.
func (k *X25519KeyPair) PublicKey() [32]byte { return k.public }

// DiffieHellman computes the shared secret with a peer's public key.
func (k *X25519KeyPair) DiffieHellman(peerPublic [32]byte) ([32]byte, error) {
	shared, err := curve25519.X25519(k.secret[:], peerPublic[:])
	if err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	copy(out[:], shared)
	return out, nil
}
