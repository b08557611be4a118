package aicrypto

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// SignToBase64 signs data and returns the standard-base64 encoding of the
// raw signature. Every signed preimage in this module is an ASCII string
// (a hex digest or a colon-joined field list), never raw binary, so the
// signature itself is the only place base64 is needed.
func SignToBase64(k *KeyPair, data []byte) string {
	return base64.StdEncoding.EncodeToString(k.Sign(data))
}

// VerifyFromBase64 checks a base64-encoded signature against data.
func VerifyFromBase64(pub ed25519.PublicKey, data []byte, sigB64 string) error {
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("aicrypto: invalid base64 signature: %w", err)
	}
	if !ed25519.Verify(pub, data, sig) {
		return fmt.Errorf("aicrypto: signature verification failed")
	}
	return nil
}

// PublicKeyToBase64 encodes a public key the same way every *_key field in
// this module is encoded on the wire.
func PublicKeyToBase64(pub ed25519.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub)
}

// PublicKeyFromBase64 decodes a base64-encoded, 32-byte Ed25519 public key.
func PublicKeyFromBase64(s string) (ed25519.PublicKey, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("aicrypto: invalid base64 key: %w", err)
	}
	return VerifyingKeyFromBytes(b)
}
