package aicrypto

import (
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Argon2id cost parameters for passphrase-based key derivation. These are
// fixed constants with no override path (config.Config's
// Argon2TestOverrideMemoryKiB is not read here), so a misconfigured deploy
// can't silently weaken the identity file's at-rest protection.
const (
	argon2MemoryKiB  = 65536 // 64 MiB
	argon2Iterations = 3
	argon2Lanes      = 4
	argon2KeyLen     = 32
)

// DerivePassphraseKey derives a 32-byte encryption key from a passphrase and
// a 16-byte salt using Argon2id.
func DerivePassphraseKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argon2Iterations, argon2MemoryKiB, argon2Lanes, argon2KeyLen)
}

// Encrypt seals plaintext under key with ChaCha20-Poly1305, returning the
// random 12-byte nonce and the ciphertext (nonce must travel alongside it).
func Encrypt(key, plaintext []byte) (nonce, ciphertext []byte, err error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, fmt.Errorf("aicrypto: cipher init: %w", err)
	}
	nonce, err = RandomBytes(chacha20poly1305.NonceSize)
	if err != nil {
		return nil, nil, err
	}
	return nonce, aead.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext under key and nonce.
func Decrypt(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("aicrypto: cipher init: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("aicrypto: decryption failed (wrong passphrase or tampered data)")
	}
	return plaintext, nil
}

// EncryptWithPassphrase derives a key from passphrase via Argon2id over a
// fresh random salt, then seals plaintext. Returns (salt, nonce, ciphertext).
func EncryptWithPassphrase(passphrase, plaintext []byte) (salt, nonce, ciphertext []byte, err error) {
	salt, err = RandomBytes(16)
	if err != nil {
		return nil, nil, nil, err
	}
	key := DerivePassphraseKey(passphrase, salt)
	defer Zeroize(key)
	nonce, ciphertext, err = Encrypt(key, plaintext)
	return salt, nonce, ciphertext, err
}

// DecryptWithPassphrase re-derives the key from passphrase and salt, then
// opens ciphertext.
func DecryptWithPassphrase(passphrase, salt, nonce, ciphertext []byte) ([]byte, error) {
	key := DerivePassphraseKey(passphrase, salt)
	defer Zeroize(key)
	return Decrypt(key, nonce, ciphertext)
}
