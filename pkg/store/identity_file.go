// Package store implements the on-disk persistence contract: an encrypted
// identity file for an anchor's private key material, and generic
// per-record JSON stores for receipts, grants, spawn records, and
// revocations.
package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// Stable compatibility constants for the identity file format. These are
// part of the external contract and must never change meaning, only gain
// new accepted values over time.
const (
	IdentityFileVersion   = 1
	IdentityFileFormat    = "aid-v1"
	EncryptionAlgorithm   = "chacha20-poly1305"
	KDFName               = "argon2id"
	EncryptionInfoContext = "identity-encryption"
)

// encryptionEnvelope describes how encryptedAnchorB64 was sealed.
type encryptionEnvelope struct {
	Algorithm string `json:"algorithm"`
	KDF       string `json:"kdf"`
	SaltB64   string `json:"salt_b64"`
	NonceB64  string `json:"nonce_b64"`
}

// identityFile is the on-disk JSON shape of a ".aid" file.
type identityFile struct {
	Version            int                `json:"version"`
	Format             string             `json:"format"`
	Encryption         encryptionEnvelope `json:"encryption"`
	EncryptedAnchorB64 string             `json:"encrypted_anchor_b64"`
	PublicDocument     identity.Document  `json:"public_document"`
}

// privateBlob is the plaintext JSON sealed inside the identity file's
// encrypted_anchor_b64 field.
type privateBlob struct {
	SigningKeyB64   string                   `json:"signing_key_b64"`
	CreatedAt       uint64                   `json:"created_at"`
	Name            *string                  `json:"name,omitempty"`
	RotationHistory []identity.KeyRotation   `json:"rotation_history"`
}

// SaveIdentity writes anchor's signing key material, encrypted under
// passphrase via Argon2id + ChaCha20-Poly1305, to path, alongside its
// plaintext public Document. The write is atomic: a sibling temp file is
// written first, then renamed over path.
func SaveIdentity(path string, anchor *identity.Anchor, passphrase string) error {
	const op = "store.SaveIdentity"

	blob := privateBlob{
		SigningKeyB64:   base64.StdEncoding.EncodeToString(anchor.Keys().SeedBytes()),
		CreatedAt:       anchor.CreatedAt(),
		Name:            anchor.Name(),
		RotationHistory: anchor.RotationHistory(),
	}
	plaintext, err := json.Marshal(blob)
	if err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}

	salt, nonce, ciphertext, err := aicrypto.EncryptWithPassphrase([]byte(passphrase), plaintext)
	if err != nil {
		return xerrors.Wrap(xerrors.KindCrypto, op, err)
	}

	doc, err := anchor.ToDocument()
	if err != nil {
		return xerrors.Wrap(xerrors.KindCrypto, op, err)
	}

	file := identityFile{
		Version: IdentityFileVersion,
		Format:  IdentityFileFormat,
		Encryption: encryptionEnvelope{
			Algorithm: EncryptionAlgorithm,
			KDF:       KDFName,
			SaltB64:   base64.StdEncoding.EncodeToString(salt),
			NonceB64:  base64.StdEncoding.EncodeToString(nonce),
		},
		EncryptedAnchorB64: base64.StdEncoding.EncodeToString(ciphertext),
		PublicDocument:     doc,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}

	return atomicWrite(path, data)
}

// LoadIdentity reads and decrypts an identity file, reconstructing the
// anchor. A wrong passphrase surfaces as KindCrypto with a message
// distinguishable from a generic I/O or format error — the AEAD
// authentication tag failing is exactly what signals it.
func LoadIdentity(path, passphrase string) (*identity.Anchor, error) {
	const op = "store.LoadIdentity"

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.New(xerrors.KindNotFound, op, "identity file not found: "+path)
		}
		return nil, xerrors.Wrap(xerrors.KindStorage, op, err)
	}

	var file identityFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	if file.Format != IdentityFileFormat {
		return nil, xerrors.New(xerrors.KindEncoding, op, "unrecognized identity file format: "+file.Format)
	}

	salt, err := base64.StdEncoding.DecodeString(file.Encryption.SaltB64)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(file.Encryption.NonceB64)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(file.EncryptedAnchorB64)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}

	plaintext, err := aicrypto.DecryptWithPassphrase([]byte(passphrase), salt, nonce, ciphertext)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindCrypto, op, fmt.Errorf("invalid passphrase or corrupted identity file: %w", err))
	}

	var blob privateBlob
	if err := json.Unmarshal(plaintext, &blob); err != nil {
		return nil, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}

	seed, err := base64.StdEncoding.DecodeString(blob.SigningKeyB64)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}

	anchor, err := identity.FromParts(seed, blob.CreatedAt, blob.Name, blob.RotationHistory)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindCrypto, op, err)
	}
	return anchor, nil
}

// atomicWrite writes data to path via a sibling temp file and rename, so a
// crash mid-write never leaves a half-written file at path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return xerrors.Wrap(xerrors.KindStorage, "store.atomicWrite", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return xerrors.Wrap(xerrors.KindStorage, "store.atomicWrite", err)
	}
	if err := tmp.Close(); err != nil {
		return xerrors.Wrap(xerrors.KindStorage, "store.atomicWrite", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return xerrors.Wrap(xerrors.KindStorage, "store.atomicWrite", err)
	}
	return nil
}
