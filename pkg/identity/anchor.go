package identity

import (
	"encoding/json"
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// ID is the base58-encoded, content-derived identifier of an identity
// anchor: "aid_" + base58(SHA256(verifying key bytes)[:16]). It is stable
// across key rotation only in the sense that rotation produces a *new*
// anchor with its own ID chained back to the old one via RotationHistory;
// the ID itself is always a function of the *current* public key.
type ID string

// IDFromVerifyingKey derives the canonical identity ID for a public key.
func IDFromVerifyingKey(pub []byte) ID {
	return ID(aicrypto.DeriveID("aid_", pub))
}

// RotationReason records why a key rotation occurred. Carried on the
// rotation record itself so a verifier can weigh a "compromised" rotation
// differently from a "scheduled" one.
type RotationReason string

const (
	RotationScheduled      RotationReason = "scheduled"
	RotationCompromised    RotationReason = "compromised"
	RotationDeviceLost     RotationReason = "device_lost"
	RotationPolicyRequired RotationReason = "policy_required"
	RotationManual         RotationReason = "manual"
)

// KeyRotation is one link in an anchor's rotation history: the old key
// attests to the new one. AuthorizationSignature is produced by the OLD
// signing key, never the new one — the point of the chain is that
// possession of the old key is what authorizes the handover.
type KeyRotation struct {
	PreviousKey            string         `json:"previous_key"`
	NewKey                 string         `json:"new_key"`
	RotatedAt              uint64         `json:"rotated_at"`
	Reason                 RotationReason `json:"reason"`
	AuthorizationSignature string         `json:"authorization_signature"`
}

// PublicKeyRotation is the public-facing projection of a KeyRotation
// embedded in an IdentityDocument. Same shape, different name, so nobody
// is tempted to add anchor-private fields to the public type later.
type PublicKeyRotation struct {
	PreviousKey            string         `json:"previous_key"`
	NewKey                 string         `json:"new_key"`
	RotatedAt              uint64         `json:"rotated_at"`
	Reason                 RotationReason `json:"reason"`
	AuthorizationSignature string         `json:"authorization_signature"`
}

// AttestationClaim is the thing a third party is vouching for.
type AttestationClaim struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Org         string `json:"org,omitempty"`
	CustomType  string `json:"custom_type,omitempty"`
	CustomValue string `json:"custom_value,omitempty"`
}

const (
	ClaimKeyOwnership         = "key_ownership"
	ClaimNameVerification     = "name_verification"
	ClaimOrganizationMember   = "organization_membership"
	ClaimCustom               = "custom"
)

// Attestation is a signed claim an external identity makes about this
// anchor (e.g. "I verified this anchor's name").
type Attestation struct {
	Attester    ID                `json:"attester"`
	AttesterKey string            `json:"attester_key"`
	Claim       AttestationClaim  `json:"claim"`
	AttestedAt  uint64            `json:"attested_at"`
	Signature   string            `json:"signature"`
}

// Anchor is the cryptographic root of an agent's identity: an Ed25519 key
// pair plus the metadata needed to derive scoped keys and to prove a chain
// of custody across rotations. It intentionally does not hold a session,
// trust, or spawn state — those are separate engines that take an Anchor
// (or a derived key) as an input.
type Anchor struct {
	keys            *aicrypto.KeyPair
	createdAt       uint64
	name            *string
	rotationHistory []KeyRotation
}

// NewAnchor generates a fresh Ed25519 key pair and mints a new anchor.
func NewAnchor(name *string, clock aitime.Clock) (*Anchor, error) {
	kp, err := aicrypto.GenerateKeyPair()
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindCrypto, "identity.NewAnchor", err)
	}
	return &Anchor{
		keys:      kp,
		createdAt: clock(),
		name:      name,
	}, nil
}

// FromParts reconstructs an anchor from stored key material, used when
// loading an identity file back off disk.
func FromParts(signingKeySeed []byte, createdAt uint64, name *string, history []KeyRotation) (*Anchor, error) {
	kp, err := aicrypto.KeyPairFromSeed(signingKeySeed)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindCrypto, "identity.FromParts", err)
	}
	return &Anchor{
		keys:            kp,
		createdAt:       createdAt,
		name:            name,
		rotationHistory: history,
	}, nil
}

// ID returns the anchor's identifier, derived from its current public key.
func (a *Anchor) ID() ID {
	return IDFromVerifyingKey(a.keys.PublicKey())
}

// Keys exposes the underlying key pair for callers that need to sign
// directly (receipts, trust grants, spawn announcements).
func (a *Anchor) Keys() *aicrypto.KeyPair { return a.keys }

// CreatedAt returns the anchor's creation timestamp (microseconds).
func (a *Anchor) CreatedAt() uint64 { return a.createdAt }

// Name returns the anchor's human-readable label, if any.
func (a *Anchor) Name() *string { return a.name }

// RotationHistory returns the chain of past rotations that led to this
// anchor's current key.
func (a *Anchor) RotationHistory() []KeyRotation {
	out := make([]KeyRotation, len(a.rotationHistory))
	copy(out, a.rotationHistory)
	return out
}

// PublicKeyBase64 returns the anchor's current verifying key, base64-encoded
// the same way every *_key field on the wire is encoded.
func (a *Anchor) PublicKeyBase64() string {
	return aicrypto.PublicKeyToBase64(a.keys.PublicKey())
}

// DeriveSessionKey derives a session-scoped signing key from this anchor's
// root key material.
func (a *Anchor) DeriveSessionKey(sessionID string) (*aicrypto.KeyPair, error) {
	return aicrypto.DeriveSigningKey(a.keys.SeedBytes(), aicrypto.SessionContext(sessionID))
}

// DeriveCapabilityKey derives a capability-scoped signing key.
func (a *Anchor) DeriveCapabilityKey(capabilityURI string) (*aicrypto.KeyPair, error) {
	return aicrypto.DeriveSigningKey(a.keys.SeedBytes(), aicrypto.CapabilityContext(capabilityURI))
}

// DeriveDeviceKey derives a device-scoped signing key.
func (a *Anchor) DeriveDeviceKey(deviceID string) (*aicrypto.KeyPair, error) {
	return aicrypto.DeriveSigningKey(a.keys.SeedBytes(), aicrypto.DeviceContext(deviceID))
}

// DeriveRevocationKey derives the signing key used to authorize revocation
// of a specific trust grant.
func (a *Anchor) DeriveRevocationKey(trustID string) (*aicrypto.KeyPair, error) {
	return aicrypto.DeriveSigningKey(a.keys.SeedBytes(), aicrypto.RevocationContext(trustID))
}

// Rotate generates a brand-new key pair, has the CURRENT (soon to be old)
// key sign an authorization over the handover, and returns a new,
// independent Anchor carrying the extended rotation history. Rotation is
// functional, not in-place: the receiver is left untouched so a caller
// holding onto the pre-rotation anchor doesn't have its key pulled out
// from under it.
func (a *Anchor) Rotate(reason RotationReason, clock aitime.Clock) (*Anchor, error) {
	oldPub := a.PublicKeyBase64()
	newKP, err := aicrypto.GenerateKeyPair()
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindCrypto, "identity.Rotate", err)
	}
	newPub := aicrypto.PublicKeyToBase64(newKP.PublicKey())
	now := clock()
	authMsg := fmt.Sprintf("rotate:%s:%s:%d:%s", oldPub, newPub, now, reason)
	authSig := aicrypto.SignToBase64(a.keys, []byte(authMsg))

	history := append(a.RotationHistory(), KeyRotation{
		PreviousKey:            oldPub,
		NewKey:                 newPub,
		RotatedAt:              now,
		Reason:                 reason,
		AuthorizationSignature: authSig,
	})

	return &Anchor{
		keys:            newKP,
		createdAt:       a.createdAt,
		name:            a.name,
		rotationHistory: history,
	}, nil
}

// documentSignPayload is the exact, minimal field set that gets signed when
// self-signing an IdentityDocument. It deliberately excludes
// rotation_history, attestations, and signature itself — those can grow
// after signing (a document gains attestations over its life) without
// invalidating the original self-signature.
type documentSignPayload struct {
	ID        ID      `json:"id"`
	PublicKey string  `json:"public_key"`
	Algorithm string  `json:"algorithm"`
	CreatedAt uint64  `json:"created_at"`
	Name      *string `json:"name"`
}

// Document is the publishable, shareable form of an anchor: its current
// public key, rotation history, and any attestations, self-signed so a
// holder can prove the document hasn't been tampered with in transit.
type Document struct {
	ID              ID                   `json:"id"`
	PublicKey       string               `json:"public_key"`
	Algorithm       string               `json:"algorithm"`
	CreatedAt       uint64               `json:"created_at"`
	Name            *string              `json:"name"`
	RotationHistory []PublicKeyRotation  `json:"rotation_history"`
	Attestations    []Attestation        `json:"attestations"`
	Signature       string               `json:"signature"`
}

// ToDocument builds and self-signs the publishable document for this
// anchor.
func (a *Anchor) ToDocument() (Document, error) {
	publicRotations := make([]PublicKeyRotation, len(a.rotationHistory))
	for i, r := range a.rotationHistory {
		publicRotations[i] = PublicKeyRotation(r)
	}

	doc := Document{
		ID:              a.ID(),
		PublicKey:       a.PublicKeyBase64(),
		Algorithm:       "ed25519",
		CreatedAt:       a.createdAt,
		Name:            a.name,
		RotationHistory: publicRotations,
		Attestations:    []Attestation{},
	}

	payload := documentSignPayload{
		ID:        doc.ID,
		PublicKey: doc.PublicKey,
		Algorithm: doc.Algorithm,
		CreatedAt: doc.CreatedAt,
		Name:      doc.Name,
	}
	toSign, err := json.Marshal(payload)
	if err != nil {
		return Document{}, xerrors.Wrap(xerrors.KindEncoding, "identity.ToDocument", err)
	}
	doc.Signature = aicrypto.SignToBase64(a.keys, toSign)
	return doc, nil
}

// VerifySignature checks a document's self-signature against its current
// public key, reconstructing the same minimal payload that was originally
// signed.
func (d Document) VerifySignature() error {
	pub, err := aicrypto.PublicKeyFromBase64(d.PublicKey)
	if err != nil {
		return xerrors.Wrap(xerrors.KindCrypto, "identity.Document.VerifySignature", err)
	}
	payload := documentSignPayload{
		ID:        d.ID,
		PublicKey: d.PublicKey,
		Algorithm: d.Algorithm,
		CreatedAt: d.CreatedAt,
		Name:      d.Name,
	}
	toSign, err := json.Marshal(payload)
	if err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, "identity.Document.VerifySignature", err)
	}
	if err := aicrypto.VerifyFromBase64(pub, toSign, d.Signature); err != nil {
		return xerrors.Wrap(xerrors.KindCrypto, "identity.Document.VerifySignature", err)
	}
	return nil
}
