package identity

import (
	"crypto/ed25519"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// SessionClaims is the JWT payload minted by ExportSessionToken. It carries
// no authority of its own beyond "this bearer holds the derived session
// key for anchor at sessionID" — capability is still checked against a
// trust.Grant, not against anything in this token.
type SessionClaims struct {
	jwt.RegisteredClaims
	AnchorID  string `json:"anchor_id"`
	SessionID string `json:"session_id"`
}

// ExportSessionToken derives the session key for sessionID (per
// DeriveSessionKey, spec.md §4.1) and mints a short-lived EdDSA JWT bound
// to it, for hosts that want to hand a sub-process a bearer token rather
// than raw key material. The derived key never leaves this call except as
// the token's signature; the sub-process only receives the signed string.
func (a *Anchor) ExportSessionToken(sessionID string, ttl time.Duration, now time.Time) (string, error) {
	const op = "identity.Anchor.ExportSessionToken"

	sessionKey, err := a.DeriveSessionKey(sessionID)
	if err != nil {
		return "", xerrors.Wrap(xerrors.KindCrypto, op, err)
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(a.ID()),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		AnchorID:  string(a.ID()),
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(ed25519.NewKeyFromSeed(sessionKey.SeedBytes()))
	if err != nil {
		return "", xerrors.Wrap(xerrors.KindCrypto, op, err)
	}
	return signed, nil
}

// VerifySessionToken checks a token minted by ExportSessionToken against
// the anchor's re-derived session key for sessionID (derivation is
// deterministic, so no key storage is required to verify).
func (a *Anchor) VerifySessionToken(tokenString, sessionID string) (*SessionClaims, error) {
	const op = "identity.Anchor.VerifySessionToken"

	sessionKey, err := a.DeriveSessionKey(sessionID)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindCrypto, op, err)
	}
	pub := ed25519.NewKeyFromSeed(sessionKey.SeedBytes()).Public()

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, xerrors.New(xerrors.KindCrypto, op, "unexpected signing method")
		}
		return pub, nil
	})
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindCrypto, op, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, xerrors.New(xerrors.KindCrypto, op, "invalid session token")
	}
	return claims, nil
}
