// Package xerrors defines the single typed error used across the identity
// module's engines. Verification failures are not represented here — those
// are carried as verdict structs with per-check booleans; this type is for
// operations that genuinely cannot proceed (bad input, missing record,
// storage failure).
package xerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an Error by the subsystem that raised it.
type Kind string

const (
	KindCrypto     Kind = "crypto"
	KindTrust      Kind = "trust"
	KindChain      Kind = "chain"
	KindCompetence Kind = "competence"
	KindNegative   Kind = "negative"
	KindStorage    Kind = "storage"
	KindEncoding   Kind = "encoding"
	KindNotFound   Kind = "not_found"

	// The trust/delegation subsystem's coarse KindTrust and KindChain are
	// kept as fallbacks for technical failures (e.g. a malformed CEL
	// expression) that don't correspond to one of the business-rule
	// variants below. Everything a caller would plausibly branch on gets
	// its own kind, mirroring the original engine's error enum.
	KindTrustNotGranted         Kind = "trust_not_granted"
	KindTrustRevoked            Kind = "trust_revoked"
	KindTrustExpired            Kind = "trust_expired"
	KindTrustNotYetValid        Kind = "trust_not_yet_valid"
	KindMaxUsesExceeded         Kind = "max_uses_exceeded"
	KindDelegationNotAllowed    Kind = "delegation_not_allowed"
	KindDelegationDepthExceeded Kind = "delegation_depth_exceeded"
	KindInvalidChain            Kind = "invalid_chain"
)

// Error is the typed error returned by every exported operation in this
// module. Op names the failing operation (e.g. "receipt.Sign"); Err is the
// wrapped cause, if any.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with no wrapped cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Wrap builds an Error wrapping an existing cause.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
