package trust

import (
	"github.com/agentralabs/agentic-identity/pkg/aitime"
)

// Verification is the result of checking a single trust grant against a
// requested capability, a point in time, and a set of known revocations.
// Each check is reported independently; IsValid is their conjunction.
type Verification struct {
	SignatureValid    bool
	TimeValid         bool
	NotRevoked        bool
	UsesValid         bool
	CapabilityGranted bool
	TrustChain        []ID
	IsValid           bool
	VerifiedAt        uint64
}

// VerifyGrant checks a single grant's signature, time validity, revocation
// status, and capability coverage for requestedCapability. currentUses
// lets a caller supply an external use counter; uses-validity is always
// true if the grant carries no max-uses constraint.
func VerifyGrant(grant *Grant, requestedCapability string, currentUses uint64, revocations []Revocation, clock aitime.Clock) Verification {
	now := clock()

	sigValid := grant.VerifySignature() == nil

	timeValid := true
	usesValid := true
	if grant.Constraints != nil {
		timeValid = grant.Constraints.IsTimeValid(now)
		usesValid = grant.Constraints.IsWithinUses(currentUses)
	}

	notRevoked := true
	for _, rev := range revocations {
		if rev.TrustID == string(grant.ID) {
			notRevoked = false
			break
		}
	}

	capGranted := CapabilitiesCover(grant.Capabilities, requestedCapability)

	isValid := sigValid && timeValid && notRevoked && usesValid && capGranted

	return Verification{
		SignatureValid:    sigValid,
		TimeValid:         timeValid,
		NotRevoked:        notRevoked,
		UsesValid:         usesValid,
		CapabilityGranted: capGranted,
		TrustChain:        []ID{grant.ID},
		IsValid:           isValid,
		VerifiedAt:        now,
	}
}

// IsGrantValid is a convenience boolean wrapper around VerifyGrant.
func IsGrantValid(grant *Grant, requestedCapability string, currentUses uint64, revocations []Revocation, clock aitime.Clock) bool {
	return VerifyGrant(grant, requestedCapability, currentUses, revocations, clock).IsValid
}
