package trust

import (
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// VerifyChain walks a delegation chain (root grant first, most-delegated
// grant last) and verifies every link: each grant's own signature/time/
// revocation/capability checks, plus the structural delegation rules
// between consecutive links (the parent must allow delegation, the
// child's delegation depth must not exceed the parent's max, and the
// child's grantor must be the parent's grantee). Structural violations are
// hard errors — a malformed chain isn't a policy failure, it's invalid
// input — while the per-grant checks are folded into the returned verdict.
func VerifyChain(chain []*Grant, requestedCapability string, revocations []Revocation, clock aitime.Clock) (Verification, error) {
	if len(chain) == 0 {
		return Verification{}, xerrors.New(xerrors.KindInvalidChain, "trust.VerifyChain", "empty trust chain")
	}

	now := clock()
	signatureValid := true
	timeValid := true
	notRevoked := true
	capabilityGranted := true
	trustChain := make([]ID, 0, len(chain))

	for i, grant := range chain {
		v := VerifyGrant(grant, requestedCapability, 0, revocations, clock)
		signatureValid = signatureValid && v.SignatureValid
		timeValid = timeValid && v.TimeValid
		notRevoked = notRevoked && v.NotRevoked
		if i == len(chain)-1 {
			capabilityGranted = v.CapabilityGranted
		}
		trustChain = append(trustChain, grant.ID)

		if i > 0 {
			parent := chain[i-1]
			if !parent.DelegationAllowed {
				return Verification{}, xerrors.New(xerrors.KindDelegationNotAllowed, "trust.VerifyChain", "delegation not allowed by parent grant")
			}
			maxDepth := uint32(0)
			if parent.MaxDelegationDepth != nil {
				maxDepth = *parent.MaxDelegationDepth
			}
			if grant.DelegationDepth > maxDepth {
				return Verification{}, xerrors.New(xerrors.KindDelegationDepthExceeded, "trust.VerifyChain", "delegation depth exceeded")
			}
			if grant.Grantor != parent.Grantee {
				return Verification{}, xerrors.New(xerrors.KindInvalidChain, "trust.VerifyChain", "grantor does not match parent grant's grantee")
			}
		}
	}

	isValid := signatureValid && timeValid && notRevoked && capabilityGranted

	return Verification{
		SignatureValid:    signatureValid,
		TimeValid:         timeValid,
		NotRevoked:        notRevoked,
		UsesValid:         true,
		CapabilityGranted: capabilityGranted,
		TrustChain:        trustChain,
		IsValid:           isValid,
		VerifiedAt:        now,
	}, nil
}

// ValidateDelegation checks, before creating a new delegated grant, that
// parent actually permits delegating the requested capabilities: parent
// must allow delegation, and every requested capability must already be
// covered by parent.
func ValidateDelegation(parent *Grant, requestedCapabilities []string) error {
	if !parent.DelegationAllowed {
		return xerrors.New(xerrors.KindDelegationNotAllowed, "trust.ValidateDelegation", "parent grant does not allow delegation")
	}
	if !CapabilitiesCoverAll(parent.Capabilities, requestedCapabilities) {
		return xerrors.New(xerrors.KindTrustNotGranted, "trust.ValidateDelegation", "requested capabilities exceed parent grant")
	}
	return nil
}
