package trust

import (
	"context"
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/observability"
)

// VerifyGrantObserved wraps VerifyGrant with a Monitor span, RED-metric
// sample, SLO observation, and audit-timeline entry. mon may be nil, in
// which case this behaves exactly like VerifyGrant.
func VerifyGrantObserved(ctx context.Context, mon *observability.Monitor, grant *Grant, requestedCapability string, currentUses uint64, revocations []Revocation, clock aitime.Clock) Verification {
	finish := mon.Track(ctx, "trust.verify", string(grant.Grantor), observability.EntryTypeDecision,
		fmt.Sprintf("verify grant %s for %s", grant.ID, requestedCapability),
		observability.TrustOperation(string(grant.ID), requestedCapability, "pending", 0)...)

	v := VerifyGrant(grant, requestedCapability, currentUses, revocations, clock)

	var err error
	if !v.IsValid {
		err = fmt.Errorf("grant %s denied for %s", grant.ID, requestedCapability)
	}
	finish(err)
	return v
}

// VerifyChainObserved wraps VerifyChain the same way VerifyGrantObserved
// wraps VerifyGrant.
func VerifyChainObserved(ctx context.Context, mon *observability.Monitor, chain []*Grant, requestedCapability string, revocations []Revocation, clock aitime.Clock) (Verification, error) {
	var actor string
	if len(chain) > 0 {
		actor = string(chain[0].Grantor)
	}
	finish := mon.Track(ctx, "trust.verify_chain", actor, observability.EntryTypeDecision,
		fmt.Sprintf("verify %d-link chain for %s", len(chain), requestedCapability),
		observability.TrustOperation("", requestedCapability, "pending", 0)...)

	v, err := VerifyChain(chain, requestedCapability, revocations, clock)
	outcome := err
	if outcome == nil && !v.IsValid {
		outcome = fmt.Errorf("chain denied for %s", requestedCapability)
	}
	finish(outcome)
	return v, err
}
