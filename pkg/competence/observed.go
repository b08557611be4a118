package competence

import (
	"context"
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/observability"
)

// GenerateProofObserved wraps GenerateProof with a Monitor span, RED-metric
// sample, SLO observation, and audit-timeline entry. mon may be nil, in
// which case this behaves exactly like GenerateProof.
func GenerateProofObserved(ctx context.Context, mon *observability.Monitor, anchor *identity.Anchor, domain Domain, minAttempts uint64, minSuccessRate float32, minStreak *uint32, validDurationSeconds *uint64, attempts []*Attempt, clock aitime.Clock) (*Proof, error) {
	finish := mon.Track(ctx, "competence.generate_proof", string(anchor.ID()), observability.EntryTypeProof,
		fmt.Sprintf("generate competence proof for %s in %s", anchor.ID(), domain),
		observability.AttrIdentityID.String(string(anchor.ID())))

	proof, err := GenerateProof(anchor, domain, minAttempts, minSuccessRate, minStreak, validDurationSeconds, attempts, clock)
	finish(err)
	return proof, err
}
