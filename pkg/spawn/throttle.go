package spawn

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// ThrottledLineageWalker wraps VerifyLineage with a token-bucket limiter
// for hosts walking lineage over a spawn-record set supplied by an
// untrusted source, mirroring trust.ThrottledChainVerifier.
type ThrottledLineageWalker struct {
	limiter *rate.Limiter
}

// NewThrottledLineageWalker builds a limiter allowing burst lineage walks
// up to burst, refilling at r per second.
func NewThrottledLineageWalker(r rate.Limit, burst int) *ThrottledLineageWalker {
	return &ThrottledLineageWalker{limiter: rate.NewLimiter(r, burst)}
}

// VerifyLineage blocks until the limiter admits another walk (or ctx is
// cancelled), then delegates to spawn.VerifyLineage.
func (t *ThrottledLineageWalker) VerifyLineage(ctx context.Context, id identity.ID, spawnRecords []*Record, clock aitime.Clock) (LineageVerification, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return LineageVerification{}, xerrors.Wrap(xerrors.KindChain, "spawn.ThrottledLineageWalker.VerifyLineage", err)
	}
	return VerifyLineage(id, spawnRecords, clock), nil
}
