package trust

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// ThrottledChainVerifier wraps VerifyChain with a token-bucket limiter, for
// hosts that walk long delegation chains supplied by an untrusted caller
// and want to bound the CPU spent verifying them per unit time. The core
// verification logic is unchanged; this only gates how often it may run.
type ThrottledChainVerifier struct {
	limiter *rate.Limiter
}

// NewThrottledChainVerifier builds a limiter allowing burst chain
// verifications up to burst, refilling at r per second.
func NewThrottledChainVerifier(r rate.Limit, burst int) *ThrottledChainVerifier {
	return &ThrottledChainVerifier{limiter: rate.NewLimiter(r, burst)}
}

// VerifyChain blocks until the limiter admits another verification (or ctx
// is cancelled), then delegates to trust.VerifyChain.
func (t *ThrottledChainVerifier) VerifyChain(ctx context.Context, chain []*Grant, requestedCapability string, revocations []Revocation, clock aitime.Clock) (Verification, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return Verification{}, xerrors.Wrap(xerrors.KindChain, "trust.ThrottledChainVerifier.VerifyChain", err)
	}
	return VerifyChain(chain, requestedCapability, revocations, clock)
}
