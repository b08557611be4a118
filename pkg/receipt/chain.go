package receipt

import (
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// VerifyChain checks an ordered (oldest-to-newest) sequence of receipts:
// every signature must be valid, and every receipt after the first must
// chain to its immediate predecessor's ID. An empty chain is trivially
// valid. This is a hard error, not a verdict — a broken chain means the
// caller handed in the wrong data, not that an action failed some policy
// check.
func VerifyChain(chain []*ActionReceipt, clock aitime.Clock) error {
	if len(chain) == 0 {
		return nil
	}

	for i, r := range chain {
		v, err := Verify(r, clock)
		if err != nil {
			return err
		}
		if !v.SignatureValid {
			return xerrors.New(xerrors.KindInvalidChain, "receipt.VerifyChain", "invalid signature in chain")
		}

		if i > 0 {
			expectedPrev := chain[i-1].ID
			if r.PreviousReceipt == nil || *r.PreviousReceipt != expectedPrev {
				return xerrors.New(xerrors.KindInvalidChain, "receipt.VerifyChain", "broken chain link")
			}
		}
	}

	return nil
}
