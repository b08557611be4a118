package receipt

import (
	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// Verification is the result of checking a receipt's signature and its
// witnesses. ChainValid is always nil as returned by Verify; chain linkage
// is checked only by VerifyChain, which returns an error instead. Like every
// verification result in this module it is a verdict struct: individual
// checks are reported independently rather than raising on the first
// failure.
type Verification struct {
	SignatureValid bool
	ChainValid     *bool
	WitnessesValid []bool
	IsValid        bool
	VerifiedAt     uint64
}

// Verify checks a receipt's actor signature and any witness co-signatures.
// It does not check chain linkage — that requires the rest of the chain
// and is done by VerifyChain.
func Verify(r *ActionReceipt, clock aitime.Clock) (Verification, error) {
	now := clock()

	pub, err := aicrypto.PublicKeyFromBase64(r.ActorKey)
	if err != nil {
		return Verification{}, xerrors.Wrap(xerrors.KindCrypto, "receipt.Verify", err)
	}

	sigValid := aicrypto.VerifyFromBase64(pub, []byte(r.ReceiptHash), r.Signature) == nil

	witnessesValid := make([]bool, len(r.Witnesses))
	allWitnessesOK := true
	for i, w := range r.Witnesses {
		ok := w.verify(r.ReceiptHash)
		witnessesValid[i] = ok
		if !ok {
			allWitnessesOK = false
		}
	}

	return Verification{
		SignatureValid: sigValid,
		ChainValid:     nil,
		WitnessesValid: witnessesValid,
		IsValid:        sigValid && allWitnessesOK,
		VerifiedAt:     now,
	}, nil
}
