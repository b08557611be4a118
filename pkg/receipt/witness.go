package receipt

import (
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
)

// Witness is a third party's co-signature over a receipt hash — an
// independent attestation that the action happened, separate from the
// actor's own signature.
type Witness struct {
	WitnessID   identity.ID `json:"witness"`
	WitnessKey  string      `json:"witness_key"`
	Signature   string      `json:"signature"`
	WitnessedAt uint64      `json:"witnessed_at"`
}

// CreateWitness signs a witness co-signature over a receipt hash.
func CreateWitness(witnessID identity.ID, keys *aicrypto.KeyPair, receiptHash string, clock aitime.Clock) Witness {
	now := clock()
	toSign := fmt.Sprintf("witness:%s:%s:%d", witnessID, receiptHash, now)
	return Witness{
		WitnessID:   witnessID,
		WitnessKey:  aicrypto.PublicKeyToBase64(keys.PublicKey()),
		Signature:   aicrypto.SignToBase64(keys, []byte(toSign)),
		WitnessedAt: now,
	}
}

// verify checks a witness co-signature against the receipt hash it attests
// to. Returns false (not an error) on any malformed key or bad signature,
// matching the all-or-nothing boolean slice the original verification
// result carries.
func (w Witness) verify(receiptHash string) bool {
	pub, err := aicrypto.PublicKeyFromBase64(w.WitnessKey)
	if err != nil {
		return false
	}
	toVerify := fmt.Sprintf("witness:%s:%s:%d", w.WitnessID, receiptHash, w.WitnessedAt)
	return aicrypto.VerifyFromBase64(pub, []byte(toVerify), w.Signature) == nil
}
