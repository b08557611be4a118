package trust

import (
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
)

// Channel describes how a revocation is propagated/discovered. Local means
// the revocation only lives in the local store; the others describe
// out-of-band channels a verifier might need to check.
type Channel struct {
	kind     string
	url      string
	ledgerID string
	multi    []Channel
}

func LocalChannel() Channel { return Channel{kind: "local"} }
func HTTPChannel(url string) Channel { return Channel{kind: "http", url: url} }
func LedgerChannel(ledgerID string) Channel { return Channel{kind: "ledger", ledgerID: ledgerID} }
func MultiChannel(channels ...Channel) Channel { return Channel{kind: "multi", multi: channels} }

// RevocationConfig names which key authorizes revocation of a grant and
// through which channel(s) that revocation is published.
type RevocationConfig struct {
	RevocationKeyID   string  `json:"revocation_key_id"`
	RevocationChannel Channel `json:"revocation_channel"`
	RequiredWitnesses int     `json:"required_witnesses"`
}

// Reason names why a grant was revoked. Custom(s) carries an arbitrary
// reason string.
type Reason struct{ tag string }

var (
	ReasonExpired          = Reason{"expired"}
	ReasonCompromised      = Reason{"compromised"}
	ReasonPolicyViolation  = Reason{"policy_violation"}
	ReasonManualRevocation = Reason{"manual_revocation"}
	ReasonGranteeRequest   = Reason{"grantee_request"}
)

// CustomReason builds an arbitrary revocation reason.
func CustomReason(s string) Reason { return Reason{s} }

func (r Reason) String() string { return r.tag }

// Revocation is a signed record that a trust grant has been revoked.
type Revocation struct {
	TrustID   string     `json:"trust_id"`
	Revoker   identity.ID `json:"revoker"`
	RevokerKey string    `json:"revoker_key"`
	RevokedAt uint64     `json:"revoked_at"`
	Reason    string     `json:"reason"`
	Signature string     `json:"signature"`
	Witnesses []Witness  `json:"witnesses"`
}

// Witness is a co-signature over a revocation, structurally identical to a
// receipt witness but kept local to this package since a trust grant's
// revocation is never itself a receipt.
type Witness struct {
	WitnessID   identity.ID `json:"witness"`
	WitnessKey  string      `json:"witness_key"`
	Signature   string      `json:"signature"`
	WitnessedAt uint64      `json:"witnessed_at"`
}

// CreateRevocation signs a new revocation of trustID by revoker.
func CreateRevocation(trustID string, revoker identity.ID, keys *aicrypto.KeyPair, reason Reason, clock aitime.Clock) Revocation {
	now := clock()
	toSign := fmt.Sprintf("revoke:%s:%s:%d:%s", trustID, revoker, now, reason.String())
	return Revocation{
		TrustID:    trustID,
		Revoker:    revoker,
		RevokerKey: aicrypto.PublicKeyToBase64(keys.PublicKey()),
		RevokedAt:  now,
		Reason:     reason.String(),
		Signature:  aicrypto.SignToBase64(keys, []byte(toSign)),
	}
}
