package trust

import (
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// ID is an "atrust_"-prefixed trust grant identifier.
type ID string

// Grant is a signed, scoped delegation of capabilities from one identity
// (the grantor) to another (the grantee), optionally re-delegable up to a
// bounded depth and revocable via RevocationConfig.
type Grant struct {
	ID                  ID           `json:"id"`
	Grantor             identity.ID  `json:"grantor"`
	GrantorKey          string       `json:"grantor_key"`
	Grantee             identity.ID  `json:"grantee"`
	GranteeKey          string       `json:"grantee_key"`
	Capabilities        []Capability `json:"capabilities"`
	Constraints         *Constraints `json:"constraints,omitempty"`
	DelegationAllowed   bool         `json:"delegation_allowed"`
	MaxDelegationDepth  *uint32      `json:"max_delegation_depth,omitempty"`
	ParentGrant         *ID          `json:"parent_grant,omitempty"`
	DelegationDepth     uint32       `json:"delegation_depth"`
	Revocation          *RevocationConfig `json:"revocation,omitempty"`
	GrantedAt           uint64       `json:"granted_at"`
	GrantHash           string       `json:"grant_hash"`
	GrantorSignature    string       `json:"grantor_signature"`
	GranteeAcknowledgment *string    `json:"grantee_acknowledgment,omitempty"`
}

// VerifySignature checks the grantor's signature over the grant hash.
func (g *Grant) VerifySignature() error {
	pub, err := aicrypto.PublicKeyFromBase64(g.GrantorKey)
	if err != nil {
		return xerrors.Wrap(xerrors.KindCrypto, "trust.Grant.VerifySignature", err)
	}
	if err := aicrypto.VerifyFromBase64(pub, []byte(g.GrantHash), g.GrantorSignature); err != nil {
		return xerrors.Wrap(xerrors.KindCrypto, "trust.Grant.VerifySignature", err)
	}
	return nil
}

// Acknowledge has the grantee sign an acknowledgment of this grant.
func (g *Grant) Acknowledge(granteeKeys *aicrypto.KeyPair) {
	msg := fmt.Sprintf("ack:%s:%s", g.ID, g.GrantHash)
	ack := aicrypto.SignToBase64(granteeKeys, []byte(msg))
	g.GranteeAcknowledgment = &ack
}

// Builder constructs a Grant step by step; Sign finalizes it.
type Builder struct {
	grantor            identity.ID
	grantorKeys        *aicrypto.KeyPair
	grantee            identity.ID
	granteeKey         string
	capabilities       []Capability
	constraints        *Constraints
	delegationAllowed  bool
	maxDelegationDepth *uint32
	parentGrant        *ID
	delegationDepth    uint32
}

// NewBuilder starts building a grant from grantor to grantee.
func NewBuilder(grantor identity.ID, grantorKeys *aicrypto.KeyPair, grantee identity.ID, granteeKey string, capabilities []Capability) *Builder {
	return &Builder{
		grantor:      grantor,
		grantorKeys:  grantorKeys,
		grantee:      grantee,
		granteeKey:   granteeKey,
		capabilities: capabilities,
	}
}

func (b *Builder) WithConstraints(c Constraints) *Builder {
	b.constraints = &c
	return b
}

func (b *Builder) AllowDelegation(maxDepth uint32) *Builder {
	b.delegationAllowed = true
	b.maxDelegationDepth = &maxDepth
	return b
}

// AsDelegationOf marks this grant as re-delegated from parent, at depth
// parentDepth+1.
func (b *Builder) AsDelegationOf(parent ID, parentDepth uint32) *Builder {
	b.parentGrant = &parent
	b.delegationDepth = parentDepth + 1
	return b
}

// Sign finalizes, hashes, and signs the grant.
func (b *Builder) Sign(clock aitime.Clock) (*Grant, error) {
	now := clock()
	grantorKey := aicrypto.PublicKeyToBase64(b.grantorKeys.PublicKey())

	capsJSON, err := aicrypto.CanonicalJSON(b.capabilities)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindEncoding, "trust.Grant.Sign", err)
	}
	constraintsJSON, err := aicrypto.CanonicalJSON(b.constraints)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindEncoding, "trust.Grant.Sign", err)
	}

	maxDepth := uint32(0)
	if b.maxDelegationDepth != nil {
		maxDepth = *b.maxDelegationDepth
	}

	hashInput := fmt.Sprintf("%s:%s:%s:%s:%s:%s:%t:%d:%d",
		b.grantor, grantorKey, b.grantee, b.granteeKey, capsJSON, constraintsJSON,
		b.delegationAllowed, maxDepth, now)
	grantHash := aicrypto.HexSHA256(hashInput)

	revKeyID := "revkey_" + string(b.grantor)[4:]

	grant := &Grant{
		ID:                 ID(aicrypto.DeriveID("atrust_", []byte(grantHash))),
		Grantor:            b.grantor,
		GrantorKey:         grantorKey,
		Grantee:            b.grantee,
		GranteeKey:         b.granteeKey,
		Capabilities:       b.capabilities,
		Constraints:        b.constraints,
		DelegationAllowed:  b.delegationAllowed,
		MaxDelegationDepth: b.maxDelegationDepth,
		ParentGrant:        b.parentGrant,
		DelegationDepth:    b.delegationDepth,
		Revocation: &RevocationConfig{
			RevocationKeyID:   revKeyID,
			RevocationChannel: LocalChannel(),
			RequiredWitnesses: 0,
		},
		GrantedAt:        now,
		GrantHash:        grantHash,
		GrantorSignature: aicrypto.SignToBase64(b.grantorKeys, []byte(grantHash)),
	}
	return grant, nil
}
