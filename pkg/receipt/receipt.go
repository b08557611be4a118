package receipt

import (
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// ID is an "arec_"-prefixed receipt identifier, derived from the receipt's
// own content hash.
type ID string

// ActionReceipt is signed proof that an identity anchor took an action.
// Receipts form a chain via PreviousReceipt, and can carry zero or more
// independent witness co-signatures.
type ActionReceipt struct {
	ID              ID         `json:"id"`
	Actor           identity.ID `json:"actor"`
	ActorKey        string     `json:"actor_key"`
	ActionType      ActionType `json:"action_type"`
	Action          Content    `json:"action"`
	Timestamp       uint64     `json:"timestamp"`
	ContextHash     *string    `json:"context_hash,omitempty"`
	PreviousReceipt *ID        `json:"previous_receipt,omitempty"`
	ReceiptHash     string     `json:"receipt_hash"`
	Signature       string     `json:"signature"`
	Witnesses       []Witness  `json:"witnesses"`
}

// AddWitness appends a witness co-signature to the receipt.
func (r *ActionReceipt) AddWitness(w Witness) {
	r.Witnesses = append(r.Witnesses, w)
}

// Builder constructs an ActionReceipt step by step, mirroring the
// original's builder pattern: set optional fields, then Sign to finalize.
type Builder struct {
	actor           identity.ID
	actionType      ActionType
	action          Content
	contextHash     *string
	previousReceipt *ID
}

// NewBuilder starts building a receipt for an actor's action.
func NewBuilder(actor identity.ID, actionType ActionType, action Content) *Builder {
	return &Builder{actor: actor, actionType: actionType, action: action}
}

// ContextHash attaches a hash of relevant state at the time of the action.
func (b *Builder) ContextHash(hash string) *Builder {
	b.contextHash = &hash
	return b
}

// ChainTo links this receipt to a previous one.
func (b *Builder) ChainTo(previous ID) *Builder {
	b.previousReceipt = &previous
	return b
}

// Sign finalizes and signs the receipt with the actor's key pair.
func (b *Builder) Sign(keys *aicrypto.KeyPair, clock aitime.Clock) (*ActionReceipt, error) {
	now := clock()
	actorKey := aicrypto.PublicKeyToBase64(keys.PublicKey())

	actionJSON, err := aicrypto.CanonicalJSON(b.action)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindEncoding, "receipt.Sign", err)
	}

	contextHash := ""
	if b.contextHash != nil {
		contextHash = *b.contextHash
	}
	prevReceipt := ""
	if b.previousReceipt != nil {
		prevReceipt = string(*b.previousReceipt)
	}

	hashInput := fmt.Sprintf("%s:%s:%s:%s:%d:%s:%s",
		b.actor, actorKey, b.actionType.Tag(), actionJSON, now, contextHash, prevReceipt)
	receiptHash := aicrypto.HexSHA256(hashInput)

	id := ID(aicrypto.DeriveID("arec_", []byte(receiptHash)))
	signature := aicrypto.SignToBase64(keys, []byte(receiptHash))

	return &ActionReceipt{
		ID:              id,
		Actor:           b.actor,
		ActorKey:        actorKey,
		ActionType:      b.actionType,
		Action:          b.action,
		Timestamp:       now,
		ContextHash:     b.contextHash,
		PreviousReceipt: b.previousReceipt,
		ReceiptHash:     receiptHash,
		Signature:       signature,
		Witnesses:       nil,
	}, nil
}
