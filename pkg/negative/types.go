// Package negative implements negative-capability proofs: signed evidence
// that an identity cannot exercise a given capability, derived from its
// authority ceiling, its spawn record, or its ancestry, without requiring
// the identity to enumerate everything it can do.
package negative

import (
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/spawn"
)

// Reason names why a capability is believed impossible for an identity.
type Reason struct {
	kind   string
	spawnID spawn.ID
	declarationID string
}

var (
	ReasonNotInCeiling            = Reason{kind: "NotInCeiling"}
	ReasonNotInLineage            = Reason{kind: "NotInLineage"}
	ReasonCapabilityNonexistent   = Reason{kind: "CapabilityNonexistent"}
)

func ReasonSpawnExclusion(id spawn.ID) Reason {
	return Reason{kind: "SpawnExclusion", spawnID: id}
}

func ReasonVoluntaryDeclaration(declarationID string) Reason {
	return Reason{kind: "VoluntaryDeclaration", declarationID: declarationID}
}

// Tag renders a stable string for this reason, used in proof hash
// preimages. This module deliberately does not attempt to reproduce
// Rust's derived Debug format byte-for-byte (see DESIGN.md) — it uses a
// fixed, simple tag per variant instead.
func (r Reason) Tag() string {
	switch r.kind {
	case "SpawnExclusion":
		return fmt.Sprintf("SpawnExclusion{spawn_id:%s}", r.spawnID)
	case "VoluntaryDeclaration":
		return fmt.Sprintf("VoluntaryDeclaration{declaration_id:%s}", r.declarationID)
	default:
		return r.kind
	}
}

// Evidence is the supporting material behind a negative-capability proof.
// Exactly one of the embedded fields is populated, matching whichever
// Reason the proof carries.
type Evidence struct {
	Kind string `json:"kind"` // "ceiling_exclusion", "lineage_exclusion", "spawn_exclusion", "declaration"

	// CeilingExclusion
	Ceiling     []string `json:"ceiling,omitempty"`
	CeilingHash string   `json:"ceiling_hash,omitempty"`

	// LineageExclusion
	Lineage          []identity.ID       `json:"lineage,omitempty"`
	AncestorCeilings map[identity.ID][]string `json:"ancestor_ceilings,omitempty"`
	LineageHash      string              `json:"lineage_hash,omitempty"`

	// SpawnExclusion
	SpawnID         spawn.ID `json:"spawn_id,omitempty"`
	SpawnRecordHash string   `json:"spawn_record_hash,omitempty"`
	Exclusions      []string `json:"exclusions,omitempty"`

	// Declaration
	DeclarationID string `json:"declaration_id,omitempty"`
}

// ProofID is an "aneg_"-prefixed negative-capability proof identifier.
type ProofID string

// Proof is a signed assertion that identity cannot exercise a capability,
// backed by Evidence consistent with Reason.
type Proof struct {
	ID          ProofID     `json:"proof_id"`
	Identity    identity.ID `json:"identity"`
	CannotDo    string      `json:"cannot_do"`
	Reason      Reason      `json:"reason"`
	Evidence    Evidence    `json:"evidence"`
	GeneratedAt uint64      `json:"generated_at"`
	ValidUntil  *uint64     `json:"valid_until,omitempty"`
	ProofHash   string      `json:"proof_hash"`
	Signature   string      `json:"signature"`
}

// DeclarationID is an "adecl_"-prefixed voluntary declaration identifier.
type DeclarationID string

// WitnessCosign is a third-party co-signature over a declaration.
type WitnessCosign struct {
	WitnessID identity.ID `json:"witness_id"`
	Signature string      `json:"signature"`
}

// Declaration is a voluntary, optionally witnessed statement that an
// identity will not exercise a set of capabilities.
type Declaration struct {
	ID           DeclarationID   `json:"declaration_id"`
	Identity     identity.ID     `json:"identity"`
	CannotDo     []string        `json:"cannot_do"`
	Reason       Reason          `json:"reason"`
	DeclaredAt   uint64          `json:"declared_at"`
	Permanent    bool            `json:"permanent"`
	Witnesses    []WitnessCosign `json:"witnesses"`
	Signature    string          `json:"signature"`
}

// Verification is the verdict returned by VerifyProof.
type Verification struct {
	ProofID        ProofID     `json:"proof_id"`
	Identity       identity.ID `json:"identity"`
	Capability     string      `json:"capability"`
	ReasonValid    bool        `json:"reason_valid"`
	EvidenceValid  bool        `json:"evidence_valid"`
	SignatureValid bool        `json:"signature_valid"`
	IsValid        bool        `json:"is_valid"`
	VerifiedAt     uint64      `json:"verified_at"`
	Errors         []string    `json:"errors,omitempty"`
}
