package negative

import (
	"fmt"
	"strings"

	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/spawn"
	"github.com/agentralabs/agentic-identity/pkg/trust"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// ProveCannot builds a signed proof that anchor cannot exercise capability,
// trying three sources of evidence in order and using whichever first
// applies:
//
//  1. the identity's own authority ceiling does not cover the capability;
//  2. the capability is covered by the parent's ceiling but excluded from
//     what this identity was actually granted at spawn time (a spawn
//     exclusion);
//  3. the capability is excluded somewhere further up the lineage.
//
// It is an error if none of the three apply — that generally means the
// identity actually can exercise the capability, and no negative proof
// should be issued.
func ProveCannot(
	anchor *identity.Anchor,
	capability string,
	ownCeiling []trust.Capability,
	ownSpawnRecord *spawn.Record,
	spawnRecords []*spawn.Record,
	validDurationSeconds *uint64,
	clock aitime.Clock,
) (*Proof, error) {
	const op = "negative.ProveCannot"

	if len(ownCeiling) > 0 && !trust.CapabilitiesCover(ownCeiling, capability) {
		ceilingURIs := capabilityURIs(ownCeiling)
		ceilingHash := aicrypto.HexSHA256(strings.Join(ceilingURIs, ","))
		evidence := Evidence{
			Kind:        "ceiling_exclusion",
			Ceiling:     ceilingURIs,
			CeilingHash: ceilingHash,
		}
		return buildProof(anchor, capability, ReasonNotInCeiling, evidence, validDurationSeconds, clock)
	}

	if ownSpawnRecord != nil && trust.CapabilitiesCover(ownSpawnRecord.AuthorityCeiling, capability) &&
		!trust.CapabilitiesCover(ownSpawnRecord.AuthorityGranted, capability) {
		grantedURIs := capabilityURIs(ownSpawnRecord.AuthorityGranted)
		recordHash := aicrypto.HexSHA256(fmt.Sprintf("%s:%s:%d", ownSpawnRecord.ID, ownSpawnRecord.ChildID, ownSpawnRecord.SpawnTimestamp))
		evidence := Evidence{
			Kind:            "spawn_exclusion",
			SpawnID:         ownSpawnRecord.ID,
			SpawnRecordHash: recordHash,
			Exclusions:      grantedURIs,
		}
		return buildProof(anchor, capability, ReasonSpawnExclusion(ownSpawnRecord.ID), evidence, validDurationSeconds, clock)
	}

	ancestors := spawn.GetAncestors(anchor.ID(), spawnRecords)
	if len(ancestors) > 0 {
		ancestorCeilings := make(map[identity.ID][]string)
		var lineage []identity.ID
		excludedSomewhere := false
		cur := anchor.ID()
		for {
			rec := findAsChild(cur, spawnRecords)
			if rec == nil {
				break
			}
			lineage = append(lineage, rec.ParentID)
			ceilingURIs := capabilityURIs(rec.AuthorityCeiling)
			ancestorCeilings[rec.ParentID] = ceilingURIs
			if !trust.CapabilitiesCover(rec.AuthorityCeiling, capability) {
				excludedSomewhere = true
			}
			cur = rec.ParentID
		}
		if excludedSomewhere {
			lineageHash := aicrypto.HexSHA256(identitiesJoined(lineage))
			evidence := Evidence{
				Kind:             "lineage_exclusion",
				Lineage:          lineage,
				AncestorCeilings: ancestorCeilings,
				LineageHash:      lineageHash,
			}
			return buildProof(anchor, capability, ReasonNotInLineage, evidence, validDurationSeconds, clock)
		}
	}

	return nil, xerrors.New(xerrors.KindNegative, op, "no exclusion evidence found; identity may be able to exercise this capability")
}

func findAsChild(id identity.ID, records []*spawn.Record) *spawn.Record {
	for _, r := range records {
		if r.ChildID == id {
			return r
		}
	}
	return nil
}

func capabilityURIs(caps []trust.Capability) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = c.URI
	}
	return out
}

func identitiesJoined(ids []identity.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

// buildProof signs and returns the common Proof shape shared by every
// ProveCannot branch.
func buildProof(anchor *identity.Anchor, capability string, reason Reason, evidence Evidence, validDurationSeconds *uint64, clock aitime.Clock) (*Proof, error) {
	now := clock()
	var validUntil *uint64
	if validDurationSeconds != nil {
		v := now + *validDurationSeconds*1_000_000
		validUntil = &v
	}

	hashInput := fmt.Sprintf("negproof:%s:%s:%s:%d", anchor.ID(), capability, reason.Tag(), now)
	proofHash := aicrypto.HexSHA256(hashInput)
	proofID := ProofID(aicrypto.DeriveID("aneg_", []byte(proofHash)))

	return &Proof{
		ID:          proofID,
		Identity:    anchor.ID(),
		CannotDo:    capability,
		Reason:      reason,
		Evidence:    evidence,
		GeneratedAt: now,
		ValidUntil:  validUntil,
		ProofHash:   proofHash,
		Signature:   aicrypto.SignToBase64(anchor.Keys(), []byte(proofHash)),
	}, nil
}

// VerifyProof checks a negative-capability proof's signature, expiry, and
// that its evidence is the kind expected for its stated reason.
// CapabilityNonexistent is never a verifiable reason: a proof carrying it
// always fails with ReasonValid=false. No function in this package
// (including IsImpossible) produces it.
func VerifyProof(proof *Proof, verifyingKeyB64 string, clock aitime.Clock) Verification {
	now := clock()
	var errs []string

	pub, err := aicrypto.PublicKeyFromBase64(verifyingKeyB64)
	sigValid := false
	if err != nil {
		errs = append(errs, "invalid verifying key")
	} else {
		sigValid = aicrypto.VerifyFromBase64(pub, []byte(proof.ProofHash), proof.Signature) == nil
		if !sigValid {
			errs = append(errs, "signature does not verify")
		}
	}

	if proof.ValidUntil != nil && now > *proof.ValidUntil {
		errs = append(errs, "proof has expired")
	}

	reasonValid := true
	evidenceValid := true
	switch proof.Reason.kind {
	case "NotInCeiling":
		if proof.Evidence.Kind != "ceiling_exclusion" {
			evidenceValid = false
			errs = append(errs, "reason NotInCeiling requires ceiling_exclusion evidence")
		}
	case "NotInLineage":
		if proof.Evidence.Kind != "lineage_exclusion" {
			evidenceValid = false
			errs = append(errs, "reason NotInLineage requires lineage_exclusion evidence")
		}
	case "SpawnExclusion":
		if proof.Evidence.Kind != "spawn_exclusion" || proof.Evidence.SpawnID != proof.Reason.spawnID {
			evidenceValid = false
			errs = append(errs, "reason SpawnExclusion requires matching spawn_exclusion evidence")
		}
	case "VoluntaryDeclaration":
		if proof.Evidence.Kind != "declaration" || proof.Evidence.DeclarationID != proof.Reason.declarationID {
			evidenceValid = false
			errs = append(errs, "reason VoluntaryDeclaration requires matching declaration evidence")
		}
	case "CapabilityNonexistent":
		reasonValid = false
		errs = append(errs, "CapabilityNonexistent is not a verifiable reason")
	default:
		reasonValid = false
		errs = append(errs, "unknown reason")
	}

	notExpired := proof.ValidUntil == nil || now <= *proof.ValidUntil
	isValid := sigValid && notExpired && reasonValid && evidenceValid

	return Verification{
		ProofID:        proof.ID,
		Identity:       proof.Identity,
		Capability:     proof.CannotDo,
		ReasonValid:    reasonValid,
		EvidenceValid:  evidenceValid,
		SignatureValid: sigValid,
		IsValid:        isValid,
		VerifiedAt:     now,
		Errors:         errs,
	}
}

// IsImpossible is a pure, read-only check for whether capability is
// impossible for identity given its own ceiling, its own spawn record, and
// any voluntary declarations on file. Unlike ProveCannot it never walks the
// ancestor chain and never produces a signed proof — it just classifies.
// Returns nil if nothing rules the capability out.
func IsImpossible(capability string, ownCeiling []trust.Capability, ownSpawnRecord *spawn.Record, declarations []*Declaration) *Reason {
	if len(ownCeiling) > 0 && !trust.CapabilitiesCover(ownCeiling, capability) {
		r := ReasonNotInCeiling
		return &r
	}

	if ownSpawnRecord != nil && trust.CapabilitiesCover(ownSpawnRecord.AuthorityCeiling, capability) &&
		!trust.CapabilitiesCover(ownSpawnRecord.AuthorityGranted, capability) {
		r := ReasonSpawnExclusion(ownSpawnRecord.ID)
		return &r
	}

	for _, d := range declarations {
		for _, c := range d.CannotDo {
			if c == capability {
				r := ReasonVoluntaryDeclaration(string(d.ID))
				return &r
			}
		}
	}

	return nil
}

// Declare records a voluntary, optionally witnessed statement that anchor
// will not exercise any of capabilities. At least one capability must be
// named.
func Declare(anchor *identity.Anchor, capabilities []string, reason Reason, permanent bool, witnesses []*identity.Anchor, clock aitime.Clock) (*Declaration, error) {
	const op = "negative.Declare"
	if len(capabilities) == 0 {
		return nil, xerrors.New(xerrors.KindNegative, op, "declaration must name at least one capability")
	}

	now := clock()
	joined := strings.Join(capabilities, ",")
	declID := DeclarationID(aicrypto.DeriveID("adecl_", []byte(fmt.Sprintf("decl:%s:%s:%d", anchor.ID(), joined, now))))

	signMsg := fmt.Sprintf("negdecl:%s:%s:%s:%s:%t", declID, anchor.ID(), joined, reason.Tag(), permanent)
	sig := aicrypto.SignToBase64(anchor.Keys(), []byte(signMsg))

	decl := &Declaration{
		ID:         declID,
		Identity:   anchor.ID(),
		CannotDo:   capabilities,
		Reason:     reason,
		DeclaredAt: now,
		Permanent:  permanent,
		Signature:  sig,
	}

	for _, w := range witnesses {
		wMsg := fmt.Sprintf("witness-decl:%s:%s", declID, w.ID())
		decl.Witnesses = append(decl.Witnesses, WitnessCosign{
			WitnessID: w.ID(),
			Signature: aicrypto.SignToBase64(w.Keys(), []byte(wMsg)),
		})
	}

	return decl, nil
}
