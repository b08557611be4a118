package competence

import (
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// RecordAttempt signs and returns a new competence attempt. If validator
// is supplied, it co-signs an independent attestation that the outcome is
// accurate.
func RecordAttempt(anchor *identity.Anchor, domain Domain, outcome Outcome, receiptID string, context *string, validator *identity.Anchor, clock aitime.Clock) (*Attempt, error) {
	const op = "competence.RecordAttempt"
	if outcome.kind == "partial" && (outcome.score < 0 || outcome.score > 1) {
		return nil, xerrors.New(xerrors.KindCompetence, op, "partial score must be between 0 and 1")
	}

	now := clock()
	id := AttemptID(aicrypto.DeriveID("aatt_", []byte(fmt.Sprintf("%s:%s:%s:%d", anchor.ID(), domain, receiptID, now))))
	signMsg := fmt.Sprintf("attempt:%s:%s:%s:%s:%d", id, anchor.ID(), domain, outcome.Tag(), now)

	attempt := &Attempt{
		ID:        id,
		Identity:  anchor.ID(),
		Domain:    domain,
		Outcome:   outcome,
		Timestamp: now,
		ReceiptID: receiptID,
		Context:   context,
		Signature: aicrypto.SignToBase64(anchor.Keys(), []byte(signMsg)),
	}

	if validator != nil {
		valID := validator.ID()
		attempt.Validator = &valID
		valMsg := fmt.Sprintf("validate:%s:%s:%s:%d", id, valID, outcome.Tag(), now)
		sig := aicrypto.SignToBase64(validator.Keys(), []byte(valMsg))
		attempt.ValidatorSignature = &sig
	}

	return attempt, nil
}

// GetCompetence folds every attempt matching identity+domain into a fresh
// Record, in the order given. Returns nil if there are no matching
// attempts.
func GetCompetence(id identity.ID, domain Domain, attempts []*Attempt) *Record {
	rec := &Record{Identity: id, Domain: domain}
	found := false
	for _, a := range attempts {
		if a.Identity != id || a.Domain != domain {
			continue
		}
		found = true
		rec.RecordAttempt(a.ID, a.Outcome, a.Timestamp)
	}
	if !found {
		return nil
	}
	return rec
}

// ListCompetences returns one Record per distinct domain the identity has
// attempts in.
func ListCompetences(id identity.ID, attempts []*Attempt) []*Record {
	seen := make(map[Domain]bool)
	var domains []Domain
	for _, a := range attempts {
		if a.Identity == id && !seen[a.Domain] {
			seen[a.Domain] = true
			domains = append(domains, a.Domain)
		}
	}
	var out []*Record
	for _, d := range domains {
		out = append(out, GetCompetence(id, d, attempts))
	}
	return out
}

// GenerateProof builds a signed Proof that identity meets the given
// thresholds in domain, sampling up to the 20 most recent pieces of
// evidence (most-recent-first).
func GenerateProof(anchor *identity.Anchor, domain Domain, minAttempts uint64, minSuccessRate float32, minStreak *uint32, validDurationSeconds *uint64, attempts []*Attempt, clock aitime.Clock) (*Proof, error) {
	const op = "competence.GenerateProof"

	rec := GetCompetence(anchor.ID(), domain, attempts)
	if rec == nil {
		return nil, xerrors.New(xerrors.KindNotFound, op, "no competence record for domain")
	}
	if rec.TotalAttempts < minAttempts {
		return nil, xerrors.New(xerrors.KindNotFound, op, "insufficient attempts to meet threshold")
	}
	if rec.SuccessRate < minSuccessRate {
		return nil, xerrors.New(xerrors.KindCompetence, op, "success rate below threshold")
	}
	if minStreak != nil && rec.StreakBest < *minStreak {
		return nil, xerrors.New(xerrors.KindCompetence, op, "best streak below threshold")
	}

	sampleCount := len(rec.Evidence)
	if sampleCount > 20 {
		sampleCount = 20
	}
	sample := make([]AttemptID, sampleCount)
	for i := 0; i < sampleCount; i++ {
		sample[i] = rec.Evidence[len(rec.Evidence)-1-i]
	}

	now := clock()
	var validUntil *uint64
	if validDurationSeconds != nil {
		v := now + *validDurationSeconds*1_000_000
		validUntil = &v
	}
	validUntilForHash := uint64(0)
	if validUntil != nil {
		validUntilForHash = *validUntil
	}

	hashInput := fmt.Sprintf("proof:%s:%s:%d:%s:%d:%d", anchor.ID(), domain, rec.TotalAttempts, trimTrailingZeros(rec.SuccessRate), now, validUntilForHash)
	proofHash := aicrypto.HexSHA256(hashInput)
	proofID := ProofID(aicrypto.DeriveID("aprf_", []byte(proofHash)))

	return &Proof{
		ID:       proofID,
		Identity: anchor.ID(),
		Domain:   domain,
		Claim: Claim{
			MinAttempts:       minAttempts,
			MinSuccessRate:    minSuccessRate,
			MinStreak:         minStreak,
			ActualAttempts:    rec.TotalAttempts,
			ActualSuccessRate: rec.SuccessRate,
			ActualStreak:      rec.StreakCurrent,
		},
		EvidenceSample: sample,
		EvidenceCount:  uint64(len(rec.Evidence)),
		GeneratedAt:    now,
		ValidUntil:     validUntil,
		ProofHash:      proofHash,
		Signature:      aicrypto.SignToBase64(anchor.Keys(), []byte(proofHash)),
	}, nil
}

// VerifyProof checks a proof's signature, expiry, and whether its claimed
// actual values meet its own stated thresholds.
func VerifyProof(proof *Proof, verifyingKeyB64 string, clock aitime.Clock) (bool, error) {
	pub, err := aicrypto.PublicKeyFromBase64(verifyingKeyB64)
	if err != nil {
		return false, xerrors.Wrap(xerrors.KindCrypto, "competence.VerifyProof", err)
	}
	sigValid := aicrypto.VerifyFromBase64(pub, []byte(proof.ProofHash), proof.Signature) == nil

	now := clock()
	notExpired := proof.ValidUntil == nil || now <= *proof.ValidUntil

	meetsAttempts := proof.Claim.ActualAttempts >= proof.Claim.MinAttempts
	meetsRate := proof.Claim.ActualSuccessRate >= proof.Claim.MinSuccessRate
	meetsStreak := true
	if proof.Claim.MinStreak != nil {
		meetsStreak = proof.Claim.ActualStreak >= 0 && uint32(proof.Claim.ActualStreak) >= *proof.Claim.MinStreak
	}

	return sigValid && notExpired && meetsAttempts && meetsRate && meetsStreak, nil
}

// CheckCompetence checks identity's live attempt history (filtered by
// domain and, if set, recency window) against requirement, without
// requiring a pre-generated proof.
func CheckCompetence(id identity.ID, requirement Requirement, attempts []*Attempt, clock aitime.Clock) Verification {
	now := clock()

	var filtered []*Attempt
	for _, a := range attempts {
		if a.Identity != id || a.Domain != requirement.Domain {
			continue
		}
		if requirement.MaxAgeSeconds != nil {
			cutoff := now - *requirement.MaxAgeSeconds*1_000_000
			if a.Timestamp < cutoff {
				continue
			}
		}
		filtered = append(filtered, a)
	}

	if len(filtered) == 0 {
		return Verification{
			Identity:     id,
			Domain:       requirement.Domain,
			MeetsRecency: true,
			IsValid:      false,
			VerifiedAt:   now,
			Errors:       []string{"no competence attempts found"},
		}
	}

	rec := &Record{Identity: id, Domain: requirement.Domain}
	for _, a := range filtered {
		rec.RecordAttempt(a.ID, a.Outcome, a.Timestamp)
	}

	meetsAttempts := rec.TotalAttempts >= requirement.MinAttempts
	meetsRate := rec.SuccessRate >= requirement.MinSuccessRate
	meetsStreak := true
	if requirement.MinStreak != nil {
		meetsStreak = rec.StreakBest >= *requirement.MinStreak
	}

	return Verification{
		Identity:      id,
		Domain:        requirement.Domain,
		MeetsAttempts: meetsAttempts,
		MeetsRate:     meetsRate,
		MeetsStreak:   meetsStreak,
		MeetsRecency:  true,
		IsValid:       meetsAttempts && meetsRate && meetsStreak,
		VerifiedAt:    now,
	}
}
