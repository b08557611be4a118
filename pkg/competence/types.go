// Package competence tracks an identity's track record in a given domain —
// attempts, outcomes, streaks — and lets it generate a provable claim that
// it meets a competence bar without replaying every attempt.
package competence

import "github.com/agentralabs/agentic-identity/pkg/identity"

// Domain names an area of competence. Free-form, with a handful of
// well-known constants for common agentic domains.
type Domain string

const (
	DomainDeploy          Domain = "deploy"
	DomainCodeReview       Domain = "code_review"
	DomainDataAnalysis     Domain = "data_analysis"
	DomainCommunication    Domain = "communication"
	DomainPlanning         Domain = "planning"
	DomainMemoryManagement Domain = "memory_management"
)

// Outcome is the result of a single competence attempt.
type Outcome struct {
	kind   string // "success", "failure", "partial"
	reason string
	score  float32
}

func Success() Outcome                 { return Outcome{kind: "success"} }
func Failure(reason string) Outcome    { return Outcome{kind: "failure", reason: reason} }
func Partial(score float32) Outcome    { return Outcome{kind: "partial", score: score} }

// Tag returns the stable string used in an attempt's signed preimage.
func (o Outcome) Tag() string {
	switch o.kind {
	case "success":
		return "success"
	case "failure":
		return "failure:" + o.reason
	case "partial":
		return "partial:" + formatScore(o.score)
	default:
		return o.kind
	}
}

// successLike reports whether this outcome should be folded into a
// streak/rate the same way a Success would: an outright Success, or a
// Partial scoring at least 0.5.
func (o Outcome) successLike() bool {
	switch o.kind {
	case "success":
		return true
	case "partial":
		return o.score >= 0.5
	default:
		return false
	}
}

// successContribution is how much this outcome adds to the success-rate
// numerator: 1.0 for Success, the raw score for Partial, 0 for Failure.
func (o Outcome) successContribution() float32 {
	switch o.kind {
	case "success":
		return 1.0
	case "partial":
		return o.score
	default:
		return 0
	}
}

// AttemptID is an "aatt_"-prefixed competence attempt identifier.
type AttemptID string

// Attempt is a single signed record of an identity's performance on one
// task in a domain.
type Attempt struct {
	ID                 AttemptID    `json:"attempt_id"`
	Identity           identity.ID  `json:"identity"`
	Domain             Domain       `json:"domain"`
	Outcome            Outcome      `json:"outcome"`
	Timestamp          uint64       `json:"timestamp"`
	ReceiptID           string      `json:"receipt_id"`
	Context            *string      `json:"context,omitempty"`
	Validator          *identity.ID `json:"validator,omitempty"`
	ValidatorSignature *string      `json:"validator_signature,omitempty"`
	Signature          string       `json:"signature"`
}

// Record is the aggregate competence state for one identity in one
// domain, folded from its attempt history.
type Record struct {
	Identity      identity.ID `json:"identity"`
	Domain        Domain      `json:"domain"`
	TotalAttempts uint64      `json:"total_attempts"`
	Successes     uint64      `json:"successes"`
	Failures      uint64      `json:"failures"`
	PartialSum    float32     `json:"partial_sum"`
	PartialCount  uint64      `json:"partial_count"`
	SuccessRate   float32     `json:"success_rate"`
	FirstAttempt  uint64      `json:"first_attempt"`
	LastAttempt   uint64      `json:"last_attempt"`
	StreakCurrent int32       `json:"streak_current"`
	StreakBest    uint32      `json:"streak_best"`
	Evidence      []AttemptID `json:"evidence"`
}

// RecordAttempt folds one more attempt into the aggregate record,
// updating totals, success rate, and the sign-based streak: a success
// extends a non-negative streak (or resets a negative one to 1); a
// failure extends a non-positive streak (or resets a positive one to -1);
// a partial outcome follows whichever branch its score qualifies for.
// Evidence is capped at the 100 most recent attempt IDs (FIFO).
func (r *Record) RecordAttempt(attemptID AttemptID, outcome Outcome, timestamp uint64) {
	r.TotalAttempts++
	if r.FirstAttempt == 0 {
		r.FirstAttempt = timestamp
	}
	r.LastAttempt = timestamp

	switch {
	case outcome.kind == "success":
		r.Successes++
		r.bumpStreakUp()
	case outcome.kind == "failure":
		r.Failures++
		r.bumpStreakDown()
	case outcome.kind == "partial":
		r.PartialSum += outcome.score
		r.PartialCount++
		if outcome.successLike() {
			r.bumpStreakUp()
		} else {
			r.bumpStreakDown()
		}
	}

	if r.StreakCurrent > 0 && uint32(r.StreakCurrent) > r.StreakBest {
		r.StreakBest = uint32(r.StreakCurrent)
	}

	r.SuccessRate = (float32(r.Successes) + r.PartialSum) / float32(r.TotalAttempts)

	r.Evidence = append(r.Evidence, attemptID)
	if len(r.Evidence) > 100 {
		r.Evidence = r.Evidence[1:]
	}
}

func (r *Record) bumpStreakUp() {
	if r.StreakCurrent >= 0 {
		r.StreakCurrent++
	} else {
		r.StreakCurrent = 1
	}
}

func (r *Record) bumpStreakDown() {
	if r.StreakCurrent <= 0 {
		r.StreakCurrent--
	} else {
		r.StreakCurrent = -1
	}
}

// Claim is the set of thresholds a proof asserts were met, alongside the
// actual measured values at proof-generation time.
type Claim struct {
	MinAttempts      uint64   `json:"min_attempts"`
	MinSuccessRate   float32  `json:"min_success_rate"`
	MinStreak        *uint32  `json:"min_streak,omitempty"`
	RecencyWindow    *uint64  `json:"recency_window,omitempty"`
	ActualAttempts   uint64   `json:"actual_attempts"`
	ActualSuccessRate float32 `json:"actual_success_rate"`
	ActualStreak     int32    `json:"actual_streak"`
}

// ProofID is an "aprf_"-prefixed competence proof identifier.
type ProofID string

// Proof is a signed, shareable claim that an identity meets a competence
// bar, with a bounded evidence sample rather than the full attempt
// history.
type Proof struct {
	ID             ProofID     `json:"proof_id"`
	Identity       identity.ID `json:"identity"`
	Domain         Domain      `json:"domain"`
	Claim          Claim       `json:"claim"`
	EvidenceSample []AttemptID `json:"evidence_sample"`
	EvidenceCount  uint64      `json:"evidence_count"`
	GeneratedAt    uint64      `json:"generated_at"`
	ValidUntil     *uint64     `json:"valid_until,omitempty"`
	ProofHash      string      `json:"proof_hash"`
	Signature      string      `json:"signature"`
}

// Requirement is a policy-side threshold to check an identity's live
// attempt history against (as opposed to a pre-generated Proof).
type Requirement struct {
	Domain        Domain  `json:"domain"`
	MinAttempts   uint64  `json:"min_attempts"`
	MinSuccessRate float32 `json:"min_success_rate"`
	MinStreak     *uint32 `json:"min_streak,omitempty"`
	MaxAgeSeconds *uint64 `json:"max_age_seconds,omitempty"`
}

// Verification is the verdict returned by checking a Requirement or Proof.
type Verification struct {
	Identity      identity.ID `json:"identity"`
	Domain        Domain      `json:"domain"`
	MeetsAttempts bool        `json:"meets_attempts"`
	MeetsRate     bool        `json:"meets_rate"`
	MeetsStreak   bool        `json:"meets_streak"`
	MeetsRecency  bool        `json:"meets_recency"`
	IsValid       bool        `json:"is_valid"`
	VerifiedAt    uint64      `json:"verified_at"`
	Errors        []string    `json:"errors,omitempty"`
}

func formatScore(score float32) string {
	// Mirrors Rust's default float Display formatting closely enough for
	// hash-preimage purposes: a compact decimal with no trailing zeros
	// beyond what's needed, which is what callers actually supply (scores
	// are user-chosen values like 0.5, 0.75, 0.9).
	s := trimTrailingZeros(score)
	return s
}
