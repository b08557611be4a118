package continuity

import (
	"encoding/json"
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

const genesisMarker = "genesis"

// RecordExperience appends one event to an identity's experience chain.
// previous is nil for the genesis event. intensity must be in [0, 1].
func RecordExperience(anchor *identity.Anchor, eventType ExperienceType, contentHash string, intensity float32, previous *Event, clock aitime.Clock) (*Event, error) {
	const op = "continuity.RecordExperience"
	if intensity < 0 || intensity > 1 {
		return nil, xerrors.New(xerrors.KindInvalidChain, op, "intensity must be between 0 and 1")
	}

	var prevID *ExperienceID
	var prevHash *string
	var seq uint64
	if previous != nil {
		prevID = &previous.ID
		prevHash = &previous.CumulativeHash
		seq = previous.SequenceNumber + 1
	}

	now := clock()
	prevHashStr := genesisMarker
	if prevHash != nil {
		prevHashStr = *prevHash
	}
	cumulativeInput := fmt.Sprintf("%s:%s:%d:%d", prevHashStr, contentHash, seq, now)
	cumulativeHash := aicrypto.HexSHA256(cumulativeInput)

	id := ExperienceID(aicrypto.DeriveID("aexp_", []byte(fmt.Sprintf("exp:%s:%d:%d", anchor.ID(), seq, now))))
	signature := aicrypto.SignToBase64(anchor.Keys(), []byte(cumulativeHash))

	return &Event{
		ID:                     id,
		Identity:               anchor.ID(),
		EventType:              eventType,
		ContentHash:            contentHash,
		Intensity:              intensity,
		SequenceNumber:         seq,
		PreviousExperienceID:   prevID,
		PreviousExperienceHash: prevHash,
		CumulativeHash:         cumulativeHash,
		Timestamp:              now,
		Signature:              signature,
	}, nil
}

type externalWitnessRecord struct {
	WitnessID string `json:"witness_id"`
	Signature string `json:"signature"`
}

// CreateAnchor checkpoints the chain at latestExperience, optionally
// co-attested by an external witness identity signing over the
// experience's cumulative hash.
func CreateAnchor(anchor *identity.Anchor, anchorType AnchorType, latestExperience *Event, previousAnchor *AnchorID, externalWitness *identity.Anchor, clock aitime.Clock) (*Anchor, error) {
	now := clock()

	var witnessField *string
	if externalWitness != nil {
		sig := aicrypto.SignToBase64(externalWitness.Keys(), []byte(latestExperience.CumulativeHash))
		rec := externalWitnessRecord{WitnessID: string(externalWitness.ID()), Signature: sig}
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.KindEncoding, "continuity.CreateAnchor", err)
		}
		s := string(b)
		witnessField = &s
	}

	id := AnchorID(aicrypto.DeriveID("aanch_", []byte(fmt.Sprintf("anchor:%s:%d:%d", anchor.ID(), latestExperience.SequenceNumber, now))))
	signMsg := fmt.Sprintf("anchor:%s:%s:%s:%d:%d", id, anchorType.Tag(), latestExperience.CumulativeHash, latestExperience.SequenceNumber+1, now)

	return &Anchor{
		ID:              id,
		Identity:        anchor.ID(),
		AnchorType:      anchorType,
		ExperienceID:    latestExperience.ID,
		CumulativeHash:  latestExperience.CumulativeHash,
		SequenceNumber:  latestExperience.SequenceNumber,
		PreviousAnchor:  previousAnchor,
		ExternalWitness: witnessField,
		Timestamp:       now,
		Signature:       aicrypto.SignToBase64(anchor.Keys(), []byte(signMsg)),
	}, nil
}

// CreateHeartbeat records a lightweight liveness signal.
func CreateHeartbeat(anchor *identity.Anchor, sequenceNumber uint64, continuityHash string, experienceCount, experiencesSinceLast uint64, status HeartbeatStatus, health float32, clock aitime.Clock) *Heartbeat {
	now := clock()
	id := HeartbeatID(aicrypto.DeriveID("ahb_", []byte(fmt.Sprintf("hb:%s:%d:%d", anchor.ID(), sequenceNumber, now))))
	signMsg := fmt.Sprintf("heartbeat:%s:%d:%s:%s:%d", id, sequenceNumber, continuityHash, status.Tag(), now)
	return &Heartbeat{
		ID:                   id,
		Identity:             anchor.ID(),
		SequenceNumber:       sequenceNumber,
		ContinuityHash:       continuityHash,
		ExperienceCount:      experienceCount,
		ExperiencesSinceLast: experiencesSinceLast,
		Status:               status,
		Health:               health,
		Timestamp:            now,
		Signature:            aicrypto.SignToBase64(anchor.Keys(), []byte(signMsg)),
	}
}

// CreateContinuityClaim asserts continuity over experiences (ordered
// oldest-to-newest), bounding the claim with whichever anchors reference
// its first/last experience (falling back to the raw cumulative hash
// string when no matching anchor exists).
func CreateContinuityClaim(anchor *identity.Anchor, claimType ClaimType, experiences []*Event, anchors []*Anchor, gracePeriodSeconds uint64, clock aitime.Clock) (*Claim, error) {
	const op = "continuity.CreateContinuityClaim"
	if len(experiences) == 0 {
		return nil, xerrors.New(xerrors.KindInvalidChain, op, "cannot claim continuity over zero experiences")
	}

	first, last := experiences[0], experiences[len(experiences)-1]
	gaps := detectGaps(experiences, gracePeriodSeconds)
	var maxGapSeconds uint64
	for _, g := range gaps {
		if g.GapSeconds > maxGapSeconds {
			maxGapSeconds = g.GapSeconds
		}
	}

	startAnchor := findAnchorFor(first, anchors)
	endAnchor := findAnchorFor(last, anchors)

	now := clock()
	id := ClaimID(aicrypto.DeriveID("aclm_", []byte(fmt.Sprintf("claim:%s:%s:%d:%d", anchor.ID(), claimType.Tag(), first.SequenceNumber, now))))
	signMsg := fmt.Sprintf("claim:%s:%s:%d:%d:%d:%d", id, claimType.Tag(), first.Timestamp, last.Timestamp, len(experiences), maxGapSeconds)

	return &Claim{
		ID:              id,
		Identity:        anchor.ID(),
		ClaimType:       claimType,
		StartExperience: first.ID,
		EndExperience:   last.ID,
		StartAnchor:     startAnchor,
		EndAnchor:       endAnchor,
		ExperienceCount: len(experiences),
		MaxGapSeconds:   maxGapSeconds,
		TimestampStart:  first.Timestamp,
		TimestampEnd:    last.Timestamp,
		Signature:       aicrypto.SignToBase64(anchor.Keys(), []byte(signMsg)),
	}, nil
}

func findAnchorFor(e *Event, anchors []*Anchor) string {
	for _, a := range anchors {
		if a.ExperienceID == e.ID {
			return string(a.ID)
		}
	}
	return e.CumulativeHash
}

// VerifyContinuity checks a claim's chain and anchors for internal
// consistency and re-detects gaps. Signatures are treated as trusted from
// creation time (not re-verified here), matching the original engine.
func VerifyContinuity(experiences []*Event, anchors []*Anchor, gracePeriodSeconds uint64, clock aitime.Clock) Verification {
	chainValid, chainErrs := verifyExperienceChain(experiences)
	anchorsValid, _ := verifyAnchors(experiences, anchors)
	gaps := detectGaps(experiences, gracePeriodSeconds)

	var result Result
	switch {
	case len(gaps) == 0 && chainValid && anchorsValid:
		result = Result{Kind: "continuous"}
	case len(gaps) > 0:
		var maxGap uint64
		for _, g := range gaps {
			if g.GapSeconds > maxGap {
				maxGap = g.GapSeconds
			}
		}
		result = Result{Kind: "discontinuous", GapCount: len(gaps), MaxGapSeconds: maxGap}
	default:
		reason := "unknown"
		if len(chainErrs) > 0 {
			reason = chainErrs[0]
		}
		result = Result{Kind: "uncertain", Reason: reason}
	}

	return Verification{
		ChainValid:      chainValid,
		AnchorsValid:    anchorsValid,
		SignaturesValid: true,
		Gaps:            gaps,
		Result:          result,
	}
}

func verifyExperienceChain(experiences []*Event) (bool, []string) {
	var errs []string
	for i := 1; i < len(experiences); i++ {
		prev, cur := experiences[i-1], experiences[i]
		if cur.SequenceNumber != prev.SequenceNumber+1 {
			errs = append(errs, fmt.Sprintf("sequence number mismatch at index %d", i))
		}
		if cur.PreviousExperienceHash == nil || *cur.PreviousExperienceHash != prev.CumulativeHash {
			errs = append(errs, fmt.Sprintf("cumulative hash link broken at index %d", i))
		}
		// previous_experience_id is an optional, non-load-bearing link:
		// its absence is not an error, unlike the hash link above.
		if cur.PreviousExperienceID != nil && *cur.PreviousExperienceID != prev.ID {
			errs = append(errs, fmt.Sprintf("previous experience id mismatch at index %d", i))
		}
	}
	return len(errs) == 0, errs
}

func verifyAnchors(experiences []*Event, anchors []*Anchor) (bool, []string) {
	byID := make(map[ExperienceID]*Event, len(experiences))
	for _, e := range experiences {
		byID[e.ID] = e
	}
	var errs []string
	for _, a := range anchors {
		e, ok := byID[a.ExperienceID]
		if !ok {
			errs = append(errs, fmt.Sprintf("anchor %s references unknown experience %s", a.ID, a.ExperienceID))
			continue
		}
		if e.CumulativeHash != a.CumulativeHash {
			errs = append(errs, fmt.Sprintf("anchor %s cumulative hash mismatch", a.ID))
		}
	}
	return len(errs) == 0, errs
}

// detectGaps scans consecutive experience pairs for temporal, sequence,
// and hash discontinuities. A single index pair can contribute more than
// one gap if multiple conditions trigger independently.
func detectGaps(experiences []*Event, gracePeriodSeconds uint64) []Gap {
	var gaps []Gap
	graceMicros := gracePeriodSeconds * 1_000_000

	for i := 1; i < len(experiences); i++ {
		prev, cur := experiences[i-1], experiences[i]

		if cur.Timestamp > prev.Timestamp {
			delta := cur.Timestamp - prev.Timestamp
			if delta > graceMicros {
				gapSeconds := delta / 1_000_000
				gaps = append(gaps, Gap{
					FromIndex:  i - 1,
					ToIndex:    i,
					Type:       GapTemporal,
					Severity:   temporalSeverity(gapSeconds),
					GapSeconds: gapSeconds,
				})
			}
		}

		if cur.SequenceNumber != prev.SequenceNumber+1 {
			gaps = append(gaps, Gap{
				FromIndex: i - 1,
				ToIndex:   i,
				Type:      GapSequence,
				Severity:  SeverityMajor,
			})
		}

		if cur.PreviousExperienceHash == nil || *cur.PreviousExperienceHash != prev.CumulativeHash {
			gaps = append(gaps, Gap{
				FromIndex: i - 1,
				ToIndex:   i,
				Type:      GapHash,
				Severity:  SeverityCritical,
			})
		}
	}
	return gaps
}

// temporalSeverity buckets a gap's size in seconds: 0-60 minor, 61-3600
// moderate, 3601-86400 major, anything larger critical.
func temporalSeverity(gapSeconds uint64) GapSeverity {
	switch {
	case gapSeconds <= 60:
		return SeverityMinor
	case gapSeconds <= 3600:
		return SeverityModerate
	case gapSeconds <= 86400:
		return SeverityMajor
	default:
		return SeverityCritical
	}
}

// GetContinuityState summarizes an identity's experience chain from
// genesis to latest.
func GetContinuityState(identityID identity.ID, experiences []*Event) (*State, error) {
	if len(experiences) == 0 {
		return nil, xerrors.New(xerrors.KindNotFound, "continuity.GetContinuityState", "no experiences recorded")
	}
	first, last := experiences[0], experiences[len(experiences)-1]
	return &State{
		Identity:            identityID,
		GenesisExperienceID: first.ID,
		GenesisHash:         first.CumulativeHash,
		GenesisTimestamp:    first.Timestamp,
		LatestExperienceID:  last.ID,
		LatestHash:          last.CumulativeHash,
		LatestTimestamp:     last.Timestamp,
		TotalExperiences:    len(experiences),
	}, nil
}
