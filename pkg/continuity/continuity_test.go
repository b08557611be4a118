package continuity_test

import (
	"testing"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/continuity"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnchor(t *testing.T) *identity.Anchor {
	t.Helper()
	a, err := identity.NewAnchor(nil, aitime.System)
	require.NoError(t, err)
	return a
}

func TestRecordExperienceChain(t *testing.T) {
	a := newAnchor(t)
	clock := aitime.Stepped(1_000_000, 1_000_000)

	e1, err := continuity.RecordExperience(a, continuity.IdleEvent("startup"), "hash-1", 0.1, nil, clock)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), e1.SequenceNumber)
	assert.Nil(t, e1.PreviousExperienceHash)

	e2, err := continuity.RecordExperience(a, continuity.PerceptionEvent("sensor"), "hash-2", 0.5, e1, clock)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e2.SequenceNumber)
	require.NotNil(t, e2.PreviousExperienceHash)
	assert.Equal(t, e1.CumulativeHash, *e2.PreviousExperienceHash)
}

func TestRecordExperienceRejectsOutOfRangeIntensity(t *testing.T) {
	a := newAnchor(t)
	_, err := continuity.RecordExperience(a, continuity.IdleEvent("x"), "hash", 1.5, nil, aitime.System)
	assert.Error(t, err)
}

func TestDetectGapsSeverityThresholds(t *testing.T) {
	a := newAnchor(t)
	base := uint64(1_000_000_000)

	mk := func(seq uint64, ts uint64, prev *continuity.Event) *continuity.Event {
		e, err := continuity.RecordExperience(a, continuity.IdleEvent("tick"), "h", 0.1, prev, aitime.Fixed(ts))
		require.NoError(t, err)
		return e
	}

	e0 := mk(0, base, nil)
	e1 := mk(1, base+30*1_000_000, e0)                  // 30s gap -> minor
	e2 := mk(2, e1.Timestamp+90*60*1_000_000, e1)        // 90min gap -> major
	e3 := mk(3, e2.Timestamp+2*86400*1_000_000, e2)      // 2 day gap -> critical

	v := continuity.VerifyContinuity([]*continuity.Event{e0, e1, e2, e3}, nil, 0, aitime.System)
	assert.True(t, v.ChainValid)
	require.Len(t, v.Gaps, 3)
	assert.Equal(t, continuity.SeverityMinor, v.Gaps[0].Severity)
	assert.Equal(t, continuity.SeverityMajor, v.Gaps[1].Severity)
	assert.Equal(t, continuity.SeverityCritical, v.Gaps[2].Severity)
	assert.Equal(t, "discontinuous", v.Result.Kind)
}

func TestGetContinuityState(t *testing.T) {
	a := newAnchor(t)
	clock := aitime.Stepped(1, 1)
	e1, err := continuity.RecordExperience(a, continuity.IdleEvent("x"), "h1", 0.1, nil, clock)
	require.NoError(t, err)
	e2, err := continuity.RecordExperience(a, continuity.IdleEvent("y"), "h2", 0.1, e1, clock)
	require.NoError(t, err)

	state, err := continuity.GetContinuityState(a.ID(), []*continuity.Event{e1, e2})
	require.NoError(t, err)
	assert.Equal(t, e1.ID, state.GenesisExperienceID)
	assert.Equal(t, e2.ID, state.LatestExperienceID)
	assert.Equal(t, 2, state.TotalExperiences)
}
