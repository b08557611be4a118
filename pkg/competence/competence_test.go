package competence_test

import (
	"testing"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/competence"
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

func TestStreakSignBasedUpdates(t *testing.T) {
	rec := &competence.Record{}
	rec.RecordAttempt("a1", competence.Success(), 1)
	rec.RecordAttempt("a2", competence.Success(), 2)
	assert.Equal(t, int32(2), rec.StreakCurrent)

	rec.RecordAttempt("a3", competence.Failure("bad"), 3)
	assert.Equal(t, int32(-1), rec.StreakCurrent)

	rec.RecordAttempt("a4", competence.Failure("bad"), 4)
	assert.Equal(t, int32(-2), rec.StreakCurrent)

	rec.RecordAttempt("a5", competence.Success(), 5)
	assert.Equal(t, int32(1), rec.StreakCurrent)
	assert.Equal(t, uint32(2), rec.StreakBest)
}

func TestPartialOutcomeCountsBySoreThreshold(t *testing.T) {
	rec := &competence.Record{}
	rec.RecordAttempt("a1", competence.Partial(0.75), 1)
	assert.Equal(t, int32(1), rec.StreakCurrent)

	rec.RecordAttempt("a2", competence.Partial(0.25), 2)
	assert.Equal(t, int32(-1), rec.StreakCurrent)
}

func TestEvidenceWindowCapped(t *testing.T) {
	rec := &competence.Record{}
	for i := 0; i < 150; i++ {
		rec.RecordAttempt(competence.AttemptID("a"), competence.Success(), uint64(i+1))
	}
	assert.Len(t, rec.Evidence, 100)
}

func TestGenerateAndVerifyProof(t *testing.T) {
	a := newAnchor(t)
	var attempts []*competence.Attempt
	clock := aitime.Stepped(1000, 1000)
	for i := 0; i < 10; i++ {
		at, err := competence.RecordAttempt(a, competence.DomainDeploy, competence.Success(), "rec", nil, nil, clock)
		require.NoError(t, err)
		attempts = append(attempts, at)
	}

	proof, err := competence.GenerateProof(a, competence.DomainDeploy, 5, 0.9, nil, nil, attempts, clock)
	require.NoError(t, err)

	ok, err := competence.VerifyProof(proof, a.PublicKeyBase64(), aitime.System)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateProofFailsBelowThreshold(t *testing.T) {
	a := newAnchor(t)
	clock := aitime.Stepped(1000, 1000)
	at, err := competence.RecordAttempt(a, competence.DomainDeploy, competence.Success(), "rec", nil, nil, clock)
	require.NoError(t, err)

	_, err = competence.GenerateProof(a, competence.DomainDeploy, 5, 0.9, nil, nil, []*competence.Attempt{at}, clock)
	assert.Error(t, err)
}

func TestCheckCompetenceNoAttempts(t *testing.T) {
	a := newAnchor(t)
	v := competence.CheckCompetence(a.ID(), competence.Requirement{Domain: competence.DomainDeploy, MinAttempts: 1}, nil, aitime.System)
	assert.False(t, v.IsValid)
	assert.True(t, v.MeetsRecency)
}
