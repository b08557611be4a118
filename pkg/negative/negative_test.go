package negative_test

import (
	"testing"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/negative"
	"github.com/agentralabs/agentic-identity/pkg/spawn"
	"github.com/agentralabs/agentic-identity/pkg/trust"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnchor(t *testing.T) *identity.Anchor {
	t.Helper()
	a, err := identity.NewAnchor(nil, aitime.System)
	require.NoError(t, err)
	return a
}

func TestProveCannotCeilingExclusion(t *testing.T) {
	a := newAnchor(t)
	ceiling := []trust.Capability{trust.NewCapability("deploy:staging")}
	clock := aitime.Stepped(1000, 1000)

	proof, err := negative.ProveCannot(a, "deploy:prod", ceiling, nil, nil, nil, clock)
	require.NoError(t, err)
	assert.Equal(t, "ceiling_exclusion", proof.Evidence.Kind)

	v := negative.VerifyProof(proof, a.PublicKeyBase64(), aitime.System)
	assert.True(t, v.IsValid)
}

func TestProveCannotSpawnExclusion(t *testing.T) {
	a := newAnchor(t)
	clock := aitime.Stepped(1000, 1000)

	rec := &spawn.Record{
		ID:               "aspawn_test",
		ChildID:          a.ID(),
		SpawnTimestamp:   1000,
		AuthorityCeiling: []trust.Capability{trust.NewCapability("deploy:*")},
		AuthorityGranted: []trust.Capability{trust.NewCapability("deploy:staging")},
	}

	proof, err := negative.ProveCannot(a, "deploy:prod", nil, rec, nil, nil, clock)
	require.NoError(t, err)
	assert.Equal(t, "spawn_exclusion", proof.Evidence.Kind)

	v := negative.VerifyProof(proof, a.PublicKeyBase64(), aitime.System)
	assert.True(t, v.IsValid)
}

func TestProveCannotErrorsWhenCapabilityIsActuallyAllowed(t *testing.T) {
	a := newAnchor(t)
	clock := aitime.Stepped(1000, 1000)
	ceiling := []trust.Capability{trust.NewCapability("*")}

	_, err := negative.ProveCannot(a, "deploy:prod", ceiling, nil, nil, nil, clock)
	assert.Error(t, err)
}

func TestIsImpossibleFromDeclaration(t *testing.T) {
	a := newAnchor(t)
	clock := aitime.Stepped(1000, 1000)

	decl, err := negative.Declare(a, []string{"delete:prod_db"}, negative.ReasonNotInCeiling, true, nil, clock)
	require.NoError(t, err)

	reason := negative.IsImpossible("delete:prod_db", nil, nil, []*negative.Declaration{decl})
	require.NotNil(t, reason)
	assert.Equal(t, "VoluntaryDeclaration{declaration_id:"+string(decl.ID)+"}", reason.Tag())
}

func TestDeclareRequiresAtLeastOneCapability(t *testing.T) {
	a := newAnchor(t)
	_, err := negative.Declare(a, nil, negative.ReasonNotInCeiling, false, nil, aitime.Stepped(1000, 1000))
	assert.Error(t, err)
}

func TestDeclareWithWitnesses(t *testing.T) {
	a := newAnchor(t)
	w := newAnchor(t)
	clock := aitime.Stepped(1000, 1000)

	decl, err := negative.Declare(a, []string{"spend:over_1000"}, negative.ReasonNotInCeiling, false, []*identity.Anchor{w}, clock)
	require.NoError(t, err)
	require.Len(t, decl.Witnesses, 1)
	assert.Equal(t, w.ID(), decl.Witnesses[0].WitnessID)
}

func TestVerifyProofRejectsCapabilityNonexistent(t *testing.T) {
	a := newAnchor(t)
	clock := aitime.Stepped(1000, 1000)
	ceiling := []trust.Capability{trust.NewCapability("deploy:staging")}

	proof, err := negative.ProveCannot(a, "deploy:prod", ceiling, nil, nil, nil, clock)
	require.NoError(t, err)
	proof.Reason = negative.ReasonCapabilityNonexistent

	v := negative.VerifyProof(proof, a.PublicKeyBase64(), aitime.System)
	assert.False(t, v.ReasonValid)
	assert.False(t, v.IsValid)
}
