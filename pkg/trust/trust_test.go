package trust_test

import (
	"testing"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
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

func TestCapabilityURICovers(t *testing.T) {
	cases := []struct {
		granted, requested string
		want               bool
	}{
		{"*", "anything:at:all", true},
		{"deploy:prod", "deploy:prod", true},
		{"deploy:prod", "deploy:staging", false},
		{"deploy:*", "deploy:prod", true},
		{"deploy:*", "deploy", true},
		{"deploy:*", "deployment", false},
		{"files/*", "files/reports/q1.csv", true},
		{"files/*", "files", true},
		{"files/*", "filesystem", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, trust.URICovers(c.granted, c.requested), "%s covers %s", c.granted, c.requested)
	}
}

func TestGrantSignAndVerify(t *testing.T) {
	grantor := newAnchor(t)
	grantee := newAnchor(t)

	g, err := trust.NewBuilder(grantor.ID(), grantor.Keys(), grantee.ID(), grantee.PublicKeyBase64(),
		[]trust.Capability{trust.NewCapability("deploy:prod")}).
		Sign(aitime.System)
	require.NoError(t, err)

	assert.NoError(t, g.VerifySignature())

	v := trust.VerifyGrant(g, "deploy:prod", 0, nil, aitime.System)
	assert.True(t, v.IsValid)

	v2 := trust.VerifyGrant(g, "deploy:staging", 0, nil, aitime.System)
	assert.False(t, v2.IsValid)
	assert.False(t, v2.CapabilityGranted)
}

func TestGrantRevocation(t *testing.T) {
	grantor := newAnchor(t)
	grantee := newAnchor(t)

	g, err := trust.NewBuilder(grantor.ID(), grantor.Keys(), grantee.ID(), grantee.PublicKeyBase64(),
		[]trust.Capability{trust.NewCapability("*")}).
		Sign(aitime.System)
	require.NoError(t, err)

	rev := trust.CreateRevocation(string(g.ID), grantor.ID(), grantor.Keys(), trust.ReasonManualRevocation, aitime.System)

	v := trust.VerifyGrant(g, "anything", 0, []trust.Revocation{rev}, aitime.System)
	assert.False(t, v.IsValid)
	assert.False(t, v.NotRevoked)
}

func TestVerifyDelegationChain(t *testing.T) {
	root := newAnchor(t)
	mid := newAnchor(t)
	leaf := newAnchor(t)

	g1, err := trust.NewBuilder(root.ID(), root.Keys(), mid.ID(), mid.PublicKeyBase64(),
		[]trust.Capability{trust.NewCapability("deploy:*")}).
		AllowDelegation(5).
		Sign(aitime.System)
	require.NoError(t, err)

	g2, err := trust.NewBuilder(mid.ID(), mid.Keys(), leaf.ID(), leaf.PublicKeyBase64(),
		[]trust.Capability{trust.NewCapability("deploy:prod")}).
		AsDelegationOf(g1.ID, g1.DelegationDepth).
		Sign(aitime.System)
	require.NoError(t, err)

	v, err := trust.VerifyChain([]*trust.Grant{g1, g2}, "deploy:prod", nil, aitime.System)
	require.NoError(t, err)
	assert.True(t, v.IsValid)
}

func TestVerifyDelegationChainRejectsUnauthorizedDelegation(t *testing.T) {
	root := newAnchor(t)
	mid := newAnchor(t)
	leaf := newAnchor(t)

	g1, err := trust.NewBuilder(root.ID(), root.Keys(), mid.ID(), mid.PublicKeyBase64(),
		[]trust.Capability{trust.NewCapability("deploy:*")}).
		Sign(aitime.System) // delegation not allowed
	require.NoError(t, err)

	g2, err := trust.NewBuilder(mid.ID(), mid.Keys(), leaf.ID(), leaf.PublicKeyBase64(),
		[]trust.Capability{trust.NewCapability("deploy:prod")}).
		AsDelegationOf(g1.ID, g1.DelegationDepth).
		Sign(aitime.System)
	require.NoError(t, err)

	_, err = trust.VerifyChain([]*trust.Grant{g1, g2}, "deploy:prod", nil, aitime.System)
	assert.Error(t, err)
}

func TestConstraintsValidate(t *testing.T) {
	c := trust.TimeBounded(100, 200).WithMaxUses(3)
	assert.NoError(t, c.Validate(150, 0))
	assert.Error(t, c.Validate(50, 0))
	assert.Error(t, c.Validate(250, 0))
	assert.Error(t, c.Validate(150, 3))
}
