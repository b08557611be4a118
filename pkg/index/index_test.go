package index_test

import (
	"testing"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/index"
	"github.com/agentralabs/agentic-identity/pkg/receipt"
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

func TestReceiptIndexQueryByActorAndTimeRange(t *testing.T) {
	actor := newAnchor(t)
	other := newAnchor(t)
	idx := index.NewReceiptIndex()

	clock := aitime.Stepped(1000, 100)
	for i := 0; i < 3; i++ {
		r, err := receipt.NewBuilder(actor.ID(), receipt.ActionDecision, receipt.NewContent("step")).Sign(actor.Keys(), clock)
		require.NoError(t, err)
		idx.Insert(r)
	}
	otherReceipt, err := receipt.NewBuilder(other.ID(), receipt.ActionDecision, receipt.NewContent("step")).Sign(other.Keys(), clock)
	require.NoError(t, err)
	idx.Insert(otherReceipt)

	actorID := actor.ID()
	results := index.ReceiptQuery{Actor: &actorID, Sort: index.OldestFirst}.Run(idx)
	assert.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].Timestamp, results[i].Timestamp)
	}
}

func TestReceiptIndexQueryChainRoot(t *testing.T) {
	a := newAnchor(t)
	idx := index.NewReceiptIndex()
	clock := aitime.Stepped(1000, 100)

	root, err := receipt.NewBuilder(a.ID(), receipt.ActionDecision, receipt.NewContent("root")).Sign(a.Keys(), clock)
	require.NoError(t, err)
	idx.Insert(root)

	child, err := receipt.NewBuilder(a.ID(), receipt.ActionDecision, receipt.NewContent("child")).ChainTo(root.ID).Sign(a.Keys(), clock)
	require.NoError(t, err)
	idx.Insert(child)

	results := index.ReceiptQuery{ChainRoot: &root.ID}.Run(idx)
	require.Len(t, results, 1)
	assert.Equal(t, child.ID, results[0].ID)
}

func TestReceiptIndexLimit(t *testing.T) {
	a := newAnchor(t)
	idx := index.NewReceiptIndex()
	clock := aitime.Stepped(1000, 100)
	for i := 0; i < 5; i++ {
		r, err := receipt.NewBuilder(a.ID(), receipt.ActionDecision, receipt.NewContent("x")).Sign(a.Keys(), clock)
		require.NoError(t, err)
		idx.Insert(r)
	}
	limit := 2
	results := index.ReceiptQuery{Limit: &limit}.Run(idx)
	assert.Len(t, results, 2)
}

func TestTrustIndexValidOnlyFiltersRevoked(t *testing.T) {
	grantor := newAnchor(t)
	grantee := newAnchor(t)
	idx := index.NewTrustIndex()

	g, err := trust.NewBuilder(grantor.ID(), grantor.Keys(), grantee.ID(), grantee.PublicKeyBase64(),
		[]trust.Capability{trust.NewCapability("deploy:prod")}).Sign(aitime.System)
	require.NoError(t, err)
	idx.Insert(g)

	grantorID := grantor.ID()
	valid := index.TrustQuery{Grantor: &grantorID, ValidOnly: true, Now: 1}.Run(idx)
	assert.Len(t, valid, 1)

	rev := trust.CreateRevocation(string(g.ID), grantor.ID(), grantor.Keys(), trust.ReasonManualRevocation, aitime.System)
	idx.Revoke(&rev)

	revoked := index.TrustQuery{Grantor: &grantorID, ValidOnly: true, Now: 1}.Run(idx)
	assert.Len(t, revoked, 0)
}

func TestTrustIndexCapabilityPrefix(t *testing.T) {
	grantor := newAnchor(t)
	grantee := newAnchor(t)
	idx := index.NewTrustIndex()

	g, err := trust.NewBuilder(grantor.ID(), grantor.Keys(), grantee.ID(), grantee.PublicKeyBase64(),
		[]trust.Capability{trust.NewCapability("deploy:prod")}).Sign(aitime.System)
	require.NoError(t, err)
	idx.Insert(g)

	prefix := "deploy:"
	results := index.TrustQuery{CapabilityPrefix: &prefix}.Run(idx)
	assert.Len(t, results, 1)

	wrongPrefix := "delete:"
	none := index.TrustQuery{CapabilityPrefix: &wrongPrefix}.Run(idx)
	assert.Len(t, none, 0)
}
