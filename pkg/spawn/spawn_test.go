package spawn_test

import (
	"testing"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
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

func TestSpawnChild(t *testing.T) {
	parent := newAnchor(t)
	granted := []trust.Capability{trust.NewCapability("deploy:staging")}
	ceiling := []trust.Capability{trust.NewCapability("deploy:*")}

	child, record, rec, err := spawn.SpawnChild(
		parent, spawn.TypeWorker, "run the staging deploy",
		granted, ceiling, spawn.Indefinite(), spawn.DefaultConstraints(),
		nil, nil, aitime.System,
	)
	require.NoError(t, err)
	assert.Equal(t, parent.ID(), record.ParentID)
	assert.Equal(t, child.ID(), record.ChildID)
	assert.NotEmpty(t, record.ParentSignature)
	require.NotNil(t, record.ChildAcknowledgment)
	assert.NotEmpty(t, rec.ID)
}

func TestSpawnChildRejectsAuthorityBeyondCeiling(t *testing.T) {
	parent := newAnchor(t)
	parentCeiling := []trust.Capability{trust.NewCapability("deploy:staging")}
	info := &spawn.Info{AuthorityCeiling: parentCeiling, Constraints: spawn.DefaultConstraints()}

	overreach := []trust.Capability{trust.NewCapability("deploy:prod")}

	_, _, _, err := spawn.SpawnChild(
		parent, spawn.TypeWorker, "overreach",
		overreach, overreach, spawn.Indefinite(), spawn.DefaultConstraints(),
		info, nil, aitime.System,
	)
	assert.Error(t, err)
}

func TestTerminateSpawnOnlyParent(t *testing.T) {
	parent := newAnchor(t)
	other := newAnchor(t)
	_, record, _, err := spawn.SpawnChild(
		parent, spawn.TypeWorker, "task",
		nil, nil, spawn.Indefinite(), spawn.DefaultConstraints(),
		nil, nil, aitime.System,
	)
	require.NoError(t, err)

	_, _, err = spawn.TerminateSpawn(other, record, "not yours", false, nil, aitime.System)
	assert.Error(t, err)

	rec, ids, err := spawn.TerminateSpawn(parent, record, "done", false, nil, aitime.System)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, []spawn.ID{record.ID}, ids)
	assert.True(t, record.Terminated)
}

func TestCascadeTerminate(t *testing.T) {
	root := newAnchor(t)
	clock := aitime.Stepped(1000, 1)

	_, childRecord, _, err := spawn.SpawnChild(root, spawn.TypeWorker, "mid", nil, nil, spawn.Indefinite(), spawn.DefaultConstraints(), nil, nil, clock)
	require.NoError(t, err)

	all := []*spawn.Record{childRecord}

	// Simulate a grandchild spawned from the child's identity ID directly.
	grandchild := &spawn.Record{ID: "aspawn_grand", ParentID: childRecord.ChildID, ChildID: "aid_grandchild"}
	all = append(all, grandchild)

	_, ids, err := spawn.TerminateSpawn(root, childRecord, "cascade test", true, all, clock)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.True(t, grandchild.Terminated)
}

func TestVerifyLineageRoot(t *testing.T) {
	root := newAnchor(t)
	v := spawn.VerifyLineage(root.ID(), nil, aitime.System)
	assert.True(t, v.IsValid)
	assert.Equal(t, 0, v.SpawnDepth)
}

func TestVerifyLineageTerminatedAncestor(t *testing.T) {
	root := newAnchor(t)
	_, record, _, err := spawn.SpawnChild(root, spawn.TypeWorker, "task", nil, nil, spawn.Indefinite(), spawn.DefaultConstraints(), nil, nil, aitime.System)
	require.NoError(t, err)

	_, _, err = spawn.TerminateSpawn(root, record, "done", false, nil, aitime.System)
	require.NoError(t, err)

	v := spawn.VerifyLineage(record.ChildID, []*spawn.Record{record}, aitime.System)
	assert.False(t, v.IsValid)
}
