package store_test

import (
	"path/filepath"
	"testing"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/receipt"
	"github.com/agentralabs/agentic-identity/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityFileRoundTrip(t *testing.T) {
	name := "courier-7"
	a, err := identity.NewAnchor(&name, aitime.System)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "agent.aid")
	require.NoError(t, store.SaveIdentity(path, a, "correct horse battery staple"))

	loaded, err := store.LoadIdentity(path, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, a.ID(), loaded.ID())
	assert.Equal(t, a.PublicKeyBase64(), loaded.PublicKeyBase64())
}

func TestIdentityFileWrongPassphrase(t *testing.T) {
	a, err := identity.NewAnchor(nil, aitime.System)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "agent.aid")
	require.NoError(t, store.SaveIdentity(path, a, "right-passphrase"))

	_, err = store.LoadIdentity(path, "wrong-passphrase")
	assert.Error(t, err)
}

func TestIdentityFileNotFound(t *testing.T) {
	_, err := store.LoadIdentity(filepath.Join(t.TempDir(), "missing.aid"), "x")
	assert.Error(t, err)
}

func TestRecordStoreCRUD(t *testing.T) {
	a, err := identity.NewAnchor(nil, aitime.System)
	require.NoError(t, err)

	s, err := store.NewRecordStore[*receipt.ActionReceipt](t.TempDir())
	require.NoError(t, err)

	r, err := receipt.NewBuilder(a.ID(), receipt.ActionDecision, receipt.NewContent("test")).Sign(a.Keys(), aitime.System)
	require.NoError(t, err)

	require.NoError(t, s.Save(string(r.ID), r))

	loaded, err := s.Load(string(r.ID))
	require.NoError(t, err)
	assert.Equal(t, r.ID, loaded.ID)

	ids, err := s.List()
	require.NoError(t, err)
	assert.Contains(t, ids, string(r.ID))

	require.NoError(t, s.Delete(string(r.ID)))
	_, err = s.Load(string(r.ID))
	assert.Error(t, err)

	require.NoError(t, s.Delete(string(r.ID))) // idempotent
}
