package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaythakoor004/election-vote-blockchain/models"
)

func TestJSONStoreChainRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	chain := sealedTestChain(t, 2)
	for _, block := range chain {
		require.NoError(t, store.SaveBlock(block))
	}

	// A fresh store over the same directory sees the persisted chain.
	reopened, err := NewJSONStore(dir)
	require.NoError(t, err)

	loaded, err := reopened.LoadBlocks()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, chain[1].Hash, loaded[1].Hash)
	assert.True(t, loaded[1].Validate())

	_, err = os.Stat(filepath.Join(dir, "chain.json"))
	assert.NoError(t, err)
}

func TestJSONStoreUpsertByHash(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	genesis := models.NewGenesisBlock()
	require.NoError(t, store.SaveBlock(genesis))
	require.NoError(t, store.SaveBlock(genesis))

	loaded, err := store.LoadBlocks()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestJSONStoreElectionState(t *testing.T) {
	dir := t.TempDir()

	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	state, err := store.LoadElectionState()
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, store.SaveElectionState(&models.ElectionState{
		RegisteredVoters: []string{"v1"},
		IsElectionOpen:   true,
	}))

	reopened, err := NewJSONStore(dir)
	require.NoError(t, err)
	state, err = reopened.LoadElectionState()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, []string{"v1"}, state.RegisteredVoters)
	assert.True(t, state.IsElectionOpen)
}
