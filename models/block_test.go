package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateHashDeterministic(t *testing.T) {
	block := NewBlock(1, []Transaction{NewVoteTransaction("v1", "candidateA")}, "abc123")

	first := block.CalculateHash()
	second := block.CalculateHash()
	assert.Equal(t, first, second, "identical inputs must hash identically")

	block.Nonce = 42
	assert.NotEqual(t, first, block.CalculateHash(), "nonce must be part of the hash")
}

func TestHashCoversAllFields(t *testing.T) {
	base := NewBlock(1, []Transaction{NewVoteTransaction("v1", "candidateA")}, "abc123")
	baseHash := base.CalculateHash()

	tampered := *base
	tampered.PrevHash = "def456"
	assert.NotEqual(t, baseHash, tampered.CalculateHash())

	tampered = *base
	tampered.Timestamp++
	assert.NotEqual(t, baseHash, tampered.CalculateHash())

	tampered = *base
	tampered.Index = 2
	assert.NotEqual(t, baseHash, tampered.CalculateHash())
}

func TestMineMeetsDifficulty(t *testing.T) {
	const difficulty = 2

	block := NewBlock(1, []Transaction{NewVoteTransaction("v1", "candidateA")}, "abc123")
	block.Mine(difficulty)

	require.True(t, strings.HasPrefix(block.Hash, "00"), "sealed hash must carry the leading-zero prefix")
	assert.True(t, block.MeetsDifficulty(difficulty))
	assert.True(t, block.Validate(), "sealed hash must equal its recomputation")
}

func TestValidateDetectsTamper(t *testing.T) {
	block := NewBlock(1, []Transaction{NewVoteTransaction("v1", "candidateA")}, "abc123")
	block.Mine(2)
	require.True(t, block.Validate())

	block.Transactions[0].CandidateID = "candidateB"
	assert.False(t, block.Validate(), "payload tamper without resealing must be detected")
}

func TestGenesisBlock(t *testing.T) {
	genesis := NewGenesisBlock()

	assert.Equal(t, uint64(0), genesis.Index)
	assert.Equal(t, GenesisPrevHash, genesis.PrevHash)
	assert.Empty(t, genesis.Transactions)
	assert.True(t, genesis.Validate())
}

func TestTransactionVariants(t *testing.T) {
	vote := NewVoteTransaction("v1", "candidateA")
	assert.Equal(t, TxTypeVote, vote.Type)
	assert.True(t, vote.IsVote())
	assert.NotEmpty(t, vote.ID)

	reward := Transaction{Type: TxTypeReward, ToAddress: "miner-1"}
	assert.False(t, reward.IsVote())
}
