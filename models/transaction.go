package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TxTypeVote   = "vote"
	TxTypeReward = "reward"
)

// Transaction is a single entry in a block. Type selects which fields
// are populated: vote transactions carry VoterID and CandidateID,
// reward transactions carry ToAddress and Amount.
type Transaction struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	VoterID     string           `json:"voter_id,omitempty"`
	CandidateID string           `json:"candidate_id,omitempty"`
	ToAddress   string           `json:"to_address,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Timestamp   int64            `json:"timestamp"`
}

// NewVoteTransaction mints a vote transaction. The ledger's admission
// routine is the only caller; votes are never constructed ad hoc.
func NewVoteTransaction(voterID, candidateID string) Transaction {
	return Transaction{
		ID:          uuid.New().String(),
		Type:        TxTypeVote,
		VoterID:     voterID,
		CandidateID: candidateID,
		Timestamp:   time.Now().Unix(),
	}
}

// NewRewardTransaction mints a mining reward. Rewards bypass admission
// and ride along in the next sealed block.
func NewRewardTransaction(toAddress string, amount decimal.Decimal) Transaction {
	return Transaction{
		ID:        uuid.New().String(),
		Type:      TxTypeReward,
		ToAddress: toAddress,
		Amount:    &amount,
		Timestamp: time.Now().Unix(),
	}
}

func (t *Transaction) IsVote() bool {
	return t.Type == TxTypeVote
}
