package ledger

import (
	"fmt"
	"log"

	"github.com/vinaythakoor004/election-vote-blockchain/models"
)

// MinePendingTransactions seals all pending transactions into one new
// block at the chain tail. The block is persisted before it is
// appended: a persistence failure aborts the attempt, leaving the
// chain and the pending pool untouched, and is surfaced to the caller.
//
// On success the pool is cleared, a reward transaction for
// minerAddress (when given) is placed into the fresh pool to ride in
// the next block, every sealed vote's voter is marked as having voted,
// and the election snapshot is saved best-effort.
//
// This method is the only appender to the chain and the only writer of
// the voted-users set.
func (l *Ledger) MinePendingTransactions(minerAddress string) (*models.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) == 0 {
		return nil, ErrNothingToMine
	}

	// Snapshot the pool; later pool mutations must not reach the
	// sealed block's payload.
	transactions := make([]models.Transaction, len(l.pending))
	copy(transactions, l.pending)

	latest := l.chain[len(l.chain)-1]
	block := models.NewBlock(uint64(len(l.chain)), transactions, latest.Hash)
	block.Mine(l.difficulty)

	if err := l.store.SaveBlock(block); err != nil {
		return nil, fmt.Errorf("%w: block %d not persisted: %v", ErrStoreUnavailable, block.Index, err)
	}

	l.chain = append(l.chain, block)
	l.pending = make([]models.Transaction, 0)

	if minerAddress != "" {
		l.pending = append(l.pending, models.NewRewardTransaction(minerAddress, l.miningReward))
	}

	for _, tx := range block.Transactions {
		if tx.IsVote() {
			l.votedUsers[tx.VoterID] = true
			delete(l.pendingVoters, tx.VoterID)
		}
	}

	if err := l.saveStateLocked(); err != nil {
		log.Printf("Failed to persist election state after sealing block %d: %v", block.Index, err)
	}

	log.Printf("Sealed block %d with %d transactions (nonce %d)", block.Index, len(block.Transactions), block.Nonce)
	return block, nil
}
