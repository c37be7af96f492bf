package ledger

import (
	"fmt"

	"github.com/vinaythakoor004/election-vote-blockchain/models"
)

// Validate walks the chain and returns nil when it is intact, or a
// *ValidationError naming the first failing block. Every stored hash
// must match its recomputation and every block past genesis must link
// to its predecessor's hash. A chain without a genesis block is
// invalid; a genesis-only chain is valid.
func (l *Ledger) Validate() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return validateChain(l.chain)
}

// IsChainValid is the boolean form of Validate.
func (l *Ledger) IsChainValid() bool {
	return l.Validate() == nil
}

func validateChain(chain []*models.Block) error {
	if len(chain) == 0 {
		return &ValidationError{Index: 0, Reason: "chain has no genesis block"}
	}
	if !chain[0].Validate() {
		return &ValidationError{Index: 0, Reason: "genesis hash does not match its content"}
	}

	for i := 1; i < len(chain); i++ {
		if !chain[i].Validate() {
			return &ValidationError{Index: i, Reason: "stored hash does not match recomputed hash"}
		}
		if chain[i].PrevHash != chain[i-1].Hash {
			return &ValidationError{Index: i, Reason: "previous hash does not match predecessor"}
		}
	}
	return nil
}

// rebuildVotedUsers reconstructs the voted-users view by replaying
// every sealed vote transaction, the recovery path for the
// incrementally maintained set.
func rebuildVotedUsers(chain []*models.Block) map[string]bool {
	voted := make(map[string]bool)
	for _, block := range chain {
		for _, tx := range block.Transactions {
			if tx.IsVote() {
				voted[tx.VoterID] = true
			}
		}
	}
	return voted
}

// CheckVotedUsers compares the incrementally maintained voted-users
// set against a fresh rebuild from the chain. Used as a consistency
// assertion in tests and periodic checks.
func (l *Ledger) CheckVotedUsers() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rebuilt := rebuildVotedUsers(l.chain)
	if len(rebuilt) != len(l.votedUsers) {
		return fmt.Errorf("voted-users mismatch: %d incremental, %d rebuilt", len(l.votedUsers), len(rebuilt))
	}
	for voterID := range rebuilt {
		if !l.votedUsers[voterID] {
			return fmt.Errorf("voted-users mismatch: %s in chain but not in incremental set", voterID)
		}
	}
	return nil
}
