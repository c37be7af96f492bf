package ledger

import (
	"errors"
	"fmt"
)

// Admission and sealing failure kinds. Callers match with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrElectionClosed     = errors.New("election is closed")
	ErrUnknownCandidate   = errors.New("unknown candidate")
	ErrVoterNotRegistered = errors.New("voter is not registered")
	ErrDuplicateVote      = errors.New("voter has already voted")
	ErrNothingToMine      = errors.New("no pending transactions to mine")
	ErrStoreUnavailable   = errors.New("persistence gateway unavailable")
)

// ValidationError reports the first block at which chain verification
// failed.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Index, e.Reason)
}
