package storage

import (
	"github.com/vinaythakoor004/election-vote-blockchain/models"
)

// Store is the persistence gateway consumed by the ledger. It never
// mutates ledger state; it only loads and saves snapshots.
type Store interface {
	// LoadBlocks returns all persisted blocks by ascending index.
	LoadBlocks() ([]*models.Block, error)

	// SaveBlock upserts a sealed block, keyed by its hash.
	SaveBlock(block *models.Block) error

	// LoadElectionState returns the latest election snapshot, or
	// (nil, nil) when none has been saved yet.
	LoadElectionState() (*models.ElectionState, error)

	SaveElectionState(state *models.ElectionState) error

	Close() error
}
