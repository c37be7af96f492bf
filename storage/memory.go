package storage

import (
	"sync"

	"github.com/vinaythakoor004/election-vote-blockchain/models"
)

// MemoryStore is a non-durable Store, mainly for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	blocks []*models.Block
	byHash map[string]int
	state  *models.ElectionState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blocks: make([]*models.Block, 0),
		byHash: make(map[string]int),
	}
}

func (m *MemoryStore) SaveBlock(block *models.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i, exists := m.byHash[block.Hash]; exists {
		m.blocks[i] = block
		return nil
	}
	m.byHash[block.Hash] = len(m.blocks)
	m.blocks = append(m.blocks, block)
	return nil
}

func (m *MemoryStore) LoadBlocks() ([]*models.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blocks := make([]*models.Block, len(m.blocks))
	copy(blocks, m.blocks)
	return blocks, nil
}

func (m *MemoryStore) LoadElectionState() (*models.ElectionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, nil
}

func (m *MemoryStore) SaveElectionState(state *models.ElectionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
