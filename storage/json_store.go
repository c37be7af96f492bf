package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vinaythakoor004/election-vote-blockchain/models"
)

// chainFile is the on-disk document holding the whole chain.
type chainFile struct {
	Blocks []*models.Block `json:"blocks"`
}

// JSONStore persists the chain and the election snapshot as JSON files.
// A simpler alternative to BadgerStore for small deployments; writes go
// through a temporary file and an atomic rename.
type JSONStore struct {
	basePath string
	mu       sync.RWMutex
	blocks   []*models.Block
	byHash   map[string]int // hash -> position in blocks, for upserts
}

func NewJSONStore(basePath string) (*JSONStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	store := &JSONStore{
		basePath: basePath,
		byHash:   make(map[string]int),
	}

	chain, err := store.readChainFile()
	if err != nil {
		return nil, err
	}
	store.blocks = chain.Blocks
	for i, block := range store.blocks {
		store.byHash[block.Hash] = i
	}

	return store, nil
}

func (s *JSONStore) SaveBlock(block *models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, exists := s.byHash[block.Hash]; exists {
		s.blocks[i] = block
	} else {
		s.byHash[block.Hash] = len(s.blocks)
		s.blocks = append(s.blocks, block)
	}

	return s.writeFile(s.chainPath(), &chainFile{Blocks: s.blocks})
}

func (s *JSONStore) LoadBlocks() ([]*models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy to prevent modification
	blocks := make([]*models.Block, len(s.blocks))
	copy(blocks, s.blocks)
	return blocks, nil
}

func (s *JSONStore) LoadElectionState() (*models.ElectionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read election state: %w", err)
	}

	var state models.ElectionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal election state: %w", err)
	}
	return &state, nil
}

func (s *JSONStore) SaveElectionState(state *models.ElectionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(s.statePath(), state)
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) chainPath() string {
	return filepath.Join(s.basePath, "chain.json")
}

func (s *JSONStore) statePath() string {
	return filepath.Join(s.basePath, "election_state.json")
}

func (s *JSONStore) readChainFile() (*chainFile, error) {
	data, err := os.ReadFile(s.chainPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &chainFile{Blocks: make([]*models.Block, 0)}, nil
		}
		return nil, fmt.Errorf("failed to read chain file: %w", err)
	}

	var chain chainFile
	if err := json.Unmarshal(data, &chain); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chain: %w", err)
	}
	return &chain, nil
}

func (s *JSONStore) writeFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	// Write to temporary file first, then rename for consistency
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
