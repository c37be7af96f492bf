package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vinaythakoor004/election-vote-blockchain/models"
)

const (
	blockKeyPrefix   = "block_"    // block_<hash> -> block document
	indexKeyPrefix   = "blockidx_" // blockidx_<%010d index> -> hash
	latestIndexKey   = "latest_block_index"
	electionStateKey = "election_state"

	blockCacheSize = 64
)

// BadgerStore keeps blocks and election snapshots as JSON documents in
// a BadgerDB key-value store. Blocks are stored under their hash and
// indexed by a zero-padded block index so an ordered prefix scan yields
// the chain in ascending order.
type BadgerStore struct {
	db         *badger.DB
	blockCache *lru.Cache
}

func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open block store at %s: %w", dir, err)
	}

	cache, err := lru.New(blockCacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BadgerStore{db: db, blockCache: cache}, nil
}

func (s *BadgerStore) SaveBlock(block *models.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to marshal block %d: %w", block.Index, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(blockKeyPrefix+block.Hash), data); err != nil {
			return err
		}
		indexKey := fmt.Sprintf("%s%010d", indexKeyPrefix, block.Index)
		if err := txn.Set([]byte(indexKey), []byte(block.Hash)); err != nil {
			return err
		}
		return txn.Set([]byte(latestIndexKey), []byte(fmt.Sprintf("%d", block.Index)))
	})
	if err != nil {
		return fmt.Errorf("failed to persist block %d: %w", block.Index, err)
	}

	s.blockCache.Add(block.Hash, block)
	return nil
}

func (s *BadgerStore) LoadBlocks() ([]*models.Block, error) {
	blocks := make([]*models.Block, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(indexKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			hash, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			item, err := txn.Get([]byte(blockKeyPrefix + string(hash)))
			if err != nil {
				return fmt.Errorf("block %s indexed but missing: %w", hash, err)
			}

			var block models.Block
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &block)
			})
			if err != nil {
				return err
			}
			blocks = append(blocks, &block)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load chain: %w", err)
	}

	return blocks, nil
}

// GetBlockByHash reads a single block, consulting the LRU cache first.
func (s *BadgerStore) GetBlockByHash(hash string) (*models.Block, error) {
	if cached, ok := s.blockCache.Get(hash); ok {
		return cached.(*models.Block), nil
	}

	var block models.Block
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(blockKeyPrefix + hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &block)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("block %s not found", hash)
		}
		return nil, err
	}

	s.blockCache.Add(hash, &block)
	return &block, nil
}

func (s *BadgerStore) LoadElectionState() (*models.ElectionState, error) {
	var state models.ElectionState

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(electionStateKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load election state: %w", err)
	}

	return &state, nil
}

func (s *BadgerStore) SaveElectionState(state *models.ElectionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal election state: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(electionStateKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to persist election state: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
