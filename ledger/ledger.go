package ledger

import (
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/vinaythakoor004/election-vote-blockchain/models"
	"github.com/vinaythakoor004/election-vote-blockchain/storage"
)

const DefaultDifficulty = 3

// Config seeds a Ledger at construction time.
type Config struct {
	Difficulty   int
	MiningReward decimal.Decimal
	// Candidates is the static roster. When empty, the roster from the
	// persisted election snapshot is kept.
	Candidates []models.Candidate
}

// Ledger owns the chain, the pending-transaction pool and the election
// state. All mutations go through its methods; admission and sealing
// are serialized by a single mutex so two concurrent admissions can
// never both pass the duplicate-vote check, and at most one sealing
// runs at a time.
type Ledger struct {
	mu    sync.RWMutex
	store storage.Store

	difficulty   int
	miningReward decimal.Decimal

	chain   []*models.Block
	pending []models.Transaction

	candidates     []models.Candidate
	candidateIndex map[string]models.Candidate

	registeredVoters map[string]bool
	votedUsers       map[string]bool
	// pendingVoters marks voters whose vote is admitted but not yet
	// sealed, so a second admission before sealing is rejected too.
	pendingVoters map[string]bool
	voterKeys     map[string]string

	electionOpen bool
}

// VoterCredentials is returned once at registration. The private key is
// never stored.
type VoterCredentials struct {
	VoterID    string `json:"voter_id"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// New constructs a Ledger on top of a persistence gateway. If no blocks
// exist a genesis block is created and persisted; if the stored chain
// cannot be loaded the ledger falls back to an in-memory genesis-only
// chain rather than failing startup.
func New(store storage.Store, cfg Config) (*Ledger, error) {
	if cfg.Difficulty <= 0 {
		cfg.Difficulty = DefaultDifficulty
	}

	l := &Ledger{
		store:            store,
		difficulty:       cfg.Difficulty,
		miningReward:     cfg.MiningReward,
		pending:          make([]models.Transaction, 0),
		candidateIndex:   make(map[string]models.Candidate),
		registeredVoters: make(map[string]bool),
		votedUsers:       make(map[string]bool),
		pendingVoters:    make(map[string]bool),
		voterKeys:        make(map[string]string),
	}

	l.loadChain()
	stateAbsent := l.loadElectionState()
	l.setCandidates(cfg.Candidates)

	if stateAbsent {
		// First run: persist the empty default state.
		if err := l.saveStateLocked(); err != nil {
			log.Printf("Failed to persist default election state: %v", err)
		}
	}

	// The voted-users view is derived from sealed blocks; the rebuild
	// is authoritative over whatever the snapshot carried.
	rebuilt := rebuildVotedUsers(l.chain)
	if len(rebuilt) != len(l.votedUsers) {
		log.Printf("voted-users snapshot out of date (%d stored, %d in chain), using chain",
			len(l.votedUsers), len(rebuilt))
	}
	l.votedUsers = rebuilt

	return l, nil
}

func (l *Ledger) loadChain() {
	blocks, err := l.store.LoadBlocks()
	if err != nil {
		log.Printf("Failed to load chain, falling back to in-memory genesis chain: %v", err)
		l.chain = []*models.Block{models.NewGenesisBlock()}
		return
	}

	if len(blocks) == 0 {
		genesis := models.NewGenesisBlock()
		if err := l.store.SaveBlock(genesis); err != nil {
			log.Printf("Failed to persist genesis block: %v", err)
		}
		l.chain = []*models.Block{genesis}
		return
	}

	l.chain = blocks
	log.Printf("Loaded chain with %d blocks", len(blocks))
}

// loadElectionState populates the in-memory sets from the persisted
// snapshot. It reports whether no snapshot existed yet.
func (l *Ledger) loadElectionState() bool {
	state, err := l.store.LoadElectionState()
	if err != nil {
		log.Printf("Failed to load election state, starting empty: %v", err)
		return false
	}
	if state == nil {
		return true
	}

	for _, voterID := range state.RegisteredVoters {
		l.registeredVoters[voterID] = true
	}
	for _, voterID := range state.VotedUsers {
		l.votedUsers[voterID] = true
	}
	for voterID, key := range state.VoterKeys {
		l.voterKeys[voterID] = key
	}
	l.candidates = state.Candidates
	l.electionOpen = state.IsElectionOpen
	return false
}

func (l *Ledger) setCandidates(candidates []models.Candidate) {
	if len(candidates) > 0 {
		l.candidates = candidates
	}
	l.candidateIndex = make(map[string]models.Candidate)
	for _, c := range l.candidates {
		l.candidateIndex[c.ID] = c
	}
}

// SubmitVote runs the admission checks in order and, on success, mints
// a vote transaction into the pending pool. The vote is accepted but
// not durable until the next sealing; the voter is marked pending so a
// second admission before sealing fails with ErrDuplicateVote.
func (l *Ledger) SubmitVote(voterID, candidateID string) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.electionOpen {
		return nil, ErrElectionClosed
	}
	if voterID == "" || candidateID == "" {
		return nil, fmt.Errorf("%w: voter id and candidate id are required", ErrInvalidInput)
	}
	if _, ok := l.candidateIndex[candidateID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCandidate, candidateID)
	}
	if !l.registeredVoters[voterID] {
		return nil, fmt.Errorf("%w: %s", ErrVoterNotRegistered, voterID)
	}
	if l.votedUsers[voterID] || l.pendingVoters[voterID] {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateVote, voterID)
	}

	tx := models.NewVoteTransaction(voterID, candidateID)
	l.pending = append(l.pending, tx)
	l.pendingVoters[voterID] = true

	return &tx, nil
}

// RegisterVoter adds a voter to the registration set and issues an
// ECDSA key pair. A repeated registration is not an error: it reports
// alreadyRegistered and changes nothing.
func (l *Ledger) RegisterVoter(voterID string) (creds *VoterCredentials, alreadyRegistered bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if voterID == "" {
		return nil, false, fmt.Errorf("%w: voter id is required", ErrInvalidInput)
	}
	if l.registeredVoters[voterID] {
		return nil, true, nil
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate voter key pair: %w", err)
	}
	publicKey := hex.EncodeToString(crypto.FromECDSAPub(&key.PublicKey))

	l.registeredVoters[voterID] = true
	l.voterKeys[voterID] = publicKey

	if err := l.saveStateLocked(); err != nil {
		log.Printf("Failed to persist election state after registration: %v", err)
	}

	return &VoterCredentials{
		VoterID:    voterID,
		PublicKey:  publicKey,
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(key)),
	}, false, nil
}

// SetElectionStatus opens or closes the election and persists the state.
func (l *Ledger) SetElectionStatus(open bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.electionOpen = open
	if err := l.saveStateLocked(); err != nil {
		log.Printf("Failed to persist election state after status change: %v", err)
	}
	return nil
}

func (l *Ledger) IsElectionOpen() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.electionOpen
}

// Chain returns a copy of the block sequence from genesis to tail.
func (l *Ledger) Chain() []*models.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	chain := make([]*models.Block, len(l.chain))
	copy(chain, l.chain)
	return chain
}

func (l *Ledger) PendingTransactions() []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pending := make([]models.Transaction, len(l.pending))
	copy(pending, l.pending)
	return pending
}

func (l *Ledger) Candidates() []models.Candidate {
	l.mu.RLock()
	defer l.mu.RUnlock()

	candidates := make([]models.Candidate, len(l.candidates))
	copy(candidates, l.candidates)
	return candidates
}

func (l *Ledger) RegisteredVoters() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.registeredVoters)
}

func (l *Ledger) VotedUsers() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.votedUsers)
}

// saveStateLocked persists the election snapshot. Callers hold l.mu.
func (l *Ledger) saveStateLocked() error {
	state := &models.ElectionState{
		RegisteredVoters: sortedKeys(l.registeredVoters),
		VotedUsers:       sortedKeys(l.votedUsers),
		Candidates:       l.candidates,
		IsElectionOpen:   l.electionOpen,
		VoterKeys:        l.voterKeys,
		LastUpdated:      time.Now().Unix(),
	}
	if err := l.store.SaveElectionState(state); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
