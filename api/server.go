package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vinaythakoor004/election-vote-blockchain/ledger"
)

// Server is the thin HTTP layer over the ledger surface. It parses
// requests, maps admission failures to status codes and encodes
// responses; all invariants live in the ledger.
type Server struct {
	ledger       *ledger.Ledger
	sealer       *ledger.Sealer
	autoSeal     bool
	minerAddress string
}

type CastVoteRequest struct {
	VoterID     string `json:"voter_id"`
	CandidateID string `json:"candidate_id"`
}

type CastVoteResponse struct {
	Accepted      bool   `json:"accepted"`
	TransactionID string `json:"transaction_id"`
	// Votes are durable only once sealed into a block.
	Status string `json:"status"`
}

type RegisterVoterRequest struct {
	VoterID string `json:"voter_id"`
}

type RegisterVoterResponse struct {
	VoterID           string `json:"voter_id"`
	AlreadyRegistered bool   `json:"already_registered"`
	PublicKey         string `json:"public_key,omitempty"`
	PrivateKey        string `json:"private_key,omitempty"`
}

type MineRequest struct {
	MinerAddress string `json:"miner_address"`
}

type ElectionStatusRequest struct {
	Open *bool `json:"open"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(l *ledger.Ledger, sealer *ledger.Sealer, autoSeal bool, minerAddress string) *Server {
	return &Server{
		ledger:       l,
		sealer:       sealer,
		autoSeal:     autoSeal,
		minerAddress: minerAddress,
	}
}

// RegisterRoutes attaches all handlers to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/register", s.handleRegisterVoter)
	mux.HandleFunc("/api/vote", s.handleCastVote)
	mux.HandleFunc("/api/mine", s.handleMine)
	mux.HandleFunc("/api/chain", s.handleGetChain)
	mux.HandleFunc("/api/pending", s.handleGetPending)
	mux.HandleFunc("/api/results", s.handleGetResults)
	mux.HandleFunc("/api/candidates", s.handleGetCandidates)
	mux.HandleFunc("/api/validate", s.handleValidateChain)
	mux.HandleFunc("/api/voters", s.handleGetVoters)
	mux.HandleFunc("/api/voted", s.handleGetVoted)
	mux.HandleFunc("/api/election/status", s.handleElectionStatus)
}

func (s *Server) handleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	creds, alreadyRegistered, err := s.ledger.RegisterVoter(req.VoterID)
	if err != nil {
		writeError(w, err)
		return
	}

	response := RegisterVoterResponse{
		VoterID:           req.VoterID,
		AlreadyRegistered: alreadyRegistered,
	}
	if creds != nil {
		response.PublicKey = creds.PublicKey
		response.PrivateKey = creds.PrivateKey
	}

	writeJSON(w, response)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := s.ledger.SubmitVote(req.VoterID, req.CandidateID)
	if err != nil {
		writeError(w, err)
		return
	}

	status := "accepted, sealing pending"
	if s.autoSeal {
		s.sealer.Enqueue(s.minerAddress)
	}

	writeJSON(w, CastVoteResponse{
		Accepted:      true,
		TransactionID: tx.ID,
		Status:        status,
	})
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MineRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	block, err := s.sealer.Seal(req.MinerAddress)
	if errors.Is(err, ledger.ErrNothingToMine) {
		writeJSON(w, map[string]interface{}{
			"mined":   false,
			"message": "no pending transactions to mine",
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"mined": true,
		"block": block,
	})
}

func (s *Server) handleGetChain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	chain := s.ledger.Chain()
	response := struct {
		BlockCount int         `json:"block_count"`
		Blocks     interface{} `json:"blocks"`
		IsValid    bool        `json:"is_valid"`
		LastHash   string      `json:"last_hash,omitempty"`
	}{
		BlockCount: len(chain),
		Blocks:     chain,
		IsValid:    s.ledger.IsChainValid(),
	}
	if len(chain) > 0 {
		response.LastHash = chain[len(chain)-1].Hash
	}

	writeJSON(w, response)
}

func (s *Server) handleGetPending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ledger.PendingTransactions())
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ledger.GetElectionResults())
}

func (s *Server) handleGetCandidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ledger.Candidates())
}

func (s *Server) handleValidateChain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := struct {
		IsValid bool   `json:"is_valid"`
		Error   string `json:"error,omitempty"`
	}{IsValid: true}

	if err := s.ledger.Validate(); err != nil {
		response.IsValid = false
		response.Error = err.Error()
	}

	writeJSON(w, response)
}

func (s *Server) handleGetVoters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ledger.RegisteredVoters())
}

func (s *Server) handleGetVoted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ledger.VotedUsers())
}

func (s *Server) handleElectionStatus(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, map[string]bool{"is_election_open": s.ledger.IsElectionOpen()})
	case http.MethodPost:
		var req ElectionStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Open == nil {
			http.Error(w, "Invalid request body: open must be a boolean", http.StatusBadRequest)
			return
		}
		if err := s.ledger.SetElectionStatus(*req.Open); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]bool{"is_election_open": *req.Open})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, ledger.ErrUnknownCandidate):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrElectionClosed), errors.Is(err, ledger.ErrVoterNotRegistered):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrDuplicateVote):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
