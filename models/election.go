package models

type Candidate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ElectionState is the persisted snapshot of the election bookkeeping.
// VotedUsers is a materialized view over the chain's vote transactions;
// the ledger rebuilds it from sealed blocks on load.
type ElectionState struct {
	RegisteredVoters []string          `json:"registered_voters"`
	VotedUsers       []string          `json:"voted_users"`
	Candidates       []Candidate       `json:"candidates"`
	IsElectionOpen   bool              `json:"is_election_open"`
	VoterKeys        map[string]string `json:"voter_keys,omitempty"`
	LastUpdated      int64             `json:"last_updated"`
}
