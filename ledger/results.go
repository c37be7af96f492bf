package ledger

// CandidateResult is one candidate's tally.
type CandidateResult struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Votes       int    `json:"votes"`
}

// ElectionResults is the full tally across the chain.
type ElectionResults struct {
	Results    map[string]*CandidateResult `json:"results"`
	TotalVotes int                         `json:"total_votes"`
}

// GetElectionResults scans every sealed block in chain order and counts
// vote transactions per candidate. Every known candidate appears in the
// result, at zero if unvoted. Votes for candidates not in the roster
// should not exist given admission-time validation and are ignored.
func (l *Ledger) GetElectionResults() *ElectionResults {
	l.mu.RLock()
	defer l.mu.RUnlock()

	results := make(map[string]*CandidateResult, len(l.candidates))
	for _, c := range l.candidates {
		results[c.ID] = &CandidateResult{CandidateID: c.ID, Name: c.Name}
	}

	total := 0
	for _, block := range l.chain {
		for _, tx := range block.Transactions {
			if !tx.IsVote() {
				continue
			}
			result, known := results[tx.CandidateID]
			if !known {
				continue
			}
			result.Votes++
			total++
		}
	}

	return &ElectionResults{Results: results, TotalVotes: total}
}
