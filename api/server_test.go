package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaythakoor004/election-vote-blockchain/ledger"
	"github.com/vinaythakoor004/election-vote-blockchain/models"
	"github.com/vinaythakoor004/election-vote-blockchain/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	l, err := ledger.New(storage.NewMemoryStore(), ledger.Config{
		Difficulty: 2,
		Candidates: []models.Candidate{
			{ID: "candidateA", Name: "Candidate A"},
			{ID: "candidateB", Name: "Candidate B"},
		},
	})
	require.NoError(t, err)

	sealer := ledger.NewSealer(l, 4)
	sealer.Start()
	t.Cleanup(sealer.Stop)

	mux := http.NewServeMux()
	NewServer(l, sealer, false, "").RegisterRoutes(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestVotingEndToEnd(t *testing.T) {
	ts := newTestServer(t)

	// Open the election.
	resp := postJSON(t, ts.URL+"/api/election/status", map[string]bool{"open": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Register a voter; credentials come back once.
	resp = postJSON(t, ts.URL+"/api/register", map[string]string{"voter_id": "v1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reg RegisterVoterResponse
	decodeBody(t, resp, &reg)
	assert.False(t, reg.AlreadyRegistered)
	assert.NotEmpty(t, reg.PrivateKey)

	// Cast a vote; it is accepted, durability pending.
	resp = postJSON(t, ts.URL+"/api/vote", map[string]string{"voter_id": "v1", "candidate_id": "candidateA"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var vote CastVoteResponse
	decodeBody(t, resp, &vote)
	assert.True(t, vote.Accepted)
	assert.NotEmpty(t, vote.TransactionID)

	// Seal it.
	resp = postJSON(t, ts.URL+"/api/mine", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mined struct {
		Mined bool          `json:"mined"`
		Block *models.Block `json:"block"`
	}
	decodeBody(t, resp, &mined)
	require.True(t, mined.Mined)
	assert.Equal(t, uint64(1), mined.Block.Index)

	// Tally and integrity.
	resp, err := http.Get(ts.URL + "/api/results")
	require.NoError(t, err)
	var results ledger.ElectionResults
	decodeBody(t, resp, &results)
	assert.Equal(t, 1, results.Results["candidateA"].Votes)

	resp, err = http.Get(ts.URL + "/api/validate")
	require.NoError(t, err)
	var validation struct {
		IsValid bool `json:"is_valid"`
	}
	decodeBody(t, resp, &validation)
	assert.True(t, validation.IsValid)

	resp, err = http.Get(ts.URL + "/api/voted")
	require.NoError(t, err)
	var voted []string
	decodeBody(t, resp, &voted)
	assert.Equal(t, []string{"v1"}, voted)
}

func TestVoteErrorStatusCodes(t *testing.T) {
	ts := newTestServer(t)

	// Election starts closed.
	resp := postJSON(t, ts.URL+"/api/vote", map[string]string{"voter_id": "v1", "candidate_id": "candidateA"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/election/status", map[string]bool{"open": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Unregistered voter.
	resp = postJSON(t, ts.URL+"/api/vote", map[string]string{"voter_id": "ghost", "candidate_id": "candidateA"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/register", map[string]string{"voter_id": "v1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Unknown candidate.
	resp = postJSON(t, ts.URL+"/api/vote", map[string]string{"voter_id": "v1", "candidate_id": "nobody"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Duplicate vote (second admission while the first is pending).
	resp = postJSON(t, ts.URL+"/api/vote", map[string]string{"voter_id": "v1", "candidate_id": "candidateA"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/vote", map[string]string{"voter_id": "v1", "candidate_id": "candidateA"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestElectionStatusRejectsNonBoolean(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/election/status", "application/json",
		bytes.NewReader([]byte(`{"open": "yes"}`)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(ts.URL+"/api/election/status", "application/json",
		bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestMineWithEmptyPool(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/mine", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Mined   bool   `json:"mined"`
		Message string `json:"message"`
	}
	decodeBody(t, resp, &result)
	assert.False(t, result.Mined)
	assert.NotEmpty(t, result.Message)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/vote")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/mine")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterAlreadyRegistered(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/register", map[string]string{"voter_id": "v1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/register", map[string]string{"voter_id": "v1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reg RegisterVoterResponse
	decodeBody(t, resp, &reg)
	assert.True(t, reg.AlreadyRegistered)
	assert.Empty(t, reg.PrivateKey, "credentials are only issued once")
}
