package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealerSynchronousRoundTrip(t *testing.T) {
	l, _ := newTestLedger(t)
	mustRegisterAndOpen(t, l, "v1")

	sealer := NewSealer(l, 4)
	sealer.Start()
	defer sealer.Stop()

	_, err := l.SubmitVote("v1", "candidateA")
	require.NoError(t, err)

	block, err := sealer.Seal("")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), block.Index)
	assert.Len(t, l.Chain(), 2)
}

func TestSealerReportsNothingToMine(t *testing.T) {
	l, _ := newTestLedger(t)

	sealer := NewSealer(l, 4)
	sealer.Start()
	defer sealer.Stop()

	_, err := sealer.Seal("")
	assert.ErrorIs(t, err, ErrNothingToMine)
}

func TestSealerAsyncEnqueue(t *testing.T) {
	l, _ := newTestLedger(t)
	mustRegisterAndOpen(t, l, "v1")

	sealer := NewSealer(l, 4)
	sealer.Start()
	defer sealer.Stop()

	_, err := l.SubmitVote("v1", "candidateA")
	require.NoError(t, err)
	require.True(t, sealer.Enqueue(""))

	// The vote is accepted immediately; durability follows once the
	// worker picks the request up.
	deadline := time.After(5 * time.Second)
	for len(l.Chain()) < 2 {
		select {
		case <-deadline:
			t.Fatal("sealing did not complete in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
	assert.Contains(t, l.VotedUsers(), "v1")
}

func TestSealerRejectsAfterStop(t *testing.T) {
	l, _ := newTestLedger(t)

	sealer := NewSealer(l, 4)
	sealer.Start()
	sealer.Stop()

	_, err := sealer.Seal("")
	assert.Error(t, err)
}
