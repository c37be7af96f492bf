package ledger

import (
	"errors"
	"log"
	"sync"

	"github.com/vinaythakoor004/election-vote-blockchain/models"
)

// Sealer serializes sealing through a single worker goroutine so at
// most one sealing operation is ever in flight, no matter how many
// requests arrive. The vote path enqueues asynchronously (the vote is
// "accepted, durability pending" until the worker seals it); the mine
// endpoint round-trips synchronously through Seal.
type Sealer struct {
	ledger     *Ledger
	requestCh  chan sealRequest
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once
}

type sealRequest struct {
	minerAddress string
	resultCh     chan<- sealResult
}

type sealResult struct {
	block *models.Block
	err   error
}

func NewSealer(ledger *Ledger, queueSize int) *Sealer {
	return &Sealer{
		ledger:     ledger,
		requestCh:  make(chan sealRequest, queueSize),
		shutdownCh: make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (s *Sealer) Start() {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run()
	})
}

// Stop shuts the worker down after it finishes any in-flight sealing.
func (s *Sealer) Stop() {
	s.stopOnce.Do(func() {
		close(s.shutdownCh)
	})
	s.wg.Wait()
}

// Seal requests a sealing and blocks until it completes.
func (s *Sealer) Seal(minerAddress string) (*models.Block, error) {
	select {
	case <-s.shutdownCh:
		return nil, errors.New("sealer is shut down")
	default:
	}

	resultCh := make(chan sealResult, 1)
	select {
	case s.requestCh <- sealRequest{minerAddress: minerAddress, resultCh: resultCh}:
	case <-s.shutdownCh:
		return nil, errors.New("sealer is shut down")
	}

	result := <-resultCh
	return result.block, result.err
}

// Enqueue requests a sealing without waiting for the result. It reports
// false when the queue is full; the pending transactions simply wait
// for the next request.
func (s *Sealer) Enqueue(minerAddress string) bool {
	select {
	case s.requestCh <- sealRequest{minerAddress: minerAddress}:
		return true
	default:
		return false
	}
}

func (s *Sealer) run() {
	defer s.wg.Done()

	for {
		select {
		case req := <-s.requestCh:
			block, err := s.ledger.MinePendingTransactions(req.minerAddress)
			if err != nil && !errors.Is(err, ErrNothingToMine) {
				log.Printf("Sealing failed: %v", err)
			}
			if req.resultCh != nil {
				req.resultCh <- sealResult{block: block, err: err}
			}
		case <-s.shutdownCh:
			// Drain queued requests so synchronous callers are not
			// left waiting.
			for {
				select {
				case req := <-s.requestCh:
					if req.resultCh != nil {
						req.resultCh <- sealResult{err: errors.New("sealer is shut down")}
					}
				default:
					return
				}
			}
		}
	}
}
