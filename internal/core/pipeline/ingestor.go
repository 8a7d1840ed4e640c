package pipeline

import (
	"context"
	"time"

	"github.com/markdave123-py/Sectora/internal/logging"
)

// Ingestor is the background processing surface: uploads enqueue a request
// and workers drain the queue.
type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(req Request)
}

// processTimeout bounds one document run.
const processTimeout = 5 * time.Minute

// DocumentIngestor runs pipeline requests on a fixed pool of workers fed
// by a bounded in-memory queue (easy to swap with a broker later).
type DocumentIngestor struct {
	orch *Orchestrator
	jobs chan Request
}

// NewDocumentIngestor constructs the ingestor with a bounded job queue (64).
func NewDocumentIngestor(orch *Orchestrator) *DocumentIngestor {
	return &DocumentIngestor{
		orch: orch,
		jobs: make(chan Request, 64),
	}
}

// Start launches the worker goroutines. Cancelling ctx stops the workers
// and aborts any in-flight run; requests still queued at that point are
// dropped, which is safe because a re-run is idempotent end to end.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					logging.Infof("ingestor worker %d shutting down", w)
					return
				case req := <-i.jobs:
					logging.Infow("processing document",
						"worker", w, "document_id", req.DocumentID, "sector", req.Sector)

					runCtx, cancel := context.WithTimeout(ctx, processTimeout)
					if _, err := i.orch.Run(runCtx, req); err != nil {
						logging.Errorf("ingestor: document %s: %v", req.DocumentID, err)
					}
					cancel()
				}
			}
		}(w)
	}
}

// Enqueue schedules a request for background processing. If the queue is
// full, this call blocks until space frees up.
func (i *DocumentIngestor) Enqueue(req Request) {
	i.jobs <- req
}

var _ Ingestor = (*DocumentIngestor)(nil)
