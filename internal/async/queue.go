package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job carries one document through the worker pool. Index is the document's
// position in the batch so results can be written back in input order.
type Job struct {
	Index       int
	Document    entity.Document
	RunID       string
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}

// Processor turns one document into an outcome.
type Processor interface {
	ProcessDocument(ctx context.Context, doc entity.Document) (*entity.DocumentOutcome, error)
}

// ResultHandler receives every finished job. It is called from worker
// goroutines and must be safe for concurrent use.
type ResultHandler func(job Job, outcome *entity.DocumentOutcome, err error)
