package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/loan-compare/constants"
	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

// ProcessorQueue is a bounded worker pool. Each job runs under its own
// timeout so one slow document cannot stall the batch.
type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  ResultHandler

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}
func WithResultHandler(h ResultHandler) Option {
	return func(q *ProcessorQueue) {
		q.onDone = h
	}
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 30 * time.Second,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker.started", "worker_id", workerID)

				for job := range q.ch {
					outcome, err := q.run(job)
					if err != nil {
						q.logger.Error("worker.process.failed", "worker_id", workerID, "document_id", job.Document.ID, "err", err)
					} else {
						q.logger.Info("worker.process.ok",
							"worker_id", workerID,
							"document_id", job.Document.ID,
							"status", outcome.Status,
							"queued_ms", time.Since(job.SubmittedAt).Milliseconds(),
						)
					}
					if q.onDone != nil {
						q.onDone(job, outcome, err)
					}
				}

				q.logger.Debug("worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// run processes one job under the per-document timeout. A panic or an error
// without an outcome still yields a FAILED outcome.
func (q *ProcessorQueue) run(job Job) (outcome *entity.DocumentOutcome, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithRunID(ctx, job.RunID)
	ctx = common.WithDocumentID(ctx, job.Document.ID)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = common.NewAppError("PROCESSOR_PANIC", fmt.Sprintf("panic processing %s: %v", job.Document.ID, r), common.ErrInternal)
			outcome = nil
		}
		if outcome == nil {
			outcome = &entity.DocumentOutcome{
				DocumentID: job.Document.ID,
				SourcePath: job.Document.SourcePath,
				Status:     constants.DocumentStatusFailed,
			}
			if err != nil {
				outcome.Error = err.Error()
			}
		}
		if outcome.ElapsedMS == 0 {
			outcome.ElapsedMS = time.Since(start).Milliseconds()
		}
	}()

	outcome, err = q.proc.ProcessDocument(ctx, job.Document)
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("document %s: %w", job.Document.ID, ctx.Err())
	}
	return outcome, err
}

// Enqueue blocks while the buffer is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "document_id", job.Document.ID)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueued", "document_id", job.Document.ID, "index", job.Index)
		return nil
	default:
	}
	q.logger.Warn("queue.full", "document_id", job.Document.ID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for the workers to drain the
// buffer. It returns ctx.Err() if ctx ends first.
func (q *ProcessorQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
		return ctx.Err()
	case <-done:
		q.logger.Info("queue.shutdown.ok")
		return nil
	}
}

// RunBatch pushes every document through a fresh pool and returns the
// outcomes in input order.
func RunBatch(ctx context.Context, proc Processor, docs []entity.Document, runID string, logger *slog.Logger, opts ...Option) ([]entity.DocumentOutcome, error) {
	var mu sync.Mutex
	outcomes := make([]entity.DocumentOutcome, len(docs))
	snapshot := func() []entity.DocumentOutcome {
		mu.Lock()
		defer mu.Unlock()
		return append([]entity.DocumentOutcome(nil), outcomes...)
	}
	collect := func(job Job, outcome *entity.DocumentOutcome, _ error) {
		mu.Lock()
		outcomes[job.Index] = *outcome
		mu.Unlock()
	}
	q := NewProcessorQueue(proc, logger, append(opts, WithResultHandler(collect))...)

	for i, doc := range docs {
		mu.Lock()
		outcomes[i] = entity.DocumentOutcome{
			DocumentID: doc.ID,
			SourcePath: doc.SourcePath,
			Status:     constants.DocumentStatusQueued,
		}
		mu.Unlock()
		if err := q.Enqueue(ctx, Job{Index: i, Document: doc, RunID: runID, SubmittedAt: time.Now()}); err != nil {
			_ = q.Shutdown(context.Background())
			return snapshot(), fmt.Errorf("enqueue %s: %w", doc.ID, err)
		}
	}
	if err := q.Shutdown(ctx); err != nil {
		return snapshot(), fmt.Errorf("drain queue: %w", err)
	}
	return snapshot(), nil
}
