package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkerQueue runs jobs on a fixed pool of goroutines, each under its own
// timeout detached from the request that enqueued it.
type WorkerQueue struct {
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*WorkerQueue)

func WithWorkers(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *WorkerQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewWorkerQueue(logger *slog.Logger, opts ...Option) *WorkerQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &WorkerQueue{
		logger:  logger,
		workers: 4,
		timeout: 30 * time.Second,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *WorkerQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker_started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Debug("queue.worker_stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *WorkerQueue) run(workerID int, job Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panic: %v", r)
			}
		}()
		return job.Run(ctx)
	}()

	attrs := []any{
		"worker_id", workerID,
		"kind", job.Kind,
		"object_key", job.ObjectKey,
		"req_id", job.TraceID,
		"wait_ms", start.Sub(job.SubmittedAt).Milliseconds(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		q.logger.Error("queue.job_failed", append(attrs, "error", err)...)
		return
	}
	q.logger.Debug("queue.job_ok", attrs...)
}

// Enqueue blocks while the queue is full until ctx is done.
func (q *WorkerQueue) Enqueue(ctx context.Context, job Job) error {
	if job.Run == nil {
		return fmt.Errorf("enqueue %s: job has no Run func", job.Kind)
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue_rejected", "kind", job.Kind, "object_key", job.ObjectKey)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		return nil
	default:
	}

	q.logger.Warn("queue.full", "kind", job.Kind, "object_key", job.ObjectKey, "capacity", cap(q.ch))
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue %s: %w", job.Kind, ctx.Err())
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or for
// ctx to end.
func (q *WorkerQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown_interrupted", "error", ctx.Err())
	case <-done:
		q.logger.Info("queue.drained")
	}
}

// Inline runs each job synchronously on Enqueue. Tests and the CLI use it.
type Inline struct {
	Timeout time.Duration
}

func (i Inline) Enqueue(ctx context.Context, job Job) error {
	if job.Run == nil {
		return fmt.Errorf("enqueue %s: job has no Run func", job.Kind)
	}
	if i.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.Timeout)
		defer cancel()
	}
	return job.Run(ctx)
}

func (Inline) Shutdown(context.Context) {}
