package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one unit of post-processing work for a stored upload.
type Job struct {
	Kind        string // registry, events
	ObjectKey   string
	SubmittedAt time.Time
	TraceID     string
	Run         func(ctx context.Context) error
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
