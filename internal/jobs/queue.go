// Package jobs decouples statement upload from statement processing with an
// in-process queue and a background worker. Suitable for single-instance
// deployments; a broker-backed queue can replace it without touching the
// pipeline.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ParseStatementJob asks the worker to ingest one uploaded statement.
type ParseStatementJob struct {
	StatementID uuid.UUID
	EnqueuedAt  time.Time
}

// Queue is an in-memory job queue backed by a buffered channel. Safe for
// concurrent use.
type Queue struct {
	jobs      chan ParseStatementJob
	closeChan chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a queue. bufferSize bounds how many statements can wait
// before Enqueue blocks.
func NewQueue(bufferSize int) *Queue {
	return &Queue{
		jobs:      make(chan ParseStatementJob, bufferSize),
		closeChan: make(chan struct{}),
	}
}

// Enqueue submits a statement for background processing.
func (q *Queue) Enqueue(ctx context.Context, job ParseStatementJob) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	select {
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	default:
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Close stops accepting jobs. Jobs already queued are still delivered.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.closeChan)
		close(q.jobs)
	})
}
