package queue

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/civicguard/internal/domain"
)

const memoryPoll = 500 * time.Millisecond

// MemoryQueue is a channel-backed queue for development runs without Redis
// and for tests.
type MemoryQueue struct {
	jobs chan domain.FilingJob
}

// NewMemoryQueue constructs a queue with a bounded buffer.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryQueue{jobs: make(chan domain.FilingJob, capacity)}
}

// Enqueue publishes a job; fails when the buffer is full rather than block
// the intake request.
func (q *MemoryQueue) Enqueue(ctx context.Context, job domain.FilingJob) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return errors.New("filing queue full")
	}
}

// Dequeue waits up to the poll window for the next job.
func (q *MemoryQueue) Dequeue(ctx context.Context) (*domain.FilingJob, error) {
	timer := time.NewTimer(memoryPoll)
	defer timer.Stop()
	select {
	case job := <-q.jobs:
		return &job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	}
}

// Len reports the number of buffered jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}
