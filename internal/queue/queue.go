package queue

import (
	"context"

	"github.com/spec-kit/civicguard/internal/domain"
)

// Queue carries filing jobs from intake to the filing workers.
//
// Delivery is at-least-once with no ordering guarantee across jobs; workers
// must tolerate duplicate delivery for the same ticket.
type Queue interface {
	// Enqueue publishes a job. May fail; callers decide whether that is fatal.
	Enqueue(ctx context.Context, job domain.FilingJob) error
	// Dequeue blocks briefly for the next job. Returns (nil, nil) when none
	// arrived within the poll window so consumers can check for shutdown.
	Dequeue(ctx context.Context) (*domain.FilingJob, error)
}
