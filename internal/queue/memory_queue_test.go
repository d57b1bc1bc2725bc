package queue

import (
	"context"
	"testing"

	"github.com/spec-kit/civicguard/internal/domain"
)

func TestMemoryQueue_Roundtrip(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	job := domain.FilingJob{
		TicketID:   "t-1",
		MediaURL:   "http://localhost:8080/media/t-1.jpg",
		IssueClass: domain.IssuePothole,
		Address:    "Elm Street",
	}
	if err := q.Enqueue(ctx, job); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1", q.Len())
	}

	got, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got == nil || got.TicketID != "t-1" || got.IssueClass != domain.IssuePothole {
		t.Fatalf("unexpected job %+v", got)
	}
}

func TestMemoryQueue_EmptyPollReturnsNil(t *testing.T) {
	q := NewMemoryQueue(4)

	got, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil on empty poll, got %+v", got)
	}
}

func TestMemoryQueue_FullBufferRejectsEnqueue(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	if err := q.Enqueue(ctx, domain.FilingJob{TicketID: "a"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, domain.FilingJob{TicketID: "b"}); err == nil {
		t.Fatal("expected rejection when buffer is full")
	}
}

func TestMemoryQueue_DequeueHonorsCancellation(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := q.Dequeue(ctx); err == nil {
		t.Fatal("expected context error after cancellation")
	}
}
