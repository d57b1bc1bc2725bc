package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/civicguard/internal/domain"
)

// memoryTicketRepository is a mutex-guarded map store used when no postgres
// DSN is configured, and by tests.
type memoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

// NewMemoryTicketRepository instantiates the in-memory repository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{tickets: make(map[string]domain.Ticket)}
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	return &ticket, nil
}

func (r *memoryTicketRepository) Update(ctx context.Context, id string, changes TicketChanges) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}

	if changes.Status != nil {
		ticket.Status = *changes.Status
	}
	if changes.Address != nil {
		ticket.Address = *changes.Address
	}
	if changes.AuthorityName != nil {
		name := *changes.AuthorityName
		ticket.AuthorityName = &name
	}
	if changes.AuthorityTicketID != nil {
		atid := *changes.AuthorityTicketID
		ticket.AuthorityTicketID = &atid
	}
	if changes.Dispatched != nil {
		ticket.Dispatched = *changes.Dispatched
	}
	ticket.UpdatedAt = time.Now().UTC()

	r.tickets[id] = ticket
	return &ticket, nil
}

func (r *memoryTicketRepository) List(ctx context.Context, filter TicketFilter) (int, []domain.Ticket, error) {
	clampPage(&filter)

	r.mu.RLock()
	matched := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.IssueClass != nil && ticket.IssueClass != *filter.IssueClass {
			continue
		}
		matched = append(matched, ticket)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return total, []domain.Ticket{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return total, matched[filter.Offset:end], nil
}
