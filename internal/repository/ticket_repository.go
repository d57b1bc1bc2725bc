package repository

import (
	"context"

	"github.com/spec-kit/civicguard/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Status     *domain.TicketStatus
	IssueClass *domain.IssueClass
	Limit      int
	Offset     int
}

// TicketChanges carries partial field updates. Nil fields are left untouched;
// updates are last-write-wins per field.
type TicketChanges struct {
	Status            *domain.TicketStatus
	Address           *string
	AuthorityName     *string
	AuthorityTicketID *string
	Dispatched        *bool
}

// TicketRepository encapsulates ticket persistence.
//
// GetByID and Update return (nil, nil) when the ticket does not exist: an
// absent ticket is a normal outcome for both writers, not a fault.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) (int, []domain.Ticket, error)
	Update(ctx context.Context, id string, changes TicketChanges) (*domain.Ticket, error)
}

func clampPage(filter *TicketFilter) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
}
