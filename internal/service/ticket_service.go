package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/civicguard/internal/domain"
	"github.com/spec-kit/civicguard/internal/repository"
)

// TicketService serves read access to tickets and the dashboard rollup.
type TicketService struct {
	tickets repository.TicketRepository
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository) *TicketService {
	return &TicketService{tickets: tickets}
}

// GetTicket returns a ticket by id, or nil when it does not exist.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// ListTickets returns the total count and one page of tickets.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) (int, []domain.Ticket, error) {
	return s.tickets.List(ctx, filter)
}

// Stats summarizes the pipeline for dashboards.
type Stats struct {
	Open          int    `json:"open"`
	FiledToday    int    `json:"filed_today"`
	AvgTimeToFile string `json:"avg_time_to_file"`
}

// Stats computes open ticket count, tickets filed today, and the average
// created-to-filed duration over the most recent tickets.
func (s *TicketService) Stats(ctx context.Context) (*Stats, error) {
	_, items, err := s.tickets.List(ctx, repository.TicketFilter{Limit: 200})
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	open := 0
	filedToday := 0
	var durations []time.Duration

	for i := range items {
		t := &items[i]
		switch t.Status {
		case domain.TicketStatusCreated, domain.TicketStatusFiling:
			open++
		case domain.TicketStatusFiled:
			created := t.CreatedAt.UTC()
			if created.Truncate(24 * time.Hour).Equal(today) {
				filedToday++
			}
			if !t.UpdatedAt.Before(t.CreatedAt) {
				durations = append(durations, t.UpdatedAt.Sub(t.CreatedAt))
			}
		}
	}

	return &Stats{
		Open:          open,
		FiledToday:    filedToday,
		AvgTimeToFile: formatAvg(durations),
	}, nil
}

func formatAvg(durations []time.Duration) string {
	if len(durations) == 0 {
		return "0m 00s"
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	avg := int(total.Seconds()) / len(durations)
	if avg == 0 {
		return "0m 00s"
	}
	return fmt.Sprintf("%dm %02ds", avg/60, avg%60)
}
