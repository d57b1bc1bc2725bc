package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/civicguard/internal/domain"
	"github.com/spec-kit/civicguard/internal/events"
	"github.com/spec-kit/civicguard/internal/notify"
	"github.com/spec-kit/civicguard/internal/observability"
	"github.com/spec-kit/civicguard/internal/queue"
	"github.com/spec-kit/civicguard/internal/repository"
	"github.com/spec-kit/civicguard/internal/routing"
)

// FilingWorker consumes filing jobs and files tickets with the routed
// authority. Filing is best-effort: dispatch failures are logged and the
// ticket still terminates at FILED, which downstream readers interpret as
// "attempted", not "confirmed delivered".
type FilingWorker struct {
	tickets    repository.TicketRepository
	routes     *routing.Table
	email      notify.EmailSender
	api        notify.ApiNotifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// FilingDependencies bundles collaborators for the worker.
type FilingDependencies struct {
	TicketRepo repository.TicketRepository
	Routes     *routing.Table
	Email      notify.EmailSender
	API        notify.ApiNotifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewFilingWorker constructs a worker.
func NewFilingWorker(deps FilingDependencies) *FilingWorker {
	return &FilingWorker{
		tickets:    deps.TicketRepo,
		routes:     deps.Routes,
		email:      deps.Email,
		api:        deps.API,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// StartPool runs count consumer goroutines against the queue and returns a
// function that blocks until they drain after ctx is cancelled.
func StartPool(ctx context.Context, count int, jobs queue.Queue, worker *FilingWorker, logger *zap.Logger) func() {
	if count <= 0 {
		count = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker.run(ctx, id, jobs)
		}(i)
	}
	logger.Info("filing workers started", zap.Int("count", count))
	return wg.Wait
}

func (w *FilingWorker) run(ctx context.Context, id int, jobs queue.Queue) {
	for {
		if ctx.Err() != nil {
			return
		}
		job, err := jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("dequeue failed", zap.Int("worker", id), zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}
		if err := w.ProcessJob(ctx, *job); err != nil {
			w.logger.Error("filing job failed",
				zap.Int("worker", id),
				zap.String("ticket_id", job.TicketID),
				zap.Error(err))
		}
	}
}

// ProcessJob files one ticket: resolve the route, move the ticket to FILING,
// dispatch the message, and terminate at FILED with a deterministic
// authority ticket id. A missing ticket is a silent no-op; duplicate
// delivery of the same job converges on the same final state.
func (w *FilingWorker) ProcessJob(ctx context.Context, job domain.FilingJob) error {
	ticket, err := w.tickets.GetByID(ctx, job.TicketID)
	if err != nil {
		return fmt.Errorf("lookup ticket %s: %w", job.TicketID, err)
	}
	if ticket == nil {
		w.logger.Info("ticket missing, skipping filing job", zap.String("ticket_id", job.TicketID))
		return nil
	}

	route := w.routes.Lookup(job.IssueClass, "")

	filing := domain.TicketStatusFiling
	if _, err := w.tickets.Update(ctx, job.TicketID, repository.TicketChanges{
		Status:        &filing,
		AuthorityName: &route.AuthorityName,
	}); err != nil {
		return fmt.Errorf("mark ticket %s filing: %w", job.TicketID, err)
	}

	w.publishEvent(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketFiling,
		TicketID:  job.TicketID,
		Timestamp: time.Now().UTC(),
		Payload: events.TicketFilingPayload{
			IssueClass:    job.IssueClass,
			AuthorityName: route.AuthorityName,
			EndpointType:  string(route.EndpointType),
		},
	})

	subject := fmt.Sprintf("[CivicGuard] %s at %s", job.IssueClass, job.Address)
	contact := ""
	if job.Contact != nil {
		contact = *job.Contact
	}
	body := fmt.Sprintf("Issue: %s\nAddress: %s\nCitizen: %s\nPhoto: %s",
		job.IssueClass, job.Address, contact, job.MediaURL)

	dispatched := true
	var dispatchErr error
	if route.EndpointType == routing.EndpointEmail {
		dispatchErr = w.email.Send(route.EndpointValue, subject, body)
	} else {
		dispatchErr = w.api.Post(ctx, route.EndpointValue, map[string]string{
			"title":   subject,
			"details": body,
			"photo":   job.MediaURL,
		})
	}
	if dispatchErr != nil {
		// swallowed: filing is best-effort and the ticket still reaches FILED
		dispatched = false
		w.logger.Warn("filing dispatch failed",
			zap.String("ticket_id", job.TicketID),
			zap.String("authority", route.AuthorityName),
			zap.String("endpoint_type", string(route.EndpointType)),
			zap.Error(dispatchErr))
	}
	w.metrics.RecordFiling(string(route.EndpointType), dispatched)

	filed := domain.TicketStatusFiled
	authorityTicketID := AuthorityTicketID(job.TicketID)
	if _, err := w.tickets.Update(ctx, job.TicketID, repository.TicketChanges{
		Status:            &filed,
		AuthorityTicketID: &authorityTicketID,
		Dispatched:        &dispatched,
	}); err != nil {
		return fmt.Errorf("mark ticket %s filed: %w", job.TicketID, err)
	}

	w.publishEvent(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketFiled,
		TicketID:  job.TicketID,
		Timestamp: time.Now().UTC(),
		Payload: events.TicketFiledPayload{
			AuthorityName:     route.AuthorityName,
			AuthorityTicketID: authorityTicketID,
			Dispatched:        dispatched,
		},
	})
	return nil
}

// AuthorityTicketID derives the authority-side reference from the ticket id.
// Deterministic so duplicate job delivery converges on the same value.
func AuthorityTicketID(ticketID string) string {
	short := ticketID
	if len(short) > 8 {
		short = short[:8]
	}
	return "CG-" + short
}

func (w *FilingWorker) publishEvent(ctx context.Context, event events.Event) {
	if w.dispatcher == nil {
		return
	}
	_ = w.dispatcher.Publish(ctx, event)
}
