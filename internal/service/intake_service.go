package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/civicguard/internal/domain"
	"github.com/spec-kit/civicguard/internal/events"
	"github.com/spec-kit/civicguard/internal/geo"
	"github.com/spec-kit/civicguard/internal/media"
	"github.com/spec-kit/civicguard/internal/observability"
	"github.com/spec-kit/civicguard/internal/queue"
	"github.com/spec-kit/civicguard/internal/repository"
	"github.com/spec-kit/civicguard/internal/storage"
	"github.com/spec-kit/civicguard/internal/vision"
	apperrors "github.com/spec-kit/civicguard/pkg/util/errorutil"
)

// IntakeService drives the intake pipeline: store the image, classify,
// autofill coordinates, geocode, persist the ticket, and hand the filing job
// to the queue.
type IntakeService struct {
	tickets    repository.TicketRepository
	store      storage.ObjectStore
	classifier vision.Classifier
	gps        media.GPSExtractor
	resolver   *geo.Resolver
	jobs       queue.Queue
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	TicketRepo repository.TicketRepository
	Store      storage.ObjectStore
	Classifier vision.Classifier
	GPS        media.GPSExtractor
	Resolver   *geo.Resolver
	Jobs       queue.Queue
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// IntakeInput describes one citizen submission.
type IntakeInput struct {
	Data        []byte
	Filename    string
	ContentType string
	Note        *string
	Lat         *float64
	Lng         *float64
	Contact     *string
}

// IntakeResult is the full ticket projection returned to the caller,
// including derived fields that are not persisted.
type IntakeResult struct {
	Ticket     *domain.Ticket
	Confidence float64
	Note       *string
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	return &IntakeService{
		tickets:    deps.TicketRepo,
		store:      deps.Store,
		classifier: deps.Classifier,
		gps:        deps.GPS,
		resolver:   deps.Resolver,
		jobs:       deps.Jobs,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// Intake runs the pipeline for one submission. Only image storage and ticket
// creation are fatal; classification, EXIF, geocoding, and enqueue failures
// degrade to safe defaults and the request still succeeds.
func (s *IntakeService) Intake(ctx context.Context, input IntakeInput) (*IntakeResult, error) {
	_, mediaURL, err := s.store.Store(ctx, input.Data, input.Filename, input.ContentType)
	if err != nil {
		s.logger.Error("image storage failed", zap.Error(err))
		s.metrics.RecordIntake("upload_failed")
		return nil, apperrors.NewUploadFailed(err)
	}

	classification := s.classifier.Classify(input.Filename)

	lat, lng := input.Lat, input.Lng
	if lat == nil || lng == nil {
		if exifLat, exifLng, ok := s.gps.ExtractGPS(input.Data); ok {
			lat, lng = &exifLat, &exifLng
		} else {
			// keep the joint-null invariant when only one hint arrived
			lat, lng = nil, nil
		}
	}

	address := domain.UnknownAddress
	if lat != nil && lng != nil {
		address = s.resolver.ResolveAddress(ctx, lat, lng)
	}

	ticket := &domain.Ticket{
		ID:         uuid.NewString(),
		IssueClass: classification.IssueClass,
		Severity:   classification.Severity,
		Lat:        lat,
		Lng:        lng,
		Address:    address,
		Status:     domain.TicketStatusCreated,
		Contact:    input.Contact,
		MediaURL:   mediaURL,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.Error("ticket creation failed", zap.Error(err))
		s.metrics.RecordIntake("create_failed")
		return nil, apperrors.NewInternalError(err)
	}

	job := domain.FilingJob{
		TicketID:   ticket.ID,
		MediaURL:   mediaURL,
		IssueClass: ticket.IssueClass,
		Address:    address,
		Contact:    input.Contact,
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		// non-fatal: the ticket stays CREATED, which operators can observe
		s.logger.Warn("filing job enqueue failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		s.metrics.RecordIntake("enqueue_failed")
	}

	s.publishEvent(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		Timestamp: time.Now().UTC(),
		Payload: events.TicketCreatedPayload{
			IssueClass: ticket.IssueClass,
			Severity:   ticket.Severity,
			Address:    ticket.Address,
			MediaURL:   ticket.MediaURL,
		},
	})

	s.metrics.RecordIntake("created")
	return &IntakeResult{
		Ticket:     ticket,
		Confidence: classification.Confidence,
		Note:       input.Note,
	}, nil
}

func (s *IntakeService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
