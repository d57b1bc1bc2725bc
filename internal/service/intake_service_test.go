package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/civicguard/internal/domain"
	"github.com/spec-kit/civicguard/internal/events"
	"github.com/spec-kit/civicguard/internal/geo"
	"github.com/spec-kit/civicguard/internal/observability"
	"github.com/spec-kit/civicguard/internal/queue"
	"github.com/spec-kit/civicguard/internal/repository"
	"github.com/spec-kit/civicguard/internal/vision"
	apperrors "github.com/spec-kit/civicguard/pkg/util/errorutil"
)

type stubStore struct {
	url   string
	err   error
	calls int
}

func (s *stubStore) Store(ctx context.Context, data []byte, filenameHint, contentType string) (string, string, error) {
	s.calls++
	if s.err != nil {
		return "", "", s.err
	}
	return "key.jpg", s.url, nil
}

type stubGPS struct {
	lat, lng float64
	ok       bool
}

func (s *stubGPS) ExtractGPS(data []byte) (float64, float64, bool) {
	return s.lat, s.lng, s.ok
}

type stubGeoProvider struct {
	address string
	calls   int
}

func (s *stubGeoProvider) Name() string { return "stub" }

func (s *stubGeoProvider) Resolve(ctx context.Context, lat, lng float64) (string, bool) {
	s.calls++
	return s.address, s.address != ""
}

type failingQueue struct{}

func (failingQueue) Enqueue(ctx context.Context, job domain.FilingJob) error {
	return errors.New("queue down")
}

func (failingQueue) Dequeue(ctx context.Context) (*domain.FilingJob, error) {
	return nil, nil
}

type intakeFixture struct {
	service *IntakeService
	repo    repository.TicketRepository
	store   *stubStore
	gps     *stubGPS
	geocode *stubGeoProvider
	jobs    *queue.MemoryQueue
}

func newIntakeFixture(t *testing.T, mutate func(*IntakeDependencies)) *intakeFixture {
	t.Helper()
	fix := &intakeFixture{
		repo:    repository.NewMemoryTicketRepository(),
		store:   &stubStore{url: "http://localhost:8080/media/key.jpg"},
		gps:     &stubGPS{},
		geocode: &stubGeoProvider{},
		jobs:    queue.NewMemoryQueue(8),
	}
	deps := IntakeDependencies{
		TicketRepo: fix.repo,
		Store:      fix.store,
		Classifier: vision.NewRuleBasedClassifier(),
		GPS:        fix.gps,
		Resolver:   geo.NewResolverWithProviders([]geo.Provider{fix.geocode}, zap.NewNop(), observability.NewMetrics()),
		Jobs:       fix.jobs,
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     zap.NewNop(),
		Metrics:    observability.NewMetrics(),
	}
	if mutate != nil {
		mutate(&deps)
	}
	fix.service = NewIntakeService(deps)
	return fix
}

func TestIntake_NoCoordinatesYieldsUnknownAddress(t *testing.T) {
	fix := newIntakeFixture(t, nil)

	result, err := fix.service.Intake(context.Background(), IntakeInput{
		Data:     []byte("imagebytes"),
		Filename: "pothole-elm-street.jpg",
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}

	ticket := result.Ticket
	if ticket.Status != domain.TicketStatusCreated {
		t.Fatalf("expected CREATED, got %s", ticket.Status)
	}
	if ticket.Address != domain.UnknownAddress {
		t.Fatalf("expected Unknown address, got %q", ticket.Address)
	}
	if ticket.MediaURL == "" {
		t.Fatal("expected media URL to be set")
	}
	if ticket.IssueClass != domain.IssuePothole {
		t.Fatalf("expected pothole classification, got %s", ticket.IssueClass)
	}
	if result.Confidence != 0.9 {
		t.Fatalf("expected 0.9 confidence, got %v", result.Confidence)
	}
	if ticket.HasCoordinates() {
		t.Fatalf("expected no coordinates, got lat=%v lng=%v", ticket.Lat, ticket.Lng)
	}
	if fix.geocode.calls != 0 {
		t.Fatalf("geocoder must not run without coordinates, got %d calls", fix.geocode.calls)
	}

	stored, err := fix.repo.GetByID(context.Background(), ticket.ID)
	if err != nil || stored == nil {
		t.Fatalf("ticket not persisted: %v %v", stored, err)
	}

	job, err := fix.jobs.Dequeue(context.Background())
	if err != nil || job == nil {
		t.Fatalf("expected a filing job, got %v %v", job, err)
	}
	if job.TicketID != ticket.ID || job.IssueClass != domain.IssuePothole || job.Address != domain.UnknownAddress {
		t.Fatalf("unexpected job payload %+v", job)
	}
}

func TestIntake_CallerCoordinatesAreGeocoded(t *testing.T) {
	fix := newIntakeFixture(t, nil)
	fix.geocode.address = "12 Market Road, Ward-1"

	lat, lng := 12.97, 77.59
	result, err := fix.service.Intake(context.Background(), IntakeInput{
		Data:     []byte("imagebytes"),
		Filename: "garbage.jpg",
		Lat:      &lat,
		Lng:      &lng,
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if result.Ticket.Address != "12 Market Road, Ward-1" {
		t.Fatalf("expected geocoded address, got %q", result.Ticket.Address)
	}
	if !result.Ticket.HasCoordinates() {
		t.Fatal("expected coordinates on ticket")
	}
	if fix.geocode.calls != 1 {
		t.Fatalf("expected 1 geocode call, got %d", fix.geocode.calls)
	}
}

func TestIntake_ExifAutofillWhenCoordinatesAbsent(t *testing.T) {
	fix := newIntakeFixture(t, nil)
	fix.gps.lat, fix.gps.lng, fix.gps.ok = 48.8584, 2.2945, true
	fix.geocode.address = "Champ de Mars, Paris"

	result, err := fix.service.Intake(context.Background(), IntakeInput{
		Data:     []byte("imagebytes"),
		Filename: "streetlight.jpg",
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	ticket := result.Ticket
	if !ticket.HasCoordinates() || *ticket.Lat != 48.8584 || *ticket.Lng != 2.2945 {
		t.Fatalf("expected EXIF coordinates, got lat=%v lng=%v", ticket.Lat, ticket.Lng)
	}
	if ticket.Address != "Champ de Mars, Paris" {
		t.Fatalf("expected geocoded address, got %q", ticket.Address)
	}
}

func TestIntake_PartialCoordinateHintIsDropped(t *testing.T) {
	fix := newIntakeFixture(t, nil)

	lat := 12.97
	result, err := fix.service.Intake(context.Background(), IntakeInput{
		Data:     []byte("imagebytes"),
		Filename: "x.jpg",
		Lat:      &lat,
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if result.Ticket.Lat != nil || result.Ticket.Lng != nil {
		t.Fatalf("coordinates must stay jointly null, got lat=%v lng=%v", result.Ticket.Lat, result.Ticket.Lng)
	}
}

func TestIntake_StorageFailureIsFatal(t *testing.T) {
	fix := newIntakeFixture(t, nil)
	fix.store.err = errors.New("disk full")

	_, err := fix.service.Intake(context.Background(), IntakeInput{
		Data:     []byte("imagebytes"),
		Filename: "pothole.jpg",
	})
	if err == nil {
		t.Fatal("expected upload failure")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "UPLOAD_FAILED" {
		t.Fatalf("expected UPLOAD_FAILED, got %s", domainErr.Code)
	}

	count, _, listErr := fix.repo.List(context.Background(), repository.TicketFilter{})
	if listErr != nil || count != 0 {
		t.Fatalf("no ticket must exist after storage failure, count=%d err=%v", count, listErr)
	}
}

func TestIntake_EnqueueFailureIsNotFatal(t *testing.T) {
	fix := newIntakeFixture(t, func(deps *IntakeDependencies) {
		deps.Jobs = failingQueue{}
	})

	result, err := fix.service.Intake(context.Background(), IntakeInput{
		Data:     []byte("imagebytes"),
		Filename: "garbage.jpg",
	})
	if err != nil {
		t.Fatalf("enqueue failure must not fail intake: %v", err)
	}
	if result.Ticket.Status != domain.TicketStatusCreated {
		t.Fatalf("ticket must remain CREATED, got %s", result.Ticket.Status)
	}

	stored, _ := fix.repo.GetByID(context.Background(), result.Ticket.ID)
	if stored == nil || stored.Status != domain.TicketStatusCreated {
		t.Fatalf("persisted ticket must remain CREATED, got %+v", stored)
	}
}

func TestIntake_UnclassifiableFilenameDegrades(t *testing.T) {
	fix := newIntakeFixture(t, nil)

	result, err := fix.service.Intake(context.Background(), IntakeInput{
		Data:     []byte("imagebytes"),
		Filename: "IMG_0042.jpg",
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if result.Ticket.IssueClass != domain.IssueUnknown {
		t.Fatalf("expected unknown class, got %s", result.Ticket.IssueClass)
	}
	if result.Ticket.Severity != domain.SeverityMedium {
		t.Fatalf("expected medium severity, got %s", result.Ticket.Severity)
	}
	if result.Confidence != 0.6 {
		t.Fatalf("expected 0.6 confidence, got %v", result.Confidence)
	}
}
