package geo

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/civicguard/internal/domain"
	"github.com/spec-kit/civicguard/internal/observability"
)

type stubProvider struct {
	name    string
	address string
	ok      bool
	calls   int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(ctx context.Context, lat, lng float64) (string, bool) {
	s.calls++
	return s.address, s.ok
}

func newTestResolver(providers ...Provider) *Resolver {
	return NewResolverWithProviders(providers, zap.NewNop(), observability.NewMetrics())
}

func floatPtr(v float64) *float64 { return &v }

func TestResolveAddress_NilCoordinatesShortCircuit(t *testing.T) {
	primary := &stubProvider{name: "primary", address: "somewhere", ok: true}
	resolver := newTestResolver(primary)

	cases := []struct {
		lat, lng *float64
	}{
		{nil, nil},
		{floatPtr(12.97), nil},
		{nil, floatPtr(77.59)},
	}
	for _, tc := range cases {
		if addr := resolver.ResolveAddress(context.Background(), tc.lat, tc.lng); addr != domain.UnknownAddress {
			t.Fatalf("expected Unknown for partial coordinates, got %q", addr)
		}
	}
	if primary.calls != 0 {
		t.Fatalf("provider must not be called without coordinates, got %d calls", primary.calls)
	}
}

func TestResolveAddress_PrimarySuccessSkipsSecondary(t *testing.T) {
	primary := &stubProvider{name: "primary", address: "MG Road, Bengaluru", ok: true}
	secondary := &stubProvider{name: "secondary", address: "fallback", ok: true}
	resolver := newTestResolver(primary, secondary)

	addr := resolver.ResolveAddress(context.Background(), floatPtr(12.97), floatPtr(77.59))
	if addr != "MG Road, Bengaluru" {
		t.Fatalf("unexpected address %q", addr)
	}
	if primary.calls != 1 {
		t.Fatalf("expected 1 primary call, got %d", primary.calls)
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary must not be called after primary success, got %d calls", secondary.calls)
	}
}

func TestResolveAddress_FallsThroughToSecondary(t *testing.T) {
	primary := &stubProvider{name: "primary"}
	secondary := &stubProvider{name: "secondary", address: "Fallback Street", ok: true}
	resolver := newTestResolver(primary, secondary)

	addr := resolver.ResolveAddress(context.Background(), floatPtr(12.97), floatPtr(77.59))
	if addr != "Fallback Street" {
		t.Fatalf("unexpected address %q", addr)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("expected one call each, got primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestResolveAddress_AllProvidersExhausted(t *testing.T) {
	primary := &stubProvider{name: "primary"}
	secondary := &stubProvider{name: "secondary"}
	resolver := newTestResolver(primary, secondary)

	if addr := resolver.ResolveAddress(context.Background(), floatPtr(1), floatPtr(2)); addr != domain.UnknownAddress {
		t.Fatalf("expected Unknown, got %q", addr)
	}
}

func TestResolve_ReportsProvider(t *testing.T) {
	primary := &stubProvider{name: "mapbox"}
	secondary := &stubProvider{name: "nominatim", address: "OSM Lane", ok: true}
	resolver := newTestResolver(primary, secondary)

	addr, provider := resolver.Resolve(context.Background(), floatPtr(1), floatPtr(2))
	if addr != "OSM Lane" || provider != "nominatim" {
		t.Fatalf("got addr=%q provider=%q", addr, provider)
	}

	_, provider = resolver.Resolve(context.Background(), nil, nil)
	if provider != "unknown" {
		t.Fatalf("expected unknown provider for nil coords, got %q", provider)
	}
}

func TestContextSleep_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if contextSleep(ctx, time.Minute) {
		t.Fatal("expected sleep to abort on cancelled context")
	}
}
