package geo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/civicguard/internal/config"
	"github.com/spec-kit/civicguard/internal/domain"
	"github.com/spec-kit/civicguard/internal/observability"
)

// Provider resolves coordinates to a human-readable address. Implementations
// never return an error; ok=false means "this provider has no answer" and
// the resolver moves on to the next one.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, lat, lng float64) (address string, ok bool)
}

// Resolver walks an ordered provider list and falls back to the Unknown
// sentinel when none of them answers. Provider order reflects accuracy
// preference; the last entry needs no credential.
type Resolver struct {
	providers []Provider
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewResolver builds the default provider chain: Mapbox when a token is
// configured, then Nominatim.
func NewResolver(cfg config.GeoConfig, logger *zap.Logger, metrics *observability.Metrics) *Resolver {
	providers := make([]Provider, 0, 2)
	if cfg.MapboxToken != "" {
		providers = append(providers, NewMapboxProvider(cfg.MapboxToken, logger))
	} else {
		logger.Warn("MAPBOX_TOKEN not configured; skipping mapbox geocoding provider")
	}
	providers = append(providers, NewNominatimProvider(cfg.NominatimUA, logger))

	return NewResolverWithProviders(providers, logger, metrics)
}

// NewResolverWithProviders builds a resolver over an explicit provider chain.
func NewResolverWithProviders(providers []Provider, logger *zap.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{providers: providers, logger: logger, metrics: metrics}
}

// ResolveAddress resolves coordinates to an address. It never fails: absent
// coordinates or an exhausted provider chain yield domain.UnknownAddress,
// and no network call is made when either coordinate is nil.
func (r *Resolver) ResolveAddress(ctx context.Context, lat, lng *float64) string {
	address, _ := r.Resolve(ctx, lat, lng)
	return address
}

// Resolve behaves like ResolveAddress but also reports which provider
// answered ("unknown" when none did).
func (r *Resolver) Resolve(ctx context.Context, lat, lng *float64) (string, string) {
	if lat == nil || lng == nil {
		return domain.UnknownAddress, "unknown"
	}

	for _, provider := range r.providers {
		address, ok := provider.Resolve(ctx, *lat, *lng)
		if ok && address != "" {
			r.metrics.RecordGeocode(provider.Name())
			return address, provider.Name()
		}
	}

	r.metrics.RecordGeocode("none")
	r.logger.Info("reverse geocode exhausted all providers",
		zap.Float64("lat", *lat), zap.Float64("lng", *lng))
	return domain.UnknownAddress, "unknown"
}

// sleepFn waits for the given duration, honoring context cancellation.
// Returns false when the context ended first. Injectable for tests.
type sleepFn func(ctx context.Context, d time.Duration) bool

func contextSleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
