package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	mapboxBaseURL     = "https://api.mapbox.com"
	mapboxAttempts    = 3
	mapboxNetBackoff  = 800 * time.Millisecond
	mapboxRateBackoff = 1500 * time.Millisecond
)

// MapboxProvider is the primary geocoding provider. It retries transient
// failures with backoff scaled by attempt number so a rate-limited upstream
// is not hammered.
type MapboxProvider struct {
	token   string
	baseURL string
	client  *http.Client
	sleep   sleepFn
	logger  *zap.Logger
}

// NewMapboxProvider constructs the provider; the token must be non-empty.
func NewMapboxProvider(token string, logger *zap.Logger) *MapboxProvider {
	return &MapboxProvider{
		token:   token,
		baseURL: mapboxBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		sleep:   contextSleep,
		logger:  logger,
	}
}

// Name identifies the provider in logs and metrics.
func (p *MapboxProvider) Name() string { return "mapbox" }

type mapboxResponse struct {
	Features []struct {
		PlaceName string `json:"place_name"`
	} `json:"features"`
}

// Resolve reverse-geocodes via the Mapbox places API. Up to 3 attempts:
//   - network error: wait 0.8s * attempt, retry
//   - 200 with a feature: return it
//   - 200 empty or unparseable: give up on this provider (no retry)
//   - 429/503: wait 1.5s * attempt, retry
//   - 401/403: give up immediately, no backoff
//   - anything else: flat 0.8s wait, then the loop gets one more try
func (p *MapboxProvider) Resolve(ctx context.Context, lat, lng float64) (string, bool) {
	q := url.Values{}
	q.Set("access_token", p.token)
	q.Set("limit", "1")
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s,%s.json?%s",
		p.baseURL,
		strconv.FormatFloat(lng, 'f', -1, 64),
		strconv.FormatFloat(lat, 'f', -1, 64),
		q.Encode())

	for attempt := 1; attempt <= mapboxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return "", false
		}

		resp, err := p.client.Do(req)
		if err != nil {
			p.logger.Warn("mapbox request error",
				zap.Int("attempt", attempt), zap.Error(err))
			if !p.sleep(ctx, time.Duration(attempt)*mapboxNetBackoff) {
				return "", false
			}
			continue
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var parsed mapboxResponse
			if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Features) == 0 {
				return "", false
			}
			return parsed.Features[0].PlaceName, true
		}

		p.logger.Warn("mapbox non-200 response",
			zap.Int("status", resp.StatusCode),
			zap.Int("attempt", attempt),
			zap.ByteString("body", truncate(body, 180)))

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			if !p.sleep(ctx, time.Duration(attempt)*mapboxRateBackoff) {
				return "", false
			}
		case http.StatusUnauthorized, http.StatusForbidden:
			return "", false
		default:
			if !p.sleep(ctx, mapboxNetBackoff) {
				return "", false
			}
		}
	}
	return "", false
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
