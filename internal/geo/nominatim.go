package geo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimProvider is the free OSM-backed fallback. A single attempt, no
// retry loop; any network or parse problem means "no answer". Nominatim's
// usage policy requires an identifying User-Agent.
type NominatimProvider struct {
	userAgent string
	baseURL   string
	client    *http.Client
	logger    *zap.Logger
}

// NewNominatimProvider constructs the provider.
func NewNominatimProvider(userAgent string, logger *zap.Logger) *NominatimProvider {
	return &NominatimProvider{
		userAgent: userAgent,
		baseURL:   nominatimBaseURL,
		client:    &http.Client{Timeout: 12 * time.Second},
		logger:    logger,
	}
}

// Name identifies the provider in logs and metrics.
func (p *NominatimProvider) Name() string { return "nominatim" }

// Resolve reverse-geocodes via the Nominatim /reverse endpoint.
func (p *NominatimProvider) Resolve(ctx context.Context, lat, lng float64) (string, bool) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("zoom", "16")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("nominatim request error", zap.Error(err))
		return "", false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("nominatim non-200 response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 180)))
		return "", false
	}

	var parsed struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.DisplayName == "" {
		return "", false
	}
	return parsed.DisplayName, true
}
