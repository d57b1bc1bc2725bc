package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for the HTTP surface and the
// intake/filing pipeline.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	intakeCount  map[string]int64
	geocodeCount map[string]int64
	filingCount  map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		intakeCount:  make(map[string]int64),
		geocodeCount: make(map[string]int64),
		filingCount:  make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordIntake counts intake outcomes ("created", "upload_failed", ...).
func (m *Metrics) RecordIntake(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intakeCount[outcome]++
}

// RecordGeocode counts which provider answered a lookup ("mapbox",
// "nominatim", "none").
func (m *Metrics) RecordGeocode(provider string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geocodeCount[provider]++
}

// RecordFiling counts dispatch outcomes per endpoint type, e.g.
// "email|ok" or "api|error".
func (m *Metrics) RecordFiling(endpointType string, ok bool) {
	if m == nil {
		return
	}
	key := endpointType + "|error"
	if ok {
		key = endpointType + "|ok"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filingCount[key]++
}

// Snapshot returns a copy of all counters keyed by group.
func (m *Metrics) Snapshot() map[string]map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]map[string]int64{
		"requests": copyCounts(m.requestCount),
		"errors":   copyCounts(m.errorCount),
		"intake":   copyCounts(m.intakeCount),
		"geocode":  copyCounts(m.geocodeCount),
		"filing":   copyCounts(m.filingCount),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
