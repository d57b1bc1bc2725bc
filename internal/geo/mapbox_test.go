package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

// testMapbox builds a provider against a stub server with a recording,
// non-blocking sleep.
func testMapbox(t *testing.T, handler http.HandlerFunc) (*MapboxProvider, *[]time.Duration) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var sleeps []time.Duration
	provider := NewMapboxProvider("test-token", zap.NewNop())
	provider.baseURL = server.URL
	provider.sleep = func(ctx context.Context, d time.Duration) bool {
		sleeps = append(sleeps, d)
		return true
	}
	return provider, &sleeps
}

func TestMapbox_FirstResultReturned(t *testing.T) {
	var requests int
	provider, _ := testMapbox(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("access_token") != "test-token" {
			t.Errorf("missing access token in query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"features":[{"place_name":"100 Main St, Springfield"},{"place_name":"ignored"}]}`))
	})

	addr, ok := provider.Resolve(context.Background(), 12.97, 77.59)
	if !ok || addr != "100 Main St, Springfield" {
		t.Fatalf("got addr=%q ok=%v", addr, ok)
	}
	if requests != 1 {
		t.Fatalf("expected 1 request, got %d", requests)
	}
}

func TestMapbox_EmptyFeaturesStopsWithoutRetry(t *testing.T) {
	var requests int
	provider, sleeps := testMapbox(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"features":[]}`))
	})

	if _, ok := provider.Resolve(context.Background(), 1, 2); ok {
		t.Fatal("expected no result")
	}
	if requests != 1 {
		t.Fatalf("empty 200 must not retry, got %d requests", requests)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("expected no backoff, got %v", *sleeps)
	}
}

func TestMapbox_UnparseableBodyStopsWithoutRetry(t *testing.T) {
	var requests int
	provider, _ := testMapbox(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`<html>not json</html>`))
	})

	if _, ok := provider.Resolve(context.Background(), 1, 2); ok {
		t.Fatal("expected no result")
	}
	if requests != 1 {
		t.Fatalf("unparseable 200 must not retry, got %d requests", requests)
	}
}

func TestMapbox_AuthFailureDoesNotRetry(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var requests int
		provider, sleeps := testMapbox(t, func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(status)
		})

		if _, ok := provider.Resolve(context.Background(), 1, 2); ok {
			t.Fatalf("status %d: expected no result", status)
		}
		if requests != 1 {
			t.Fatalf("status %d: expected a single attempt, got %d", status, requests)
		}
		if len(*sleeps) != 0 {
			t.Fatalf("status %d: auth failure must not back off, got %v", status, *sleeps)
		}
	}
}

func TestMapbox_RateLimitRetriesWithScaledBackoff(t *testing.T) {
	var requests int
	provider, sleeps := testMapbox(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"features":[{"place_name":"Recovered Ave"}]}`))
	})

	addr, ok := provider.Resolve(context.Background(), 1, 2)
	if !ok || addr != "Recovered Ave" {
		t.Fatalf("got addr=%q ok=%v", addr, ok)
	}
	if requests != 3 {
		t.Fatalf("expected 3 requests, got %d", requests)
	}
	want := []time.Duration{1500 * time.Millisecond, 3000 * time.Millisecond}
	if len(*sleeps) != len(want) || (*sleeps)[0] != want[0] || (*sleeps)[1] != want[1] {
		t.Fatalf("expected backoffs %v, got %v", want, *sleeps)
	}
}

func TestMapbox_RateLimitExhaustsAllAttempts(t *testing.T) {
	var requests int
	provider, _ := testMapbox(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, ok := provider.Resolve(context.Background(), 1, 2); ok {
		t.Fatal("expected no result")
	}
	if requests != 3 {
		t.Fatalf("expected 3 attempts, got %d", requests)
	}
}

func TestMapbox_OtherStatusGetsFlatDelayRetry(t *testing.T) {
	var requests int
	provider, sleeps := testMapbox(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"features":[{"place_name":"Retry Blvd"}]}`))
	})

	addr, ok := provider.Resolve(context.Background(), 1, 2)
	if !ok || addr != "Retry Blvd" {
		t.Fatalf("got addr=%q ok=%v", addr, ok)
	}
	if requests != 2 {
		t.Fatalf("expected 2 requests, got %d", requests)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 800*time.Millisecond {
		t.Fatalf("expected one flat 800ms delay, got %v", *sleeps)
	}
}
