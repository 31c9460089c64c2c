package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/botify-ai/botify-backend/internal/api/middleware"
	"github.com/botify-ai/botify-backend/internal/ratelimit"
	"github.com/botify-ai/botify-backend/pkg/models"
)

func newLimitedHandler(t *testing.T, limit int, bypass ...string) http.Handler {
	t.Helper()
	gw := ratelimit.NewGateway(ratelimit.NewWindowTracker(), limit, 60*time.Second)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	})
	return middleware.RateLimit(gw, bypass...)(next)
}

func doRequest(h http.Handler, path, remoteAddr, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQuotaHeadersOnEveryResponse(t *testing.T) {
	h := newLimitedHandler(t, 5)

	rec := doRequest(h, "/api/v1/chat", "10.0.0.1:1234", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Errorf("X-RateLimit-Limit = %q, want 5", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Errorf("X-RateLimit-Remaining = %q, want 4", got)
	}
	reset, err := strconv.Atoi(rec.Header().Get("X-RateLimit-Reset"))
	if err != nil || reset < 1 || reset > 60 {
		t.Errorf("X-RateLimit-Reset = %q, want 1..60", rec.Header().Get("X-RateLimit-Reset"))
	}
	if rec.Header().Get("X-Process-Time") == "" {
		t.Errorf("accepted response missing X-Process-Time")
	}
}

func TestRejectionReturns429WithHeaders(t *testing.T) {
	h := newLimitedHandler(t, 2)

	doRequest(h, "/api/v1/chat", "10.0.0.1:1234", "")
	doRequest(h, "/api/v1/chat", "10.0.0.1:1234", "")
	rec := doRequest(h, "/api/v1/chat", "10.0.0.1:1234", "")

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Errorf("rejection missing Retry-After")
	}
	if rec.Header().Get("X-Process-Time") != "" {
		t.Errorf("rejected response must not carry X-Process-Time")
	}

	var body models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("rejection body not JSON: %v", err)
	}
	if body.Code != string(models.ClassRateLimited) {
		t.Errorf("rejection code = %q, want %q", body.Code, models.ClassRateLimited)
	}
}

func TestRejectionDoesNotConsumeQuota(t *testing.T) {
	h := newLimitedHandler(t, 1)

	doRequest(h, "/api/v1/chat", "10.0.0.1:1234", "")
	for i := 0; i < 5; i++ {
		rec := doRequest(h, "/api/v1/chat", "10.0.0.1:1234", "")
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("request %d: expected 429, got %d", i, rec.Code)
		}
	}
	// A different client is unaffected by the rejected burst.
	rec := doRequest(h, "/api/v1/chat", "10.0.0.2:1234", "")
	if rec.Code != http.StatusOK {
		t.Errorf("other client should be admitted, got %d", rec.Code)
	}
}

func TestBypassPathsSkipAdmission(t *testing.T) {
	h := newLimitedHandler(t, 1, "/health")

	doRequest(h, "/api/v1/chat", "10.0.0.1:1234", "")
	for i := 0; i < 3; i++ {
		rec := doRequest(h, "/health", "10.0.0.1:1234", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("bypass request %d: expected 200, got %d", i, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "" {
			t.Errorf("bypass response should not carry quota headers")
		}
	}
}

func TestClientKeyPrefersForwardedFor(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"forwarded chain", "10.0.0.1:1234", "203.0.113.7, 70.41.3.18", "203.0.113.7"},
		{"no forwarding", "10.0.0.1:1234", "", "10.0.0.1"},
		{"bare remote addr", "10.0.0.9", "", "10.0.0.9"},
		{"empty everything", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := middleware.ClientKey(req); got != tt.want {
				t.Errorf("ClientKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientsAreIsolated(t *testing.T) {
	h := newLimitedHandler(t, 1)

	if rec := doRequest(h, "/x", "", "1.1.1.1"); rec.Code != http.StatusOK {
		t.Fatalf("first client rejected: %d", rec.Code)
	}
	if rec := doRequest(h, "/x", "", "2.2.2.2"); rec.Code != http.StatusOK {
		t.Fatalf("second client rejected: %d", rec.Code)
	}
	if rec := doRequest(h, "/x", "", "1.1.1.1"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("first client over limit should be rejected, got %d", rec.Code)
	}
}
