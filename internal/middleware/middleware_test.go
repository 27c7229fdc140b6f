package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dailyitems/internal/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireDevice(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusBadRequest},
		{"blank header", "   ", http.StatusBadRequest},
		{"oversized header", strings.Repeat("a", 200), http.StatusBadRequest},
		{"valid header", "device-abc-123", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotDevice string
			h := RequireDevice(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotDevice = DeviceIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.header != "" {
				req.Header.Set(DeviceIDHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK && gotDevice != strings.TrimSpace(tc.header) {
				t.Fatalf("device in context = %q", gotDevice)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin("secret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Admin-Token", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("header token: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer token: status = %d", rec.Code)
	}

	// Unconfigured admin surface refuses everything.
	h = RequireAdmin("")(okHandler())
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Admin-Token", "anything")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured: status = %d", rec.Code)
	}
}

type fixedStore struct {
	counter ratelimit.Counter
}

func (s *fixedStore) Upsert(_ context.Context, _, _ string, windowStart time.Time) error {
	if !s.counter.WindowStart.Equal(windowStart) {
		s.counter = ratelimit.Counter{WindowStart: windowStart}
	}
	s.counter.Count++
	return nil
}

func (s *fixedStore) Get(_ context.Context, _, _ string) (ratelimit.Counter, error) {
	return s.counter, nil
}

func (s *fixedStore) DeleteBefore(_ context.Context, _ time.Time) (int64, error) { return 0, nil }

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(&fixedStore{}, ratelimit.Policies{
		Default: ratelimit.Policy{WindowSeconds: 60, Ceiling: 2},
	}, zerolog.Nop())
	h := RateLimit(limiter, "generate_comments", zerolog.Nop())(okHandler())

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), deviceIDKey, "device-1"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := call(); rec.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d", i+1, rec.Code)
		}
	}
	rec := call()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-ceiling status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("Retry-After header missing")
	}

	// Without device context the gate rejects rather than limping along.
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	norec := httptest.NewRecorder()
	h.ServeHTTP(norec, req)
	if norec.Code != http.StatusBadRequest {
		t.Fatalf("no-device status = %d", norec.Code)
	}
}
