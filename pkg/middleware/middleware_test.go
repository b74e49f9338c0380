package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tablebook/pkg/logger"
)

func okHandler(calls *int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":"ok"}`))
	})
}

func TestRateLimit_PerClient(t *testing.T) {
	limiter := NewClientRateLimiter(2, time.Minute, nil, logger.Nop())
	defer limiter.Stop()

	var calls int32
	h := RateLimit(limiter)(okHandler(&calls))

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("X-User-ID", user)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("alice"); code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, code)
		}
	}
	if code := send("alice"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", code)
	}
	if code := send("bob"); code != http.StatusCreated {
		t.Errorf("expected other client unaffected, got %d", code)
	}
}

func TestClientRateLimiter_EvictIdle(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute, nil, logger.Nop())
	defer limiter.Stop()

	limiter.Allow("ip:10.0.0.1")
	limiter.evictIdle(time.Now().Add(2 * time.Minute))

	if len(limiter.clients) != 0 {
		t.Errorf("expected idle client evicted, %d left", len(limiter.clients))
	}
	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("expected evicted client to start with a full bucket")
	}
}

func TestDefaultClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	if got := DefaultClientKey(req); got != "ip:192.0.2.7" {
		t.Errorf("expected ip key, got %q", got)
	}

	req.Header.Set("X-User-ID", "u1")
	if got := DefaultClientKey(req); got != "user:u1" {
		t.Errorf("expected user key, got %q", got)
	}
}

func TestIdempotency_ReplaysPost(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, "")(okHandler(&calls))

	send := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "key-1")
		req.Header.Set("X-User-ID", user)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("alice")
	second := send("alice")
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != first.Code || second.Body.String() != first.Body.String() {
		t.Errorf("expected replayed response, got %d %q", second.Code, second.Body.String())
	}
	if first.Header().Get(IdempotencyReplayed) != "" || second.Header().Get(IdempotencyReplayed) != "true" {
		t.Errorf("expected only the replay to be marked, got %q and %q",
			first.Header().Get(IdempotencyReplayed), second.Header().Get(IdempotencyReplayed))
	}

	send("bob")
	if calls != 2 {
		t.Errorf("expected key to be scoped per user, handler ran %d times", calls)
	}
}

func TestContentTypeValidation(t *testing.T) {
	var calls int32
	h := ContentTypeValidation(logger.Nop())(okHandler(&calls))

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"json with charset", http.MethodPost, "application/json; charset=utf-8", http.StatusCreated},
		{"missing on post", http.MethodPost, "", http.StatusUnsupportedMediaType},
		{"form on patch", http.MethodPatch, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"get needs none", http.MethodGet, "", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/bookings", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("panic value leaked into response: %s", rec.Body.String())
	}
}

func TestRequestTimeout(t *testing.T) {
	h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestRequestTimeout_PanicReachesRecovery(t *testing.T) {
	h := Recovery(logger.Nop())(RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestRequestLogging_PropagatesRequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("expected request id to propagate, got ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}
}
