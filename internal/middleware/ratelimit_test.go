package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_LimitsPerClient(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	// Different source ports of one host share a budget.
	if got := send("10.0.0.1:1111"); got != http.StatusOK {
		t.Fatalf("request 1: expected 200, got %d", got)
	}
	if got := send("10.0.0.1:2222"); got != http.StatusOK {
		t.Fatalf("request 2: expected 200, got %d", got)
	}
	if got := send("10.0.0.1:3333"); got != http.StatusTooManyRequests {
		t.Fatalf("request 3: expected 429, got %d", got)
	}
	if got := send("10.0.0.2:1111"); got != http.StatusOK {
		t.Fatalf("other client: expected 200, got %d", got)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.allow("1.2.3.4") {
		t.Fatal("first request should be allowed")
	}
	if rl.allow("1.2.3.4") {
		t.Fatal("second request in the window should be rejected")
	}

	now = now.Add(time.Minute)
	if !rl.allow("1.2.3.4") {
		t.Fatal("request in a new window should be allowed")
	}
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.allow("1.2.3.4")

	now = now.Add(2 * time.Minute)
	rl.evictIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.visitors) != 0 {
		t.Fatalf("expected idle visitor to be evicted, have %d", len(rl.visitors))
	}
}
