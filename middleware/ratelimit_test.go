// ABOUTME: Tests for the fixed-window rate limiter and middleware
// ABOUTME: Covers allowance, denial, retry-after, and disabled mode

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if allowed, _ := rl.Allow("ip:1.2.3.4"); !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}
	if allowed, retryAfter := rl.Allow("ip:1.2.3.4"); allowed {
		t.Error("Expected fourth request to be denied")
	} else if retryAfter <= 0 {
		t.Errorf("Expected positive retry-after, got %v", retryAfter)
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	rl.Allow("ip:1.1.1.1")
	if allowed, _ := rl.Allow("ip:2.2.2.2"); !allowed {
		t.Error("Expected a different key to have its own window")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	rl.Allow("ip:1.2.3.4")
	time.Sleep(20 * time.Millisecond)
	if allowed, _ := rl.Allow("ip:1.2.3.4"); !allowed {
		t.Error("Expected a fresh window after expiry")
	}
}

func TestRateLimitMiddleware_Denies(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := RateLimit(rl, ClientIP)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/size/custom", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}

func TestRateLimitMiddleware_NilLimiterDisables(t *testing.T) {
	handler := RateLimit(nil, ClientIP)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/api/v1/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected disabled limiter to pass all requests, got %d", w.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if ip := ClientIP(req); ip != "ip:10.0.0.1" {
		t.Errorf("Expected ip:10.0.0.1, got %s", ip)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := ClientIP(req); ip != "ip:203.0.113.9" {
		t.Errorf("Expected leftmost forwarded IP, got %s", ip)
	}

	req.Header.Set("X-Forwarded-For", "garbage")
	if ip := ClientIP(req); ip != "ip:10.0.0.1" {
		t.Errorf("Expected fallback for invalid forwarded IP, got %s", ip)
	}
}
