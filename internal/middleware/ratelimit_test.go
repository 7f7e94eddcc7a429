package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBudget(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("203.0.113.7") {
			t.Fatalf("attempt %d should be within budget", i+1)
		}
	}
	if rl.Allow("203.0.113.7") {
		t.Error("4th attempt should be denied")
	}
	if !rl.Allow("203.0.113.8") {
		t.Error("a different client should have its own budget")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(2, 10*time.Millisecond)

	rl.Allow("203.0.113.7")
	rl.Allow("203.0.113.7")
	if rl.Allow("203.0.113.7") {
		t.Error("should be denied inside the window")
	}

	time.Sleep(15 * time.Millisecond)

	if !rl.Allow("203.0.113.7") {
		t.Error("budget should reset after the window passes")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	stale := NewRateLimiter(5, 10*time.Millisecond)
	stale.Allow("203.0.113.7")
	time.Sleep(15 * time.Millisecond)
	rl.Allow("203.0.113.8")

	stale.Cleanup()
	rl.Cleanup()

	stale.mu.Lock()
	if _, ok := stale.clients["203.0.113.7"]; ok {
		t.Error("reset window should have been dropped")
	}
	stale.mu.Unlock()

	rl.mu.Lock()
	if _, ok := rl.clients["203.0.113.8"]; !ok {
		t.Error("live window should survive cleanup")
	}
	rl.mu.Unlock()
}

func TestWrapLimitsPerClientIP(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	handler := rl.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	join := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/rooms/join", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := join("198.51.100.4"); rec.Code != http.StatusOK {
			t.Errorf("attempt %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := join("198.51.100.4")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("3rd attempt: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 should carry Retry-After")
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("429 body is not JSON: %v", err)
	}
	if body["error"] != "too many requests" {
		t.Errorf("error = %q, want %q", body["error"], "too many requests")
	}

	if rec := join("198.51.100.5"); rec.Code != http.StatusOK {
		t.Errorf("other client should not be throttled, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		cf, xff    string
		remoteAddr string
		want       string
	}{
		{"cloudflare header wins", "203.0.113.9", "198.51.100.4", "10.0.0.1:443", "203.0.113.9"},
		{"first forwarded hop", "", "198.51.100.4, 10.0.0.2", "10.0.0.1:443", "198.51.100.4"},
		{"single forwarded hop", "", "198.51.100.4", "10.0.0.1:443", "198.51.100.4"},
		{"remote addr fallback", "", "", "192.0.2.33:52114", "192.0.2.33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/auth/login", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.cf != "" {
				req.Header.Set("CF-Connecting-IP", tt.cf)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
