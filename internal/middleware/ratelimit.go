package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter caps requests per client IP over a fixed window. It guards the
// unauthenticated surface: login, register, and join-code redemption, where
// the join code namespace is small enough to guess.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*clientWindow
}

type clientWindow struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientWindow),
	}
}

// Allow records one request for key and reports whether it is within budget.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cw, ok := rl.clients[key]
	if !ok || now.After(cw.resetAt) {
		rl.clients[key] = &clientWindow{count: 1, resetAt: now.Add(rl.window)}
		return true
	}
	cw.count++
	return cw.count <= rl.limit
}

// Cleanup drops windows that have already reset. Run periodically; without it
// every client IP ever seen stays resident.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, cw := range rl.clients {
		if now.After(cw.resetAt) {
			delete(rl.clients, key)
		}
	}
}

// Wrap limits next by client IP, answering 429 with a JSON error body in the
// same shape the API handlers use.
func (rl *RateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the client address behind proxies: Cloudflare's header
// first, then the first hop of X-Forwarded-For, then RemoteAddr.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
