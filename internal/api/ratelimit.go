package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter bounds how many command requests each caller may issue per
// window. Counters reset when their window lapses; a background sweep drops
// idle callers.
type RateLimiter struct {
	mu      sync.Mutex
	callers map[string]*callerWindow

	limit  int
	window time.Duration
}

type callerWindow struct {
	used    int
	started time.Time
}

// NewRateLimiter allows limit requests per window per caller.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		callers: make(map[string]*callerWindow),
		limit:   limit,
		window:  window,
	}
	go rl.sweep()
	return rl
}

// Allow records a request for the caller and reports whether it fits the
// current window.
func (rl *RateLimiter) Allow(caller string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.callers[caller]
	if !ok || now.Sub(w.started) >= rl.window {
		rl.callers[caller] = &callerWindow{used: 1, started: now}
		return true
	}
	if w.used < rl.limit {
		w.used++
		return true
	}
	return false
}

// RetryAfter returns seconds until the caller's window resets.
func (rl *RateLimiter) RetryAfter(caller string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.callers[caller]
	if !ok {
		return 0
	}
	left := rl.window - time.Since(w.started)
	if left <= 0 {
		return 0
	}
	return int(left.Seconds()) + 1
}

func (rl *RateLimiter) sweep() {
	for {
		time.Sleep(time.Hour)
		rl.mu.Lock()
		now := time.Now()
		for caller, w := range rl.callers {
			if now.Sub(w.started) > 2*rl.window {
				delete(rl.callers, caller)
			}
		}
		rl.mu.Unlock()
	}
}

// callerKey identifies the requester: the first X-Forwarded-For hop when
// proxied, otherwise the remote address without its port.
func callerKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	addr := r.RemoteAddr
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return addr[:i]
	}
	return addr
}

// RateLimitMiddleware rejects over-limit requests with 429 and a Retry-After
// header.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerKey(r)
		if !rl.Allow(caller) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(caller)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
