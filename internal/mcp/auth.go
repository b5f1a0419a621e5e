package mcp

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultMaxBodyBytes int64 = 1 << 20 // 1MiB

type HTTPHandlerConfig struct {
	AuthToken       string
	RateLimitPerMin int
	MaxBodyBytes    int64
}

// wrapHTTPHandler layers bearer auth, per-caller rate limiting and a body
// size cap around the MCP transport.
func wrapHTTPHandler(base http.Handler, cfg HTTPHandlerConfig) http.Handler {
	limiter := newRateLimiter(cfg.RateLimitPerMin)
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, cfg.AuthToken) {
			writeJSONError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
		if !limiter.Allow(callerKey(r)) {
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		base.ServeHTTP(w, r)
	})
}

func authorized(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(authz, "Bearer ") {
		return false
	}
	provided := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return provided != "" && provided == token
}

// callerKey identifies a caller by token and remote host so one noisy
// client cannot starve the rest.
func callerKey(r *http.Request) string {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	if host == "" {
		host = "unknown"
	}
	if token == "" {
		return host
	}
	return token + "|" + host
}

// rateLimiter is a fixed-window per-key counter. A window is one minute.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	counts map[string]int
	window time.Time
}

func newRateLimiter(perMin int) *rateLimiter {
	if perMin <= 0 {
		perMin = 60
	}
	return &rateLimiter{
		limit:  perMin,
		counts: make(map[string]int),
		window: time.Now().Truncate(time.Minute),
	}
}

func (l *rateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	if key == "" {
		key = "default"
	}

	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if window := now.Truncate(time.Minute); window.After(l.window) {
		l.window = window
		l.counts = make(map[string]int)
	}

	if l.counts[key] >= l.limit {
		return false
	}
	l.counts[key]++
	return true
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
