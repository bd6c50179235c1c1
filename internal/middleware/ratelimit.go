package middleware

import (
	"net"
	"net/http"
	"strconv"
)

// Limiter decides whether another request for key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// NewRateLimitHandler throttles requests per client IP. Rejected requests get
// 429 with a Retry-After hint of retryAfterSeconds.
//
// Wire it after chimiddleware.RealIP so proxied clients are keyed correctly.
func NewRateLimitHandler(l Limiter, retryAfterSeconds int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
