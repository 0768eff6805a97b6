package middleware

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit rejects requests beyond the configured per-second rate with 429.
// The limiter is server-wide, not per client.
func RateLimit(rps float64) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), int(rps))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				slog.Warn("Rate limit exceeded", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
