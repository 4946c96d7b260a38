package middleware

import (
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit returns a middleware enforcing a process-wide token bucket on
// the wrapped routes. Burst equals the rate so no extra burst capacity is
// allowed beyond the configured per-second maximum.
//
// The limit guards the enqueue endpoint against a runaway content generator;
// it is unrelated to the release gate, which paces outbound dispatches.
func RateLimit(ratePerSec int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
