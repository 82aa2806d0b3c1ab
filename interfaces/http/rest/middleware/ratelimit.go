package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/pkg/auth"
)

// RateLimit enforces the shared per-client request budget before any
// handler runs. The limiter's counters live in DynamoDB, so the budget
// holds across Lambda instances where the in-process limiters in the
// auth middleware do not. A nil limiter disables the check.
func RateLimit(limiter *auth.DistributedRateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// Allow already failed open; surface the store problem.
				logger.Warn("Distributed rate limiter degraded",
					zap.String("client_ip", key),
					zap.Error(err),
				)
			}

			headers := make(map[string]string, 3)
			if err := limiter.SetHeaders(r.Context(), key, headers); err == nil {
				for name, value := range headers {
					w.Header().Set(name, value)
				}
			}

			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
