package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"dailyitems/internal/ratelimit"
)

// RateLimit gates requests through the limiter using the context device id
// and a fixed action name. Blocked callers get a 429 with a machine-readable
// retry hint. A limiter backend failure lets the request through: the gate
// protects the provider budget, it is not a correctness fence.
func RateLimit(limiter *ratelimit.Limiter, action string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := DeviceIDFromContext(r.Context())
			if deviceID == "" {
				writeError(w, http.StatusBadRequest, "device_required", "rate-limited endpoint without device context")
				return
			}
			decision, err := limiter.Check(r.Context(), deviceID, action)
			if err != nil {
				logger.Error().Err(err).Str("action", action).Msg("rate limiter check failed")
				next.ServeHTTP(w, r)
				return
			}
			if !decision.OK {
				seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":               "rate_limited",
					"message":             "too many requests for this action",
					"retry_after_seconds": seconds,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
