package middleware

import (
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/quickcommerce/insights/internal/api/response"
)

// RateLimit rejects requests with 429 once limiter has no tokens left. A Retry-After header
// tells the client how long until the next token. A nil limiter disables limiting.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reservation := limiter.Reserve()
			if !reservation.OK() {
				response.RespondTooManyRequests(w, "rate limit exceeded")

				return
			}

			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				response.RespondTooManyRequests(w, "rate limit exceeded, retry later")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
