package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contentpilot-backend/internal/shared/apperror"
	"contentpilot-backend/internal/shared/ratelimit"
	"contentpilot-backend/internal/shared/response"
)

// RateLimit throttles one bucket of operations per authenticated user.
// Rejected requests carry Retry-After; the attempt is counted even if the
// handler later fails.
func RateLimit(limiter *ratelimit.Limiter, bucket ratelimit.Bucket) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)

		result := limiter.Check(userID.String(), bucket)
		if !result.Allowed {
			retryAfter := time.Until(result.ResetAt)
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
			response.ErrorResponse(c, http.StatusTooManyRequests,
				string(apperror.KindRateLimited),
				fmt.Sprintf("too many %s requests, retry after %s", bucket, result.ResetAt.Format(time.RFC3339)))
			c.Abort()
			return
		}

		c.Next()
	}
}
