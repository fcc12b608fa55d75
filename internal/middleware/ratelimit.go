package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/charlesng35/notesd/pkg/errors"
	"github.com/charlesng35/notesd/pkg/logger"
	"github.com/charlesng35/notesd/pkg/metrics"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimit limits requests per client IP within a fixed window using store.
// Store failures are logged and the request is let through.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		count, resetIn, err := store.Increment(c.Request.Context(), rateLimitKeyPrefix+c.ClientIP(), window)
		if err != nil {
			logger.WithModule("ratelimit").Warn("rate store unavailable", zap.Error(err))
			c.Next()
			return
		}

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Seconds())))

		if count > maxRequests {
			metrics.RateLimited.Inc()
			c.Header("Retry-After", strconv.Itoa(int(resetIn.Seconds())))
			_ = c.Error(apperrors.ErrRateLimit)
			c.Abort()
			return
		}

		c.Next()
	}
}
