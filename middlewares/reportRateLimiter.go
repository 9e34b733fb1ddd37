package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const reportLimitPrefix = "report-limit"

// ReportRateLimiter caps report submissions per client IP per 24 hours.
// A nil client disables limiting. Redis failures let the request through.
func ReportRateLimiter(client *redis.Client, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		clientKey := reportLimitPrefix + ":" + c.ClientIP()

		count, err := client.Incr(ctx, clientKey).Result()
		if err != nil {
			log.Error().Err(err).Msg("Redis error incrementing report count")
			c.Next()
			return
		}

		// Set TTL only for the first increment
		if count == 1 {
			if err := client.Expire(ctx, clientKey, 24*time.Hour).Err(); err != nil {
				log.Error().Err(err).Msg("Redis error setting report limit TTL")
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, clientKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
