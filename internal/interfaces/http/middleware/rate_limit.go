package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

const rateLimitWindow = time.Minute

// RateLimit counts requests per client IP in a fixed one-minute window kept in
// Redis. Requests are let through when Redis is unavailable.
func RateLimit(cfg *config.Config, redisClient redis.Cmdable, log logrus.FieldLogger) gin.HandlerFunc {
	limit := cfg.Security.RateLimitPerMinute
	prefix := cfg.Cache.Prefix + ":rate_limit:"

	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		key := prefix + c.ClientIP()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		var incr *redis.IntCmd
		var ttl *redis.DurationCmd
		_, err := redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			ttl = pipe.TTL(ctx, key)
			return nil
		})
		if err != nil {
			log.WithError(err).Warn("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		// a new window, or a counter left without expiry by an earlier failure
		reset := ttl.Val()
		if reset < 0 {
			if err := redisClient.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
				log.WithError(err).Warn("failed to set rate limit window")
			}
			reset = rateLimitWindow
		}

		count := int(incr.Val())
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))

		if count > limit {
			retryAfter := int(reset.Round(time.Second).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"code":        apperror.KindFailedPrecondition,
				"reason":      "rate_limited",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
