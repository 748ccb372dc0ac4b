package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitWindow is the fixed window over which auth attempts are counted.
const rateLimitWindow = 24 * time.Hour

// AuthRateLimiter creates a middleware that limits how many times a client IP
// may hit the auth endpoints within the window. It uses a redis INCR with a
// TTL set on the first increment. Redis failures fail closed with a 500
// rather than silently disabling the limit.
func AuthRateLimiter(client *redis.Client, keyPrefix string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyPrefix + ":" + c.ClientIP()
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			if log := GetLogger(c); log != nil {
				log.Error("Rate limiter increment failed", err, map[string]interface{}{
					"key": key,
				})
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limiter unavailable"})
			c.Abort()
			return
		}

		// TTL is only set on the first increment of the window
		if count == 1 {
			if err := client.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
				if log := GetLogger(c); log != nil {
					log.Error("Rate limiter TTL set failed", err, map[string]interface{}{
						"key": key,
					})
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limiter unavailable"})
				c.Abort()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, key).Result()
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
