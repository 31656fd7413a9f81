package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "wildwatch:ratelimit:"

// RateLimiter caps requests per client IP within a fixed redis-backed
// window. The counter, its expiry and the remaining TTL run in one
// MULTI/EXEC pipeline, so a key can never outlive its window. When
// redis is unreachable the limiter fails open.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{rdb: rdb, limit: int64(limit), window: window}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := rateLimitKeyPrefix + c.ClientIP()

		pipe := rl.rdb.TxPipeline()
		count := pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rl.window)
		ttl := pipe.TTL(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("[RATELIMIT] redis unreachable, letting request through: %v", err)
			c.Next()
			return
		}

		used := count.Val()
		retryIn := ttl.Val()
		if retryIn < 0 {
			retryIn = rl.window
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(rl.limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, rl.limit-used), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retryIn).Unix(), 10))

		if used > rl.limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"retry_in_s": int(retryIn.Seconds()),
			})
			return
		}

		c.Next()
	}
}
