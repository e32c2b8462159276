package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter connects the shared Redis client used by the limiters
// and returns it. If addr is empty or ping fails nil is returned and the
// limiters fall back to in-process counting.
func InitRedisRateLimiter(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-process rate limiting", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	SetRedisClient(client)
	return client
}

// SetRedisClient replaces the shared client; nil switches to in-process counting
func SetRedisClient(client *redis.Client) {
	redisClient = client
}

// fixedWindow runs INCR/EXPIRE on key. ok is false when Redis is absent or failing.
func fixedWindow(ctx context.Context, key string, window time.Duration) (int64, bool) {
	if redisClient == nil {
		return 0, false
	}
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}
	return val, true
}

// RedisRateLimit implements a fixed-window rate limiter per client IP using
// Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<identifier>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	fallback := newMemoryLimiter()
	return func(c *gin.Context) {
		ident := c.ClientIP()
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident

		val, ok := fixedWindow(c.Request.Context(), key, window)
		if !ok {
			if redisClient != nil {
				c.Header("X-RateLimit-Error", "redis-error")
			}
			val = int64(fallback.hit(ident, window))
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// ClaimRateLimit limits earning and spending calls per user (not per IP).
// Requires JWT middleware to run before this.
func ClaimRateLimit(maxClaims int, window time.Duration) gin.HandlerFunc {
	fallback := newMemoryLimiter()
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "claim_rl:" + userID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		val, ok := fixedWindow(c.Request.Context(), key, window)
		if !ok {
			val = int64(fallback.hit(userID, window))
		}

		c.Header("X-ClaimRateLimit-Limit", strconv.Itoa(maxClaims))
		c.Header("X-ClaimRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxClaims)-val), 10))

		if val > int64(maxClaims) {
			RLBlocked.WithLabelValues("claim:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many reward requests",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("claim:" + c.FullPath()).Inc()
		c.Next()
	}
}
