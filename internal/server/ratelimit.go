package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"gymhub/internal/api"
	"gymhub/internal/logger"
)

// RateLimiter keeps one token bucket per client key in memory.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	ttl      time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst. Entries idle for longer than ttl are dropped.
func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
	}

	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for key, v := range rl.visitors {
			if time.Since(v.lastSeen) > rl.ttl {
				delete(rl.visitors, key)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[key] = &visitor{
			limiter:  limiter,
			lastSeen: time.Now(),
		}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getVisitor(key).Allow()
}

// RateLimitMiddleware limits every request per client IP.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := NewRateLimiter(rps, burst, 3*time.Minute)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			api.Abort(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}

// AuthRateLimiter limits the credential endpoints across instances through
// Redis. When Redis is unreachable each instance falls back to its own
// in-memory buckets with the same budget.
type AuthRateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *RateLimiter
	limit    redis_rate.Limit
}

func NewAuthRateLimiter(rdb *redis.Client, requests int, window time.Duration) *AuthRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	limit := redis_rate.Limit{Rate: requests, Burst: requests, Period: window}

	return &AuthRateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: NewRateLimiter(float64(requests)/window.Seconds(), requests, 2*window),
		limit:    limit,
	}
}

func (l *AuthRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:auth:" + c.ClientIP()

		allowed, remaining, retryAfter := l.allow(c, key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit.Rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			api.Abort(c, http.StatusTooManyRequests,
				fmt.Sprintf("Too many attempts. Retry after %d seconds", seconds))
			return
		}

		c.Next()
	}
}

func (l *AuthRateLimiter) allow(c *gin.Context, key string) (bool, int, time.Duration) {
	res, err := l.limiter.Allow(c.Request.Context(), key, l.limit)
	if err == nil {
		return res.Allowed > 0, res.Remaining, res.RetryAfter
	}

	logger.Warn("Redis rate limiter unavailable, using local limiter", "error", err, "key", key)

	bucket := l.fallback.getVisitor(key)
	if bucket.Allow() {
		return true, int(bucket.Tokens()), 0
	}
	return false, 0, time.Duration(float64(time.Second) / float64(l.fallback.rate))
}
