package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"user-backend/internal/shared/server/respond"
	"user-backend/internal/shared/telemetry"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects requests above the limiter's threshold with 429.
// Limiter errors fail open so a limiter outage never takes the API down.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			telemetry.Warn("ratelimit.check_failed", map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      err.Error(),
			})
			c.Next()
			return
		}
		if !allowed {
			respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", nil)
			return
		}
		c.Next()
	}
}

// MemoryLimiter is a per-key token bucket held in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    float64
	burst   float64
	now     func() time.Time
}

type tokenBucket struct {
	tokens float64
	last   time.Time
}

// NewMemoryLimiter builds an in-memory limiter allowing rate tokens per
// second with the given burst capacity.
func NewMemoryLimiter(rate float64, burst int) *MemoryLimiter {
	if rate <= 0 {
		rate = 50
	}
	if burst <= 0 {
		burst = int(rate)
	}
	return &MemoryLimiter{
		buckets: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
	}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok {
		m.buckets[key] = &tokenBucket{tokens: m.burst - 1, last: now}
		return true, nil
	}

	b.tokens += now.Sub(b.last).Seconds() * m.rate
	if b.tokens > m.burst {
		b.tokens = m.burst
	}
	b.last = now
	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// RedisLimiter is a fixed-window limiter shared across instances.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter builds a Redis-backed limiter allowing limit requests per window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, limit: limit, window: window, prefix: prefix}
}

// Allow implements Limiter.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := r.prefix + ":" + key

	pipe := r.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() <= int64(r.limit), nil
}
