package middleware

import (
	"sync"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/asati/internal/config"
)

// TokenBucket 令牌桶限流器
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // 每秒补充的令牌数
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket 创建令牌桶，初始为满
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

func newTokenBucket(capacity, refillRate int64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		lastRefill: now(),
		now:        now,
	}
}

// Allow 取一个令牌，桶空时返回 false
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if elapsed := now.Sub(tb.lastRefill); elapsed > 0 {
		tb.tokens += elapsed.Seconds() * tb.refillRate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimitMiddleware 限流中间件
func RateLimitMiddleware(bucket *TokenBucket) iris.Handler {
	return func(ctx iris.Context) {
		if !bucket.Allow() {
			ctx.StopWithJSON(iris.StatusTooManyRequests, iris.Map{
				"code": iris.StatusTooManyRequests,
				"msg":  "Too many requests, please slow down.",
			})
			return
		}
		ctx.Next()
	}
}

// RateLimit 按配置创建限流中间件，容量 <= 0 时不限流
func RateLimit(cfg config.RateLimitConfig) iris.Handler {
	if cfg.Capacity <= 0 {
		return func(ctx iris.Context) { ctx.Next() }
	}
	return RateLimitMiddleware(NewTokenBucket(int64(cfg.Capacity), int64(cfg.RefillPerSecond)))
}
