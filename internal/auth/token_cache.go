package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/asati/internal/config"
)

// TokenCache 基于一致性哈希分片的 JWT 解析结果缓存，redis 为 nil 时每次都直接解析
type TokenCache struct {
	redis radix.Client
	ring  *ConsistentHashRing
	ttl   time.Duration
	jwt   *config.JWTConfig
}

// NewTokenCache 构建缓存器
func NewTokenCache(redis radix.Client, ring *ConsistentHashRing, ttl time.Duration, jwtCfg *config.JWTConfig) *TokenCache {
	if ring == nil {
		ring = NewConsistentHashRing(nil, 0)
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenCache{
		redis: redis,
		ring:  ring,
		ttl:   ttl,
		jwt:   jwtCfg,
	}
}

func (c *TokenCache) cacheKey(token string) string {
	node := c.ring.GetNode(token)
	sum := sha1.Sum([]byte(token))
	return fmt.Sprintf("asati:jwt:%s:%s", node, hex.EncodeToString(sum[:]))
}

// Get 尝试命中缓存的 claims
func (c *TokenCache) Get(ctx context.Context, token string) (*Claims, bool, error) {
	if c.redis == nil {
		return nil, false, nil
	}
	key := c.cacheKey(token)
	var raw string
	if err := c.redis.Do(radix.Cmd(&raw, "GET", key)); err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}
	var claims Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		// 数据损坏，清理后走正常解析
		_ = c.redis.Do(radix.Cmd(nil, "DEL", key))
		return nil, false, nil
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		_ = c.redis.Do(radix.Cmd(nil, "DEL", key))
		return nil, false, nil
	}
	return &claims, true, nil
}

// Set 缓存解析结果，过期时间不超过令牌本身的有效期
func (c *TokenCache) Set(ctx context.Context, token string, claims *Claims) error {
	if c.redis == nil || claims == nil {
		return nil
	}
	ttl := c.ttl
	if claims.ExpiresAt != nil {
		if left := time.Until(claims.ExpiresAt.Time); left < ttl {
			ttl = left
		}
	}
	secs := int64(ttl / time.Second)
	if secs <= 0 {
		return nil
	}
	body, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	return c.redis.Do(radix.FlatCmd(nil, "SETEX", c.cacheKey(token), secs, body))
}

// Invalidate 删除缓存（登出 / 换发令牌时调用）
func (c *TokenCache) Invalidate(ctx context.Context, token string) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Do(radix.Cmd(nil, "DEL", c.cacheKey(token)))
}

// Resolve 先查缓存，未命中时解析并回填；缓存故障不影响鉴权
func (c *TokenCache) Resolve(ctx context.Context, token string) (*Claims, error) {
	if claims, ok, err := c.Get(ctx, token); err == nil && ok {
		return claims, nil
	}
	claims, err := ParseToken(c.jwt, token)
	if err != nil {
		return nil, err
	}
	_ = c.Set(ctx, token, claims)
	return claims, nil
}
