package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/example/asati/internal/auth"
	"github.com/example/asati/internal/config"
	redisInfra "github.com/example/asati/internal/infra/redis"
)

// 一个简单的自测程序：演示令牌缓存的一致性哈希节点选择 + JWT 解析与缓存命中
func main() {
	cfgPath := flag.String("config", "", "path to config file")
	sid := flag.String("sid", "demo-session", "session id carried in the token")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	rdb, err := redisInfra.Init(&cfg.Redis)
	if err != nil {
		log.Fatalf("redis init failed: %v", err)
	}
	if rdb == nil {
		fmt.Println("未配置 redis，缓存退化为直接解析")
	}

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	cache := auth.NewTokenCache(rdb, ring, cfg.Auth.TokenCacheTTL, &cfg.JWT)

	token, err := auth.GenerateToken(&cfg.JWT, *sid, "", "anonymous")
	if err != nil {
		log.Fatalf("generate token failed: %v", err)
	}

	ctx := context.Background()
	fmt.Println("节点列表:", ring.Nodes())
	fmt.Println("选择的缓存节点:", ring.GetNode(token))
	fmt.Println("生成的 JWT:", token)

	// 第一次解析（未命中缓存，回填）
	claims, err := cache.Resolve(ctx, token)
	if err != nil {
		log.Fatalf("resolve token failed: %v", err)
	}
	fmt.Printf("首次解析写入缓存，sid=%s, role=%s\n", claims.SessionID, claims.Role)

	// 第二次解析（命中缓存）
	cached, ok, err := cache.Get(ctx, token)
	if err != nil {
		log.Fatalf("cache get failed: %v", err)
	}
	fmt.Printf("二次命中缓存=%v\n", ok)
	if ok {
		fmt.Printf("缓存中的 sid=%s\n", cached.SessionID)
	}

	if err := cache.Invalidate(ctx, token); err != nil {
		log.Fatalf("invalidate failed: %v", err)
	}
	_, ok, _ = cache.Get(ctx, token)
	fmt.Printf("失效后命中=%v\n", ok)
}
