package redis

import (
	"fmt"
	"sync"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/asati/internal/config"
)

var (
	client  radix.Client
	initErr error
	once    sync.Once
)

// Init 初始化 Redis 连接池（进程内只建一次），Addr 为空时返回 nil
func Init(cfg *config.RedisConfig) (radix.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	once.Do(func() {
		size := cfg.PoolSize
		if size <= 0 {
			size = 10
		}
		pool, err := radix.NewPool("tcp", cfg.Addr, size)
		if err != nil {
			initErr = fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
			return
		}
		client = pool
	})
	return client, initErr
}

// Client 获取 Redis 客户端
func Client() radix.Client {
	return client
}
