package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/asati/internal/auth"
	"github.com/example/asati/internal/config"
	"github.com/example/asati/internal/directory"
	"github.com/example/asati/internal/infra/mq"
	"github.com/example/asati/internal/infra/redis"
	"github.com/example/asati/internal/logger"
	"github.com/example/asati/internal/server"
	"github.com/example/asati/internal/service"
	"github.com/example/asati/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file (yaml/json/toml)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	log, flush, err := logger.Init(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer flush()

	opts := []store.Option{
		store.WithLogger(log.Named("store")),
		store.WithNotificationTTL(cfg.Store.NotificationTTL),
		store.WithAuditLimit(cfg.Store.AuditLimit),
	}

	if cfg.Store.SeedFile != "" {
		seed, err := store.LoadSeedFile(cfg.Store.SeedFile)
		if err != nil {
			log.Fatal("load seed catalog failed", zap.String("path", cfg.Store.SeedFile), zap.Error(err))
		}
		opts = append(opts, store.WithSeed(seed))
	}

	if cfg.Directory.Enabled {
		client, err := directory.New(cfg.Directory, nil)
		if err != nil {
			log.Fatal("user directory client", zap.Error(err))
		}
		opts = append(opts, store.WithDirectory(client))
	}

	// MQ 不可用时只记录日志，订单事件不发布
	mqConn, err := mq.Init(&cfg.RabbitMQ)
	if err != nil {
		log.Warn("rabbitmq unavailable, order events disabled", zap.Error(err))
	}
	if mqConn != nil {
		publisher := service.NewOrderPublisher(mqConn, cfg.RabbitMQ.Queue)
		defer publisher.Close()
		defer mqConn.Close()
		opts = append(opts, store.WithEventSink(publisher))
	}

	st := store.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if st.HasDirectory() {
		if err := st.RefreshUsers(ctx, ""); err != nil {
			log.Warn("initial user refresh failed", zap.Error(err))
		}
	}

	// Redis 不可用时令牌每次直接解析
	redisClient, err := redis.Init(&cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, token cache disabled", zap.Error(err))
		redisClient = nil
	}
	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	deps := server.Deps{
		Store:  st,
		Tokens: auth.NewTokenCache(redisClient, ring, cfg.Auth.TokenCacheTTL, &cfg.JWT),
		Config: cfg,
	}

	shop := iris.New()
	server.RegisterRoutes(shop, deps)
	admin := iris.New()
	server.RegisterAdminRoutes(admin, deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("web server listening", zap.String("addr", cfg.Server.Addr()))
		return shop.Listen(cfg.Server.Addr(), iris.WithoutInterruptHandler, iris.WithoutServerError(iris.ErrServerClosed))
	})
	g.Go(func() error {
		log.Info("admin server listening", zap.String("addr", cfg.AdminServer.Addr()))
		return admin.Listen(cfg.AdminServer.Addr(), iris.WithoutInterruptHandler, iris.WithoutServerError(iris.ErrServerClosed))
	})
	g.Go(func() error {
		sweepSessions(gctx, st, cfg.Store, log)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shop.Shutdown(shutdownCtx)
		_ = admin.Shutdown(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
}

// sweepSessions 定期清理空闲会话
func sweepSessions(ctx context.Context, st *store.Store, cfg config.StoreConfig, log *zap.Logger) {
	if cfg.SweepInterval <= 0 || cfg.SessionIdle <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.SweepSessions(cfg.SessionIdle); n > 0 {
				log.Info("idle sessions removed", zap.Int("count", n), zap.Int("remaining", st.SessionCount()))
			}
		}
	}
}
