package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/asati/internal/config"
	"github.com/example/asati/internal/datamodels/user"
	"github.com/example/asati/internal/logger"
	"github.com/example/asati/internal/repository/mysql"
	"github.com/example/asati/internal/server"
	"github.com/example/asati/internal/service"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file")
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

	db, err := mysql.Init(&cfg.MySQL, &user.User{})
	if err != nil {
		log.Fatal("mysql init failed", zap.Error(err))
	}

	userSvc := service.NewUserService(mysql.NewUserRepository(db))
	app := server.NewDirectoryApp(userSvc, cfg.Directory.APIKey, log.Named("directory"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	log.Info("user directory listening", zap.String("addr", cfg.Directory.Listen))
	if err := app.Listen(cfg.Directory.Listen); err != nil {
		log.Fatal("directory server failed", zap.Error(err))
	}
	log.Info("user directory stopped", zap.Any("stats", service.GetMonitor().GetStats()))
}
