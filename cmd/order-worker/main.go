package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/asati/internal/config"
	"github.com/example/asati/internal/datamodels/order"
	"github.com/example/asati/internal/infra/mq"
	"github.com/example/asati/internal/logger"
	"github.com/example/asati/internal/repository/mysql"
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

	db, err := mysql.Init(&cfg.MySQL, &order.Record{})
	if err != nil {
		log.Fatal("mysql init failed", zap.Error(err))
	}
	mqConn, err := mq.Init(&cfg.RabbitMQ)
	if err != nil || mqConn == nil {
		log.Fatal("rabbitmq init failed", zap.Error(err))
	}
	defer mqConn.Close()

	orderSvc := service.NewOrderService(mysql.NewOrderRepository(db), log.Named("archive"))

	ch, err := mqConn.Channel()
	if err != nil {
		log.Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if err := mq.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		log.Fatal("failed to declare queue", zap.Error(err))
	}
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatal("failed to set qos", zap.Error(err))
	}

	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume(cfg.RabbitMQ.Queue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal("failed to consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("order worker started, waiting for messages...", zap.String("queue", cfg.RabbitMQ.Queue))
	for {
		select {
		case <-ctx.Done():
			log.Info("order worker stopping", zap.Any("stats", service.GetMonitor().GetStats()))
			return
		case d, ok := <-msgs:
			if !ok {
				log.Error("delivery channel closed")
				return
			}
			err := orderSvc.Handle(ctx, d.Body)
			ack, requeue := service.Disposition(err)
			if ack {
				if err := d.Ack(false); err != nil {
					service.GetMonitor().RecordMQError()
					log.Warn("failed to ack message", zap.Error(err))
				}
				continue
			}
			log.Warn("order event rejected",
				zap.String("message_id", d.MessageId),
				zap.Bool("requeue", requeue),
				zap.Error(err))
			if err := d.Nack(false, requeue); err != nil {
				service.GetMonitor().RecordMQError()
				log.Warn("failed to nack message", zap.Error(err))
			}
		}
	}
}
