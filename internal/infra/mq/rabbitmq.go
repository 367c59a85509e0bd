package mq

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/asati/internal/config"
)

var (
	conn    *amqp.Connection
	initErr error
	once    sync.Once
)

// Init 初始化 RabbitMQ 连接，URL 为空时返回 nil
func Init(cfg *config.RabbitMQConfig) (*amqp.Connection, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	once.Do(func() {
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			initErr = fmt.Errorf("connect rabbitmq: %w", err)
			return
		}
		conn = c
	})
	return conn, initErr
}

// Conn 获取 MQ 连接
func Conn() *amqp.Connection {
	return conn
}

// DeclareQueue 声明持久化队列，生产者与消费者共用同一组参数
func DeclareQueue(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	return nil
}
