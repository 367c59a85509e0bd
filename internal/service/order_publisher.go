package service

import (
	"context"
	"encoding/json"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/asati/internal/infra/mq"
	"github.com/example/asati/internal/store"
)

// OrderPublisher 把订单事件写入 RabbitMQ，实现 store.EventSink
type OrderPublisher struct {
	conn  *amqp.Connection
	queue string

	mu sync.Mutex
	ch *amqp.Channel
}

// NewOrderPublisher 创建发布者，channel 在首次发布时建立
func NewOrderPublisher(conn *amqp.Connection, queue string) *OrderPublisher {
	return &OrderPublisher{conn: conn, queue: queue}
}

// EncodeOrderEvent 事件转消息体
func EncodeOrderEvent(ev store.Event) ([]byte, error) {
	return json.Marshal(&OrderEventMessage{
		Type:       string(ev.Type),
		SessionID:  ev.SessionID,
		Order:      ev.Order,
		OccurredAt: ev.At,
	})
}

// channel 需持有锁；channel 被服务端关闭后重新打开
func (p *OrderPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := mq.DeclareQueue(ch, p.queue); err != nil {
		_ = ch.Close()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

// Publish 发布订单事件（持久化消息）
func (p *OrderPublisher) Publish(ctx context.Context, ev store.Event) error {
	body, err := EncodeOrderEvent(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		GetMonitor().RecordMQError()
		return err
	}
	err = ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         string(ev.Type),
			MessageId:    ev.Order.ID,
			Timestamp:    ev.At,
			Body:         body,
		},
	)
	if err != nil {
		GetMonitor().RecordMQError()
		return err
	}
	return nil
}

// Close 关闭 channel，连接由调用方管理
func (p *OrderPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}
