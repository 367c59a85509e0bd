package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/asati/internal/datamodels/order"
)

// 与 store.EventType 的取值一致
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// ErrMalformedEvent 消息无法解析或类型未知，不应重新入队
var ErrMalformedEvent = errors.New("malformed order event")

// OrderEventMessage 订单事件消息体
type OrderEventMessage struct {
	Type       string      `json:"type"`
	SessionID  string      `json:"session_id,omitempty"`
	Order      order.Order `json:"order"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// OrderService 将订单事件归档到 MySQL（order-worker 使用）
type OrderService struct {
	repo   order.Repository
	logger *zap.Logger
}

// NewOrderService 创建订单归档服务
func NewOrderService(repo order.Repository, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{repo: repo, logger: logger}
}

// Handle 处理一条消息。返回 ErrMalformedEvent 时应丢弃，其他错误应重新入队
func (s *OrderService) Handle(ctx context.Context, body []byte) error {
	var m OrderEventMessage
	if err := json.Unmarshal(body, &m); err != nil {
		GetMonitor().RecordMalformed()
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if m.Order.ID == "" {
		GetMonitor().RecordMalformed()
		return fmt.Errorf("%w: missing order id", ErrMalformedEvent)
	}

	rec := order.NewRecord(&m.Order)
	rec.UpdatedAt = m.OccurredAt

	var err error
	switch m.Type {
	case EventOrderPlaced:
		// 状态变更可能先于下单事件到达，已存在的记录不覆盖
		err = s.repo.Insert(ctx, rec)
	case EventOrderStatusChanged:
		err = s.repo.Upsert(ctx, rec)
	default:
		GetMonitor().RecordMalformed()
		return fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, m.Type)
	}
	if err != nil {
		GetMonitor().RecordDBError()
		return fmt.Errorf("archive order %s: %w", m.Order.ID, err)
	}

	GetMonitor().RecordArchived()
	s.logger.Info("order archived",
		zap.String("type", m.Type),
		zap.String("order_id", m.Order.ID),
		zap.String("status", string(m.Order.Status)))
	return nil
}

// Disposition 根据处理结果决定 ack / nack，requeue 仅在可重试时为 true
func Disposition(err error) (ack bool, requeue bool) {
	switch {
	case err == nil:
		return true, false
	case errors.Is(err, ErrMalformedEvent):
		return false, false
	default:
		GetMonitor().RecordRequeued()
		return false, true
	}
}
