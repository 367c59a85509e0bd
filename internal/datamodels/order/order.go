package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/asati/internal/datamodels/cart"
)

// Status 订单状态：pending -> approved | declined
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Decided approved / declined 为终态
func (s Status) Decided() bool {
	return s == StatusApproved || s == StatusDeclined
}

// ParseDecision 管理员只能提交 approved / declined
func ParseDecision(v string) (Status, bool) {
	switch s := Status(strings.ToLower(strings.TrimSpace(v))); s {
	case StatusApproved, StatusDeclined:
		return s, true
	}
	return "", false
}

// Order 订单（下单时购物车的快照）
type Order struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	UserName string          `json:"user_name"`
	Items    []cart.Item     `json:"items"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placed_at"`
	Status   Status          `json:"status"`
}

// Clone 返回独立副本
func (o Order) Clone() Order {
	o.Items = cart.Clone(o.Items)
	return o
}

// Filter 后台订单筛选条件
type Filter struct {
	Status Status // 空表示全部
	Query  string // 订单号 / 用户名模糊匹配
}

// Match 判断订单是否符合筛选条件
func (f Filter) Match(o *Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(o.ID), q) ||
		strings.Contains(strings.ToLower(o.UserName), q)
}

// Record 订单归档表（order-worker 写入 MySQL）
type Record struct {
	ID        string          `gorm:"primaryKey;size:64"`
	UserID    string          `gorm:"index;size:32;not null"`
	UserName  string          `gorm:"size:128"`
	Items     []cart.Item     `gorm:"serializer:json;type:json"`
	Total     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Status    Status          `gorm:"index;size:16;not null"`
	PlacedAt  time.Time       `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 归档表名
func (Record) TableName() string {
	return "order_records"
}

// NewRecord 由订单快照生成归档记录
func NewRecord(o *Order) *Record {
	return &Record{
		ID:       o.ID,
		UserID:   o.UserID,
		UserName: o.UserName,
		Items:    cart.Clone(o.Items),
		Total:    o.Total,
		Status:   o.Status,
		PlacedAt: o.PlacedAt,
	}
}

// Repository 订单归档仓储接口
type Repository interface {
	// Insert 写入新订单，已存在时保持不变
	Insert(ctx context.Context, r *Record) error
	// Upsert 写入或覆盖订单状态
	Upsert(ctx context.Context, r *Record) error
}
