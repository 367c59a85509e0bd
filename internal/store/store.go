// Package store 应用状态仓库：商品目录、用户、订单以及每个客户端的会话（身份、页面、购物车、通知）。
// 所有修改都通过 Store.Apply 以命令的形式串行执行。
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/example/asati/internal/datamodels/category"
	"github.com/example/asati/internal/datamodels/order"
	"github.com/example/asati/internal/datamodels/product"
	"github.com/example/asati/internal/datamodels/user"
)

// Directory 远程用户目录服务
type Directory interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, in user.NewUser) (*user.User, error)
	Delete(ctx context.Context, id string) error
}

// EventSink 订单事件出口（生产环境为 RabbitMQ）
type EventSink interface {
	Publish(ctx context.Context, ev Event) error
}

// Store 应用状态容器
type Store struct {
	mu sync.Mutex

	products   []product.Product
	categories []category.Category
	users      []user.User
	orders     []order.Order
	sessions   map[string]*Session

	audit      []AuditEntry
	auditSeq   int64
	auditLimit int

	productIDs  idGen
	categoryIDs idGen
	orderIDs    idGen
	collator    *collate.Collator

	directory Directory
	sink      EventSink
	logger    *zap.Logger
	monitor   *Monitor
	now       func() time.Time
	notifyTTL time.Duration
}

// Option 可选配置
type Option func(*Store)

// WithDirectory 接入远程用户目录
func WithDirectory(d Directory) Option {
	return func(s *Store) { s.directory = d }
}

// WithEventSink 设置订单事件出口
func WithEventSink(sink EventSink) Option {
	return func(s *Store) { s.sink = sink }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock 替换时钟，便于测试
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotificationTTL 通知自动消失的时间
func WithNotificationTTL(d time.Duration) Option {
	return func(s *Store) { s.notifyTTL = d }
}

// WithAuditLimit 审计日志保留条数
func WithAuditLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.auditLimit = n
		}
	}
}

// WithSeed 使用给定的初始目录替换内置种子数据
func WithSeed(seed *Seed) Option {
	return func(s *Store) {
		if seed != nil {
			s.loadSeed(seed)
		}
	}
}

// New 创建仓库，默认加载内置种子目录
func New(opts ...Option) *Store {
	s := &Store{
		sessions:   make(map[string]*Session),
		auditLimit: 500,
		collator:   collate.New(language.English),
		logger:     zap.NewNop(),
		monitor:    NewMonitor(),
		now:        time.Now,
		notifyTTL:  3 * time.Second,
	}
	s.loadSeed(DefaultSeed())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Monitor 运行统计
func (s *Store) Monitor() *Monitor {
	return s.monitor
}

// HasDirectory 是否接入远程用户目录
func (s *Store) HasDirectory() bool {
	return s.directory != nil
}

// session 需持有锁
func (s *Store) session(sid string) (*Session, error) {
	sess, ok := s.sessions[sid]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}
