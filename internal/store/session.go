package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/asati/internal/datamodels/cart"
	"github.com/example/asati/internal/datamodels/product"
)

// Session 单个客户端的会话状态
type Session struct {
	ID       string
	identity Identity
	page     Page
	selected int64 // 详情页选中的商品，0 表示未选中
	cart     []cart.Item
	notifier *Notifier
	epoch    uint64 // 每次登录/登出递增，用于识别过期的目录响应
	lastSeen time.Time
}

// SessionView 会话快照
type SessionView struct {
	ID           string           `json:"id"`
	Identity     IdentityView     `json:"identity"`
	Page         Page             `json:"page"`
	Selected     *product.Product `json:"selected_product,omitempty"`
	Cart         cart.Summary     `json:"cart"`
	Notification *Notification    `json:"notification,omitempty"`
}

// NewSession 创建匿名会话，落地页为 landing
func (s *Store) NewSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{
		ID:       uuid.NewString(),
		identity: Anonymous{},
		page:     PageLanding,
		notifier: NewNotifier(s.notifyTTL, s.now),
		lastSeen: s.now(),
	}
	s.sessions[sess.ID] = sess
	return sess.ID
}

// EndSession 删除会话，之后到达的目录响应会被丢弃
func (s *Store) EndSession(sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(sid)
	if err != nil {
		return err
	}
	sess.notifier.Dismiss()
	delete(s.sessions, sid)
	return nil
}

// SweepSessions 清理空闲超过 idle 的会话，返回清理数量
func (s *Store) SweepSessions(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			sess.notifier.Dismiss()
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// SessionCount 当前会话数
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Session 返回会话快照
func (s *Store) Session(sid string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(sid)
	if err != nil {
		return SessionView{}, err
	}
	sess.lastSeen = s.now()
	v := SessionView{
		ID:           sess.ID,
		Identity:     viewOf(sess.identity),
		Page:         sess.page,
		Cart:         cart.Summarize(sess.cart),
		Notification: sess.notifier.Current(),
	}
	if sess.selected != 0 {
		if p, ok := s.findProduct(sess.selected); ok {
			cp := s.products[p]
			v.Selected = &cp
		}
	}
	return v, nil
}

// Identity 返回会话身份
func (s *Store) Identity(sid string) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(sid)
	if err != nil {
		return nil, err
	}
	return sess.identity, nil
}

// Notification 当前通知
func (s *Store) Notification(sid string) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(sid)
	if err != nil {
		return nil, err
	}
	return sess.notifier.Current(), nil
}

// Cart 当前购物车汇总
func (s *Store) Cart(sid string) (cart.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(sid)
	if err != nil {
		return cart.Summary{}, err
	}
	return cart.Summarize(sess.cart), nil
}

func (sess *Session) notify(kind NotificationKind, msg string) {
	sess.notifier.Show(kind, msg)
}

// DismissNotification 手动关闭当前通知
func (s *Store) DismissNotification(ctx context.Context, sid string) error {
	_, err := s.Apply(ctx, sid, DismissNotification{})
	return err
}
