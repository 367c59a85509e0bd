package store

import (
	"sync"
	"time"
)

// NotificationKind 通知类型
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification 一条提示消息
type Notification struct {
	Message string           `json:"message"`
	Kind    NotificationKind `json:"kind"`
	At      time.Time        `json:"at"`
}

// Notifier 单槽通知：新消息直接替换旧消息，并取消旧消息的定时清除
type Notifier struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	cur   *Notification
	timer *time.Timer
	gen   uint64
}

// NewNotifier ttl<=0 时通知不会自动清除
func NewNotifier(ttl time.Duration, now func() time.Time) *Notifier {
	if now == nil {
		now = time.Now
	}
	return &Notifier{ttl: ttl, now: now}
}

// Show 显示通知，替换当前通知
func (n *Notifier) Show(kind NotificationKind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.cur = &Notification{Message: msg, Kind: kind, At: n.now()}
	if n.ttl <= 0 {
		return
	}
	gen := n.gen
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
}

// expire 只清除同一代的通知；Stop 失败时迟到的回调在这里被丢弃
func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.gen {
		return
	}
	n.cur = nil
	n.timer = nil
}

// Current 当前通知，没有时返回 nil
func (n *Notifier) Current() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cur == nil {
		return nil
	}
	c := *n.cur
	return &c
}

// Dismiss 手动关闭
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.cur = nil
}
