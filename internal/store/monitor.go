package store

import (
	"sync"
	"time"
)

// Monitor 运行统计
type Monitor struct {
	mu sync.RWMutex

	// 业务统计
	Logins        int64
	LoginFailures int64
	CartAdds      int64
	OrdersPlaced  int64
	OrdersDecided int64

	// 错误统计
	DirectoryErrors int64
	PublishErrors   int64

	// 时间统计
	LastLogin          time.Time
	LastOrder          time.Time
	LastDirectoryError time.Time
}

// NewMonitor 创建监控实例
func NewMonitor() *Monitor {
	return &Monitor{}
}

// RecordLogin 记录登录成功
func (m *Monitor) RecordLogin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logins++
	m.LastLogin = time.Now()
}

// RecordLoginFailure 记录登录失败
func (m *Monitor) RecordLoginFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginFailures++
}

// RecordCartAdd 记录加购
func (m *Monitor) RecordCartAdd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CartAdds++
}

// RecordOrderPlaced 记录下单
func (m *Monitor) RecordOrderPlaced() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrdersPlaced++
	m.LastOrder = time.Now()
}

// RecordOrderDecided 记录订单审核
func (m *Monitor) RecordOrderDecided() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrdersDecided++
}

// RecordDirectoryError 记录目录服务错误
func (m *Monitor) RecordDirectoryError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DirectoryErrors++
	m.LastDirectoryError = time.Now()
}

// RecordPublishError 记录事件投递失败
func (m *Monitor) RecordPublishError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishErrors++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loginSuccessRate := float64(0)
	if total := m.Logins + m.LoginFailures; total > 0 {
		loginSuccessRate = float64(m.Logins) / float64(total) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"directory": m.DirectoryErrors,
			"publish":   m.PublishErrors,
		},
		"business": map[string]interface{}{
			"logins":             m.Logins,
			"login_failures":     m.LoginFailures,
			"login_success_rate": loginSuccessRate,
			"cart_adds":          m.CartAdds,
			"orders_placed":      m.OrdersPlaced,
			"orders_decided":     m.OrdersDecided,
		},
		"last_events": map[string]interface{}{
			"login":           m.LastLogin,
			"order":           m.LastOrder,
			"directory_error": m.LastDirectoryError,
		},
	}
}

// Reset 重置统计
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logins = 0
	m.LoginFailures = 0
	m.CartAdds = 0
	m.OrdersPlaced = 0
	m.OrdersDecided = 0
	m.DirectoryErrors = 0
	m.PublishErrors = 0
	m.LastLogin = time.Time{}
	m.LastOrder = time.Time{}
	m.LastDirectoryError = time.Time{}
}
