package service

import (
	"sync"
	"time"
)

// Monitor 后台进程（order-worker / directory）的统计
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	DBErrors        int64
	MQErrors        int64
	MalformedEvents int64

	// 处理统计
	EventsArchived int64
	EventsRequeued int64
	UsersCreated   int64
	UsersDeleted   int64

	// 时间统计
	LastDBError  time.Time
	LastMQError  time.Time
	LastArchived time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordMQError 记录 MQ 错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordMalformed 记录无法解析而丢弃的消息
func (m *Monitor) RecordMalformed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MalformedEvents++
}

// RecordArchived 记录归档成功
func (m *Monitor) RecordArchived() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsArchived++
	m.LastArchived = time.Now()
}

// RecordRequeued 记录重新入队
func (m *Monitor) RecordRequeued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsRequeued++
}

// RecordUserCreated 目录新增用户
func (m *Monitor) RecordUserCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UsersCreated++
}

// RecordUserDeleted 目录删除用户
func (m *Monitor) RecordUserDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UsersDeleted++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	archiveRate := float64(0)
	total := m.EventsArchived + m.EventsRequeued + m.MalformedEvents
	if total > 0 {
		archiveRate = float64(m.EventsArchived) / float64(total) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"db":        m.DBErrors,
			"mq":        m.MQErrors,
			"malformed": m.MalformedEvents,
		},
		"performance": map[string]interface{}{
			"events_archived": m.EventsArchived,
			"events_requeued": m.EventsRequeued,
			"archive_rate":    archiveRate,
			"users_created":   m.UsersCreated,
			"users_deleted":   m.UsersDeleted,
		},
		"last_events": map[string]interface{}{
			"db_error": m.LastDBError,
			"mq_error": m.LastMQError,
			"archived": m.LastArchived,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors = 0
	m.MQErrors = 0
	m.MalformedEvents = 0
	m.EventsArchived = 0
	m.EventsRequeued = 0
	m.UsersCreated = 0
	m.UsersDeleted = 0
	m.LastDBError = time.Time{}
	m.LastMQError = time.Time{}
	m.LastArchived = time.Time{}
}
