package store

import "time"

// idGen 基于毫秒时间戳的递增 ID，同一毫秒内或时钟回拨时顺延
type idGen struct {
	last int64
}

func (g *idGen) next(now time.Time) int64 {
	v := now.UnixMilli()
	if v <= g.last {
		v = g.last + 1
	}
	g.last = v
	return v
}

// observe 确保后续生成的 ID 大于已存在的 ID
func (g *idGen) observe(v int64) {
	if v > g.last {
		g.last = v
	}
}
