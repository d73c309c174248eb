package metrics

import (
	"sync/atomic"
	"time"
)

// RequestCounters HTTP 请求计数
type RequestCounters struct {
	count      atomic.Int64
	errors     atomic.Int64
	durationMs atomic.Int64
}

// Observe 记录一次请求
func (r *RequestCounters) Observe(status int, duration time.Duration) {
	r.count.Add(1)
	r.durationMs.Add(duration.Milliseconds())
	if status >= 500 {
		r.errors.Add(1)
	}
}

// Snapshot 返回当前计数
func (r *RequestCounters) Snapshot() map[string]interface{} {
	count := r.count.Load()
	duration := r.durationMs.Load()
	avg := 0.0
	if count > 0 {
		avg = float64(duration) / float64(count)
	}
	return map[string]interface{}{
		"request_count":       count,
		"request_errors":      r.errors.Load(),
		"request_duration_ms": duration,
		"avg_duration_ms":     avg,
	}
}

// Reset 清零（测试使用）
func (r *RequestCounters) Reset() {
	r.count.Store(0)
	r.errors.Store(0)
	r.durationMs.Store(0)
}
