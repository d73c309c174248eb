package metrics

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
)

// LatencyTracker 基于 DDSketch 记录各操作的耗时分位数
type LatencyTracker struct {
	mu               sync.Mutex
	sketches         map[string]*ddsketch.DDSketch
	relativeAccuracy float64
}

// NewLatencyTracker 创建耗时统计器，relativeAccuracy 为分位数相对误差（0.01 即 1%）
func NewLatencyTracker(relativeAccuracy float64) *LatencyTracker {
	return &LatencyTracker{
		sketches:         make(map[string]*ddsketch.DDSketch),
		relativeAccuracy: relativeAccuracy,
	}
}

// Record 记录一次操作耗时
func (lt *LatencyTracker) Record(operation string, duration time.Duration) {
	if lt == nil {
		return
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()

	sketch, exists := lt.sketches[operation]
	if !exists {
		var err error
		sketch, err = ddsketch.LogUnboundedDenseDDSketch(lt.relativeAccuracy)
		if err != nil {
			sketch, _ = ddsketch.NewDefaultDDSketch(lt.relativeAccuracy)
		}
		lt.sketches[operation] = sketch
	}

	// 以毫秒记录
	_ = sketch.Add(float64(duration.Microseconds()) / 1000.0)
}

// Since 记录从 start 到现在的耗时
func (lt *LatencyTracker) Since(operation string, start time.Time) {
	lt.Record(operation, time.Since(start))
}

// Stats 单个操作的耗时统计（毫秒）
type Stats struct {
	Operation string  `json:"operation"`
	Count     int64   `json:"count"`
	Min       float64 `json:"min_ms"`
	P50       float64 `json:"p50_ms"`
	P90       float64 `json:"p90_ms"`
	P99       float64 `json:"p99_ms"`
	Max       float64 `json:"max_ms"`
}

// GetStats 返回指定操作的统计
func (lt *LatencyTracker) GetStats(operation string) (Stats, error) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return lt.statsLocked(operation)
}

func (lt *LatencyTracker) statsLocked(operation string) (Stats, error) {
	sketch, exists := lt.sketches[operation]
	if !exists {
		return Stats{}, fmt.Errorf("no data for operation: %s", operation)
	}

	count := sketch.GetCount()
	if count == 0 {
		return Stats{Operation: operation}, nil
	}

	min, _ := sketch.GetMinValue()
	p50, _ := sketch.GetValueAtQuantile(0.50)
	p90, _ := sketch.GetValueAtQuantile(0.90)
	p99, _ := sketch.GetValueAtQuantile(0.99)
	max, _ := sketch.GetMaxValue()

	return Stats{
		Operation: operation,
		Count:     int64(count),
		Min:       min,
		P50:       p50,
		P90:       p90,
		P99:       p99,
		Max:       max,
	}, nil
}

// GetAllStats 返回所有操作的统计，按操作名排序
func (lt *LatencyTracker) GetAllStats() []Stats {
	if lt == nil {
		return nil
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()

	stats := make([]Stats, 0, len(lt.sketches))
	for operation := range lt.sketches {
		if stat, err := lt.statsLocked(operation); err == nil {
			stats = append(stats, stat)
		}
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Operation < stats[j].Operation
	})
	return stats
}

func (s Stats) String() string {
	if s.Count == 0 {
		return fmt.Sprintf("%s: no data", s.Operation)
	}
	return fmt.Sprintf("%s (n=%d): min=%.2fms p50=%.2fms p90=%.2fms p99=%.2fms max=%.2fms",
		s.Operation, s.Count, s.Min, s.P50, s.P90, s.P99, s.Max)
}
