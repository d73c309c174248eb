package photos

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/anoixa/gphotos-grid/internal/metrics"
	"github.com/anoixa/gphotos-grid/utils"
	"golang.org/x/sync/singleflight"
)

// Manager 相册照片列表的读取与刷新
// 不在调用之间保存任何相册状态，所有状态都在 Store 中
type Manager struct {
	store     Store
	fetcher   Fetcher
	extractor Extractor

	now           func() time.Time
	cacheFailures bool
	singleFlight  bool
	latency       *metrics.LatencyTracker

	group singleflight.Group

	hits          atomic.Int64
	misses        atomic.Int64
	refreshes     atomic.Int64
	fetchFailures atomic.Int64
	storeErrors   atomic.Int64
}

// Option Manager 配置项
type Option func(*Manager)

// WithClock 替换时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithCacheFailures 抓取失败时是否写入空结果
func WithCacheFailures(enabled bool) Option {
	return func(m *Manager) {
		m.cacheFailures = enabled
	}
}

// WithSingleFlight 同一相册的并发刷新是否合并
func WithSingleFlight(enabled bool) Option {
	return func(m *Manager) {
		m.singleFlight = enabled
	}
}

// WithLatencyTracker 记录存储读写耗时
func WithLatencyTracker(latency *metrics.LatencyTracker) Option {
	return func(m *Manager) {
		m.latency = latency
	}
}

// NewManager 创建 Manager
func NewManager(store Store, fetcher Fetcher, extractor Extractor, opts ...Option) *Manager {
	if extractor == nil {
		extractor = NewRegexExtractor(nil)
	}
	m := &Manager{
		store:         store,
		fetcher:       fetcher,
		extractor:     extractor,
		now:           time.Now,
		cacheFailures: true,
		singleFlight:  true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetPhotos 返回相册的照片 URL 列表，永不返回 nil
// ttlMinutes 为 0 时绕过存储，每次都抓取；负数按 0 处理
func (m *Manager) GetPhotos(ctx context.Context, albumURL string, ttlMinutes int) []string {
	if albumURL == "" {
		log.Println("[Manager] Empty album url, nothing to fetch")
		return []string{}
	}
	if ttlMinutes < 0 {
		ttlMinutes = 0
	}

	if ttlMinutes == 0 {
		return m.refresh(ctx, albumURL, "", 0)
	}

	key := DeriveKey(albumURL)
	if photos, ok := m.lookup(ctx, key, ttlMinutes); ok {
		m.hits.Add(1)
		return photos
	}
	m.misses.Add(1)

	if !m.singleFlight {
		return m.refresh(ctx, albumURL, key, ttlMinutes)
	}

	// 共享刷新不受单个调用方取消的影响，抓取耗时由 Fetcher 超时约束
	shared := context.WithoutCancel(ctx)
	v, _, _ := m.group.Do(key, func() (interface{}, error) {
		return m.refresh(shared, albumURL, key, ttlMinutes), nil
	})
	photos := v.([]string)
	return append(make([]string, 0, len(photos)), photos...)
}

// lookup 读取并判断记录是否新鲜
func (m *Manager) lookup(ctx context.Context, key string, ttlMinutes int) ([]string, bool) {
	start := time.Now()
	record, err := m.store.Get(ctx, key)
	m.latency.Since("store_get", start)

	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			m.storeErrors.Add(1)
			log.Printf("[Manager] Failed to read %s, treating as miss: %v", key, err)
		}
		return nil, false
	}
	if !record.Valid() {
		return nil, false
	}
	if !record.FreshAt(m.now(), ttlMinutes) {
		return nil, false
	}
	return record.Photos, true
}

// refresh 抓取、提取并在 ttlMinutes > 0 时写回
func (m *Manager) refresh(ctx context.Context, albumURL, key string, ttlMinutes int) []string {
	m.refreshes.Add(1)

	photos := []string{}
	body, ok := m.fetcher.Fetch(ctx, albumURL)
	if ok {
		if extracted := m.extractor.Extract(body); extracted != nil {
			photos = extracted
		}
	} else {
		m.fetchFailures.Add(1)
	}

	if ttlMinutes == 0 {
		return photos
	}
	if !ok && !m.cacheFailures {
		return photos
	}
	if ctx.Err() != nil {
		// 调用方已取消，失败结果不应覆盖已有记录
		log.Printf("[Manager] Skipping write of %s: %v", key, ctx.Err())
		return photos
	}

	record := &AlbumRecord{FetchedAt: m.now().Unix(), Photos: photos}
	start := time.Now()
	err := m.store.Put(ctx, key, record)
	m.latency.Since("store_put", start)
	if err != nil {
		m.storeErrors.Add(1)
		log.Printf("[Manager] Failed to write %s: %v", key, err)
		return photos
	}

	log.Printf("[Manager] Refreshed %s: %d photos (fetch ok=%t)", utils.SanitizeLogURL(albumURL), len(photos), ok)
	return photos
}

// Reset 删除所有相册记录
func (m *Manager) Reset(ctx context.Context) (int, error) {
	deleted, err := m.store.DeleteMatching(ctx, KeyPattern())
	if err != nil {
		log.Printf("[Manager] Reset failed after %d records: %v", deleted, err)
		return deleted, err
	}
	log.Printf("[Manager] Reset removed %d album records", deleted)
	return deleted, nil
}

// Stats Manager 计数
type Stats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Refreshes     int64 `json:"refreshes"`
	FetchFailures int64 `json:"fetch_failures"`
	StoreErrors   int64 `json:"store_errors"`
}

// Stats 返回当前计数快照
func (m *Manager) Stats() Stats {
	return Stats{
		Hits:          m.hits.Load(),
		Misses:        m.misses.Load(),
		Refreshes:     m.refreshes.Load(),
		FetchFailures: m.fetchFailures.Load(),
		StoreErrors:   m.storeErrors.Load(),
	}
}
