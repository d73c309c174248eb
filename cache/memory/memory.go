package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/anoixa/gphotos-grid/cache/types"
	"github.com/dgraph-io/ristretto"
)

var (
	// ErrCacheMiss 缓存未命中错误
	ErrCacheMiss = types.ErrCacheMiss
	// ErrSetDropped ristretto 丢弃了写入（缓冲区满、准入拒绝或缓存已关闭）
	ErrSetDropped = errors.New("memory cache dropped the write")
)

// Memory 内存缓存实现
type Memory struct {
	client *ristretto.Cache
	// ristretto 不支持遍历，额外维护键索引用于按模式删除
	keys sync.Map
}

// Config 内存缓存配置
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

// NewMemory 创建新的内存缓存提供者
func NewMemory(config Config) (*Memory, error) {
	if config.NumCounters <= 0 {
		config.NumCounters = 100000
	}
	if config.MaxCost <= 0 {
		config.MaxCost = 64 << 20
	}
	if config.BufferItems <= 0 {
		config.BufferItems = 64
	}

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
		Metrics:     config.Metrics,
	})

	if err != nil {
		return nil, err
	}

	return &Memory{
		client: client,
	}, nil
}

// Set 设置缓存项
func (m *Memory) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := types.Encode(value)
	if err != nil {
		return err
	}
	// 存副本，避免调用方修改切片
	stored := append([]byte(nil), data...)

	cost := int64(len(stored))
	if cost == 0 {
		cost = 1
	}

	if expiration < 0 {
		expiration = 0
	}
	if !m.client.SetWithTTL(key, stored, cost, expiration) {
		return ErrSetDropped
	}
	// 等待值被实际设置，准入策略仍可能拒绝
	m.client.Wait()
	if _, found := m.client.Get(key); !found {
		m.keys.Delete(key)
		return ErrSetDropped
	}
	m.keys.Store(key, struct{}{})
	return nil
}

// Get 获取缓存项
func (m *Memory) Get(ctx context.Context, key string, dest interface{}) error {
	value, found := m.client.Get(key)
	if !found {
		// 被淘汰或过期的键同步移出索引
		m.keys.Delete(key)
		return ErrCacheMiss
	}

	data, ok := value.([]byte)
	if !ok {
		return ErrCacheMiss
	}
	if err := types.Decode(data, dest); err != nil {
		return ErrCacheMiss
	}
	return nil
}

// Delete 删除缓存项
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.client.Del(key)
	m.keys.Delete(key)
	return nil
}

// Exists 检查缓存项是否存在
func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	_, found := m.client.Get(key)
	return found, nil
}

// ClearByPattern 删除所有匹配模式的缓存项
func (m *Memory) ClearByPattern(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	m.keys.Range(func(k, _ interface{}) bool {
		if err := ctx.Err(); err != nil {
			return false
		}
		key := k.(string)
		_, found := m.client.Get(key)
		if !types.MatchPattern(pattern, key) {
			if !found {
				m.keys.Delete(key)
			}
			return true
		}
		if found {
			deleted++
		}
		m.client.Del(key)
		m.keys.Delete(key)
		return true
	})
	m.client.Wait()
	return deleted, ctx.Err()
}

// Close 关闭缓存连接
func (m *Memory) Close() error {
	m.client.Close()
	return nil
}

// Name 返回缓存提供者名称
func (m *Memory) Name() string {
	return "memory"
}
