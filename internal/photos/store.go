package photos

import (
	"context"
	"fmt"

	"github.com/anoixa/gphotos-grid/cache"
)

// Store 相册记录的持久化接口
// 记录在存储中永不过期，是否新鲜由读取方判断
type Store interface {
	// Get 读取记录，不存在时返回 ErrRecordNotFound
	Get(ctx context.Context, key string) (*AlbumRecord, error)
	// Put 整条覆盖写入
	Put(ctx context.Context, key string, record *AlbumRecord) error
	// DeleteMatching 删除键匹配 glob 模式的所有记录，返回删除数量
	DeleteMatching(ctx context.Context, pattern string) (int, error)
}

// CacheStore 基于缓存提供者的记录存储
type CacheStore struct {
	provider cache.Provider
}

// NewCacheStore 创建基于缓存提供者的存储
func NewCacheStore(provider cache.Provider) *CacheStore {
	return &CacheStore{provider: provider}
}

func (s *CacheStore) Get(ctx context.Context, key string) (*AlbumRecord, error) {
	var record AlbumRecord
	if err := s.provider.Get(ctx, key, &record); err != nil {
		if cache.IsCacheMiss(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("%s get %s: %w", s.provider.Name(), key, err)
	}
	return &record, nil
}

func (s *CacheStore) Put(ctx context.Context, key string, record *AlbumRecord) error {
	if err := s.provider.Set(ctx, key, record, 0); err != nil {
		return fmt.Errorf("%s set %s: %w", s.provider.Name(), key, err)
	}
	return nil
}

func (s *CacheStore) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	return cache.ClearByPattern(ctx, s.provider, pattern)
}
