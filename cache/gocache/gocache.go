package gocache

import (
	"context"
	"time"

	"github.com/anoixa/gphotos-grid/cache/types"
	gocachepkg "github.com/patrickmn/go-cache"
)

// GoCache 基于 go-cache 的进程内缓存实现
type GoCache struct {
	client *gocachepkg.Cache
}

// NewGoCache 创建新的GoCache实例，默认永不过期
func NewGoCache(cleanupInterval time.Duration) *GoCache {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &GoCache{
		client: gocachepkg.New(gocachepkg.NoExpiration, cleanupInterval),
	}
}

// Set 设置缓存项
func (g *GoCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	// 序列化json
	data, err := types.Encode(value)
	if err != nil {
		return err
	}

	if expiration <= 0 {
		expiration = gocachepkg.NoExpiration
	}
	g.client.Set(key, append([]byte(nil), data...), expiration)
	return nil
}

// Get 获取缓存项
func (g *GoCache) Get(ctx context.Context, key string, dest interface{}) error {
	value, found := g.client.Get(key)
	if !found {
		return types.ErrCacheMiss
	}

	data, ok := value.([]byte)
	if !ok {
		return types.ErrCacheMiss
	}
	return types.Decode(data, dest)
}

// Delete 删除缓存项
func (g *GoCache) Delete(ctx context.Context, key string) error {
	g.client.Delete(key)
	return nil
}

// Exists 检查缓存项是否存在
func (g *GoCache) Exists(ctx context.Context, key string) (bool, error) {
	_, found := g.client.Get(key)
	return found, nil
}

// ClearByPattern 删除所有匹配模式的缓存项
func (g *GoCache) ClearByPattern(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	for key := range g.client.Items() {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if types.MatchPattern(pattern, key) {
			g.client.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}

// Close 关闭缓存连接
func (g *GoCache) Close() error {
	// GoCache不需要显式关闭连接
	g.client.Flush()
	return nil
}

// Name 返回缓存提供者名称
func (g *GoCache) Name() string {
	return "gocache"
}
