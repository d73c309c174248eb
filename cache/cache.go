package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/gphotos-grid/cache/gocache"
	"github.com/anoixa/gphotos-grid/cache/memory"
	"github.com/anoixa/gphotos-grid/cache/minio"
	"github.com/anoixa/gphotos-grid/cache/redis"
	"github.com/anoixa/gphotos-grid/cache/webdav"
	"github.com/anoixa/gphotos-grid/config"
)

// Config 缓存配置
type Config struct {
	Type string // memory, gocache, redis, minio, webdav

	NumCounters int64 // memory only
	MaxCost     int64 // memory only

	Address  string // redis only
	Password string // redis only
	DB       int    // redis only
	PoolSize int    // redis only

	Minio  minio.Config
	WebDAV webdav.Config
}

// ConfigFrom 从应用配置构建缓存配置
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Type:        cfg.CacheType,
		NumCounters: cfg.CacheMemoryNumCounters,
		MaxCost:     cfg.CacheMemoryMaxCost,
		Address:     cfg.CacheRedisAddr,
		Password:    cfg.CacheRedisPassword,
		DB:          cfg.CacheRedisDB,
		PoolSize:    cfg.CacheRedisPoolSize,
		Minio: minio.Config{
			Endpoint:        cfg.CacheMinioEndpoint,
			AccessKeyID:     cfg.CacheMinioAccessKey,
			SecretAccessKey: cfg.CacheMinioSecretKey,
			BucketName:      cfg.CacheMinioBucket,
			UseSSL:          cfg.CacheMinioUseSSL,
		},
		WebDAV: webdav.Config{
			URL:      cfg.CacheWebDAVURL,
			Username: cfg.CacheWebDAVUsername,
			Password: cfg.CacheWebDAVPassword,
			RootPath: cfg.CacheWebDAVRootPath,
			Timeout:  30 * time.Second,
		},
	}
}

// NewProvider 根据配置创建缓存提供者
func NewProvider(cfg Config) (Provider, error) {
	var (
		provider Provider
		err      error
	)

	switch cfg.Type {
	case "memory", "":
		provider, err = memory.NewMemory(memory.Config{
			NumCounters: cfg.NumCounters,
			MaxCost:     cfg.MaxCost,
			BufferItems: 64,
		})
	case "gocache":
		provider = gocache.NewGoCache(10 * time.Minute)
	case "redis":
		provider, err = redis.NewRedis(redis.Config{
			Address:  cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		})
	case "minio":
		provider, err = minio.NewMinIO(cfg.Minio)
	case "webdav":
		provider, err = webdav.NewWebDAV(cfg.WebDAV)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache provider: %w", cfg.Type, err)
	}

	log.Printf("[CacheFactory] Cache provider initialized: %s", provider.Name())
	return provider, nil
}

// ClearByPattern 对支持的提供者执行按模式删除
func ClearByPattern(ctx context.Context, provider Provider, pattern string) (int, error) {
	deleter, ok := provider.(PatternDeleter)
	if !ok {
		return 0, fmt.Errorf("cache provider %s does not support pattern deletion", provider.Name())
	}
	return deleter.ClearByPattern(ctx, pattern)
}

// Health 检查提供者健康状态，不支持检查的提供者视为健康
func Health(ctx context.Context, provider Provider) error {
	if provider == nil {
		return fmt.Errorf("cache provider not initialized")
	}
	type healther interface {
		Health(ctx context.Context) error
	}
	if h, ok := provider.(healther); ok {
		return h.Health(ctx)
	}
	return nil
}
