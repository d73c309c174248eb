package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/gphotos-grid/cache/types"
	"github.com/go-redis/redis/v8"
)

// scanBatch 每次 SCAN 的建议数量
const scanBatch = 200

// Config Redis 配置
type Config struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
}

// Redis Redis 缓存实现
type Redis struct {
	client *redis.Client
}

// NewRedis 创建新的 Redis 缓存并测试连接
func NewRedis(cfg Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Address, err)
	}

	return &Redis{
		client: client,
	}, nil
}

// Health 检查 Redis 健康状态
func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Set 设置缓存项
func (r *Redis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := types.Encode(value)
	if err != nil {
		return err
	}
	if expiration < 0 {
		expiration = 0
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

// Get 获取缓存项
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.ErrCacheMiss
		}
		return err
	}
	return types.Decode(data, dest)
}

// Delete 删除缓存项
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Exists 检查缓存项是否存在
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	result, err := r.client.Exists(ctx, key).Result()
	return result > 0, err
}

// ClearByPattern 使用 SCAN 遍历并删除匹配的键，不阻塞服务端
func (r *Redis) ClearByPattern(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	batch := make([]string, 0, scanBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += int(n)
		batch = batch[:0]
		return nil
	}

	iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatch {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	if err := flush(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// Close 关闭缓存连接
func (r *Redis) Close() error {
	return r.client.Close()
}

// Name 返回缓存名称
func (r *Redis) Name() string {
	return "redis"
}
