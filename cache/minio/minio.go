package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/anoixa/gphotos-grid/cache/types"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config MinIO 配置
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// MinIO 以对象存储保存缓存项，每个键一个 JSON 对象
// 对象存储没有 TTL，expiration 参数被忽略
type MinIO struct {
	client     *minio.Client
	bucketName string
}

// NewMinIO 创建 MinIO 缓存提供者，桶不存在时自动创建
func NewMinIO(cfg Config) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 10 * time.Second,
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:    cfg.UseSSL,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket '%s' exists: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", cfg.BucketName, err)
		}
		log.Printf("[MinIO] Created bucket: %s", cfg.BucketName)
	}

	return &MinIO{
		client:     client,
		bucketName: cfg.BucketName,
	}, nil
}

// Set 上传 JSON 对象
func (m *MinIO) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := types.Encode(value)
	if err != nil {
		return err
	}

	_, err = m.client.PutObject(ctx, m.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put object '%s': %w", key, err)
	}
	return nil
}

// Get 读取对象并反序列化
func (m *MinIO) Get(ctx context.Context, key string, dest interface{}) error {
	obj, err := m.client.GetObject(ctx, m.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return m.translate(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return m.translate(key, err)
	}
	return types.Decode(data, dest)
}

// Delete 删除对象
func (m *MinIO) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object '%s': %w", key, err)
	}
	return nil
}

// Exists 检查对象是否存在
func (m *MinIO) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucketName, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, err
}

// ClearByPattern 按字面前缀列举对象，再按模式过滤删除
func (m *MinIO) ClearByPattern(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	objects := m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{
		Prefix:    types.LiteralPrefix(pattern),
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			return deleted, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if !types.MatchPattern(pattern, object.Key) {
			continue
		}
		if err := m.Delete(ctx, object.Key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Health 检查桶是否可访问
func (m *MinIO) Health(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucketName)
	return err
}

// Close MinIO 客户端无需关闭
func (m *MinIO) Close() error {
	return nil
}

// Name 返回缓存提供者名称
func (m *MinIO) Name() string {
	return "minio"
}

func (m *MinIO) translate(key string, err error) error {
	if isNoSuchKey(err) {
		return types.ErrCacheMiss
	}
	return fmt.Errorf("failed to get object '%s': %w", key, err)
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
