package webdav

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/anoixa/gphotos-grid/cache/types"
	"github.com/studio-b12/gowebdav"
)

// Config WebDAV 配置结构
type Config struct {
	URL      string
	Username string
	Password string
	RootPath string
	Timeout  time.Duration
}

// WebDAV 以 WebDAV 目录保存缓存项，每个键一个 JSON 文件
type WebDAV struct {
	client   *gowebdav.Client
	rootPath string
	baseURL  string
}

// NewWebDAV 创建 WebDAV 缓存提供者
func NewWebDAV(cfg Config) (*WebDAV, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := run(ctx, func() error {
		return client.MkdirAll(rootOrSlash(rootPath), os.FileMode(0755))
	})
	if err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return &WebDAV{
		client:   client,
		rootPath: rootPath,
		baseURL:  strings.TrimRight(cfg.URL, "/"),
	}, nil
}

// run 在 goroutine 中执行阻塞调用，遵循 ctx 取消
func run(ctx context.Context, fn func() error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func rootOrSlash(rootPath string) string {
	if rootPath == "" {
		return "/"
	}
	return rootPath
}

// fileName 键中可能包含路径不安全字符，统一做转义
func fileName(key string) string {
	return url.PathEscape(key) + ".json"
}

// keyFromFileName 从文件名还原键
func keyFromFileName(name string) (string, bool) {
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, ".json"))
	if err != nil {
		return "", false
	}
	return key, true
}

func (w *WebDAV) fullPath(key string) string {
	return w.rootPath + "/" + fileName(key)
}

// Set 写入 JSON 文件，expiration 被忽略
func (w *WebDAV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := types.Encode(value)
	if err != nil {
		return err
	}
	err = run(ctx, func() error {
		return w.client.Write(w.fullPath(key), data, 0644)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Get 读取 JSON 文件
func (w *WebDAV) Get(ctx context.Context, key string, dest interface{}) error {
	var data []byte
	err := run(ctx, func() error {
		var err error
		data, err = w.client.Read(w.fullPath(key))
		return err
	})
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return types.ErrCacheMiss
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	return types.Decode(data, dest)
}

// Delete 删除文件，文件不存在视为成功
func (w *WebDAV) Delete(ctx context.Context, key string) error {
	err := run(ctx, func() error {
		return w.client.Remove(w.fullPath(key))
	})
	if err != nil && !gowebdav.IsErrNotFound(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (w *WebDAV) Exists(ctx context.Context, key string) (bool, error) {
	err := run(ctx, func() error {
		_, err := w.client.Stat(w.fullPath(key))
		return err
	})
	if err == nil {
		return true, nil
	}
	if gowebdav.IsErrNotFound(err) {
		return false, nil
	}
	return false, err
}

// ClearByPattern 遍历根目录删除匹配的文件
func (w *WebDAV) ClearByPattern(ctx context.Context, pattern string) (int, error) {
	var entries []os.FileInfo
	err := run(ctx, func() error {
		var err error
		entries, err = w.client.ReadDir(rootOrSlash(w.rootPath))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", rootOrSlash(w.rootPath), err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, ok := keyFromFileName(entry.Name())
		if !ok || !types.MatchPattern(pattern, key) {
			continue
		}
		if err := w.Delete(ctx, key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Health 检查根目录是否可访问
func (w *WebDAV) Health(ctx context.Context) error {
	return run(ctx, func() error {
		_, err := w.client.ReadDir(rootOrSlash(w.rootPath))
		return err
	})
}

// Close WebDAV 客户端无需关闭
func (w *WebDAV) Close() error {
	return nil
}

// Name 返回缓存提供者名称
func (w *WebDAV) Name() string {
	return fmt.Sprintf("webdav:%s%s", w.baseURL, w.rootPath)
}
