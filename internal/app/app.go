package app

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/gphotos-grid/cache"
	"github.com/anoixa/gphotos-grid/config"
	"github.com/anoixa/gphotos-grid/database"
	"github.com/anoixa/gphotos-grid/database/repo/albums"
	"github.com/anoixa/gphotos-grid/internal/auth"
	"github.com/anoixa/gphotos-grid/internal/metrics"
	"github.com/anoixa/gphotos-grid/internal/photos"
	"gorm.io/gorm"
)

const (
	StoreTypeCache    = "cache"
	StoreTypeDatabase = "database"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config *config.Config

	cacheProvider cache.Provider
	db            *gorm.DB
	store         photos.Store

	latency    *metrics.LatencyTracker
	requests   *metrics.RequestCounters
	manager    *photos.Manager
	jwtService *auth.JWTService
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:   cfg,
		latency:  metrics.NewLatencyTracker(0.01),
		requests: &metrics.RequestCounters{},
	}
}

// Init 初始化所有服务
func (c *Container) Init() error {
	log.Println("[App] Initializing container...")

	if err := c.initStore(); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	c.initManager()

	if err := c.initAuth(); err != nil {
		return fmt.Errorf("failed to initialize admin auth: %w", err)
	}

	log.Println("[App] Container initialized successfully")
	return nil
}

// initStore 根据 store_type 初始化记录存储
func (c *Container) initStore() error {
	switch c.config.StoreType {
	case StoreTypeCache, "":
		provider, err := cache.NewProvider(cache.ConfigFrom(c.config))
		if err != nil {
			return err
		}
		c.cacheProvider = provider
		c.store = photos.NewCacheStore(provider)
	case StoreTypeDatabase:
		db, err := database.NewDB(c.config)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		c.db = db
		c.store = photos.NewDBStore(albums.NewRepository(db))
	default:
		return fmt.Errorf("unsupported store type: %s", c.config.StoreType)
	}
	log.Printf("[App] Record store initialized: %s", c.storeName())
	return nil
}

func (c *Container) initManager() {
	fetcher := photos.NewHTTPFetcher(photos.FetcherConfig{
		Timeout:      c.config.FetchTimeout,
		UserAgent:    c.config.FetchUserAgent,
		MaxBodyBytes: c.config.FetchMaxBodyBytes(),
	}, c.latency)

	c.manager = photos.NewManager(c.store, fetcher, photos.NewRegexExtractor(nil),
		photos.WithCacheFailures(c.config.CacheFailures),
		photos.WithSingleFlight(c.config.RefreshSingleFlight),
		photos.WithLatencyTracker(c.latency),
	)
}

// initAuth 配置了足够长的密钥时启用管理接口
func (c *Container) initAuth() error {
	if c.config.AdminJWTSecret == "" {
		log.Println("[App] Admin routes disabled: admin_jwt_secret not set")
		return nil
	}
	svc, err := auth.NewJWTService(c.config.AdminJWTSecret, c.config.AdminTokenTTL)
	if err != nil {
		return err
	}
	c.jwtService = svc
	return nil
}

func (c *Container) storeName() string {
	if c.cacheProvider != nil {
		return "cache:" + c.cacheProvider.Name()
	}
	if c.db != nil {
		return "database:" + c.db.Dialector.Name()
	}
	return "none"
}

// Manager 获取相册管理器
func (c *Container) Manager() *photos.Manager {
	return c.manager
}

// Store 获取记录存储
func (c *Container) Store() photos.Store {
	return c.store
}

// JWTService 获取管理令牌服务，未启用时为 nil
func (c *Container) JWTService() *auth.JWTService {
	return c.jwtService
}

// Latency 获取耗时统计
func (c *Container) Latency() *metrics.LatencyTracker {
	return c.latency
}

// Requests 获取请求计数
func (c *Container) Requests() *metrics.RequestCounters {
	return c.requests
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// CheckStore 检查记录存储是否可用
func (c *Container) CheckStore(ctx context.Context) error {
	switch {
	case c.cacheProvider != nil:
		return cache.Health(ctx, c.cacheProvider)
	case c.db != nil:
		return database.Ping(c.db)
	default:
		return fmt.Errorf("store not initialized")
	}
}

// StoreName 存储描述，用于健康检查输出
func (c *Container) StoreName() string {
	return c.storeName()
}

// Close 关闭所有服务
func (c *Container) Close() error {
	log.Println("[App] Closing container...")

	if c.cacheProvider != nil {
		if err := c.cacheProvider.Close(); err != nil {
			log.Printf("[App] Error closing cache provider: %v", err)
		}
	}

	if c.db != nil {
		if err := database.Close(c.db); err != nil {
			log.Printf("[App] Error closing database: %v", err)
		}
	}

	log.Println("[App] Container closed")
	return nil
}
