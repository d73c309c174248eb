package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// 相册配置
	AlbumURL             string `mapstructure:"album_url"`
	AlbumCacheTTLMinutes int    `mapstructure:"album_cache_ttl_minutes"`
	AlbumMaxPhotos       int    `mapstructure:"album_max_photos"`

	// 匿名请求可指定的相册主机名，album_url 本身总是允许
	AlbumAllowedHosts []string `mapstructure:"album_allowed_hosts"`

	// 抓取配置
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	FetchUserAgent string        `mapstructure:"fetch_user_agent"`
	FetchMaxBodyMB int           `mapstructure:"fetch_max_body_mb"`

	// 刷新策略
	CacheFailures       bool `mapstructure:"cache_failures"`
	RefreshSingleFlight bool `mapstructure:"refresh_single_flight"`

	// 记录存储: cache 或 database
	StoreType string `mapstructure:"store_type"`

	// 缓存提供者配置
	CacheType              string `mapstructure:"cache_type"`
	CacheMemoryNumCounters int64  `mapstructure:"cache_memory_num_counters"`
	CacheMemoryMaxCost     int64  `mapstructure:"cache_memory_max_cost"`
	CacheRedisAddr         string `mapstructure:"cache_redis_addr"`
	CacheRedisPassword     string `mapstructure:"cache_redis_password"`
	CacheRedisDB           int    `mapstructure:"cache_redis_db"`
	CacheRedisPoolSize     int    `mapstructure:"cache_redis_pool_size"`
	CacheMinioEndpoint     string `mapstructure:"cache_minio_endpoint"`
	CacheMinioAccessKey    string `mapstructure:"cache_minio_access_key"`
	CacheMinioSecretKey    string `mapstructure:"cache_minio_secret_key"`
	CacheMinioBucket       string `mapstructure:"cache_minio_bucket"`
	CacheMinioUseSSL       bool   `mapstructure:"cache_minio_use_ssl"`
	CacheWebDAVURL         string `mapstructure:"cache_webdav_url"`
	CacheWebDAVUsername    string `mapstructure:"cache_webdav_username"`
	CacheWebDAVPassword    string `mapstructure:"cache_webdav_password"`
	CacheWebDAVRootPath    string `mapstructure:"cache_webdav_root_path"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 限流配置
	RateLimitApiRPS     float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst   int           `mapstructure:"rate_limit_api_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`
	MaxConcurrency      int64         `mapstructure:"max_concurrency"`

	// 管理接口
	AdminJWTSecret string        `mapstructure:"admin_jwt_secret"`
	AdminTokenTTL  time.Duration `mapstructure:"admin_token_ttl"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	cfg, err := Load(viper.GetString("config_file_path"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}
	globalConfig = *cfg
}

// Load 从指定文件（默认 .env）和环境变量读取配置，不修改全局配置
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = ".env"
	}
	v.SetConfigFile(path)
	if path == ".env" {
		v.SetConfigType("env")
	}

	if err := v.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Info: %s not found, using defaults and environment variables\n", path)
	} else {
		fmt.Fprintf(os.Stderr, "Info: Loaded configuration from %s\n", path)
	}

	v.AutomaticEnv()
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// 服务器配置默认值
	v.SetDefault("server_host", "127.0.0.1")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_domain", "")
	v.SetDefault("server_read_timeout", "15s")
	v.SetDefault("server_write_timeout", "30s")
	v.SetDefault("server_idle_timeout", "120s")

	// 相册默认值（与原挂件一致：15 分钟、4 张）
	v.SetDefault("album_url", "")
	v.SetDefault("album_cache_ttl_minutes", 15)
	v.SetDefault("album_max_photos", 4)
	v.SetDefault("album_allowed_hosts", "photos.app.goo.gl,photos.google.com")

	v.SetDefault("fetch_timeout", "10s")
	v.SetDefault("fetch_user_agent", "gphotos-grid/"+Version)
	v.SetDefault("fetch_max_body_mb", 10)

	v.SetDefault("cache_failures", true)
	v.SetDefault("refresh_single_flight", true)

	v.SetDefault("store_type", "cache")

	// 缓存提供者配置默认值
	v.SetDefault("cache_type", "memory")
	v.SetDefault("cache_memory_num_counters", 100000)
	v.SetDefault("cache_memory_max_cost", 64<<20)
	v.SetDefault("cache_redis_addr", "localhost:6379")
	v.SetDefault("cache_redis_password", "")
	v.SetDefault("cache_redis_db", 0)
	v.SetDefault("cache_redis_pool_size", 10)
	v.SetDefault("cache_minio_endpoint", "localhost:9000")
	v.SetDefault("cache_minio_access_key", "")
	v.SetDefault("cache_minio_secret_key", "")
	v.SetDefault("cache_minio_bucket", "gphotos-grid")
	v.SetDefault("cache_minio_use_ssl", false)
	v.SetDefault("cache_webdav_url", "")
	v.SetDefault("cache_webdav_username", "")
	v.SetDefault("cache_webdav_password", "")
	v.SetDefault("cache_webdav_root_path", "gphotos-grid")

	// 数据库配置默认值
	v.SetDefault("db_type", "sqlite")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_username", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "gphotos-grid")
	v.SetDefault("db_file_path", "./data/gphotos.db")
	v.SetDefault("db_max_open_conns", 20)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", 3600)

	// 限流配置默认值
	v.SetDefault("rate_limit_api_rps", 10.0)
	v.SetDefault("rate_limit_api_burst", 20)
	v.SetDefault("rate_limit_expire_time", "10m")
	v.SetDefault("max_concurrency", 100)

	v.SetDefault("admin_jwt_secret", "")
	v.SetDefault("admin_token_ttl", "24h")
}

// normalize 修正非法取值
func (c *Config) normalize() {
	if c.AlbumCacheTTLMinutes < 0 {
		c.AlbumCacheTTLMinutes = 0
	}
	if c.AlbumMaxPhotos <= 0 {
		c.AlbumMaxPhotos = 4
	}
	hosts := c.AlbumAllowedHosts[:0]
	for _, h := range c.AlbumAllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	c.AlbumAllowedHosts = hosts
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.FetchMaxBodyMB <= 0 {
		c.FetchMaxBodyMB = 10
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 100
	}
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL 返回基础 URL，用于 CORS
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return c.ServerDomain
	}
	host := c.ServerHost
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

// FetchMaxBodyBytes 抓取正文上限（字节）
func (c *Config) FetchMaxBodyBytes() int64 {
	return int64(c.FetchMaxBodyMB) << 20
}

// AdminEnabled 管理接口是否启用
func (c *Config) AdminEnabled() bool {
	return len(c.AdminJWTSecret) >= 32
}
